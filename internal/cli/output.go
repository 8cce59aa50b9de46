package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/herbwise/basil/internal/model"
	"github.com/herbwise/basil/internal/pipeline"
)

// confidenceFlagThreshold marks items that should prompt the user to
// double-check what was extracted.
const confidenceFlagThreshold = 0.6

// RenderItems writes a table of extracted items.
func RenderItems(w io.Writer, result *pipeline.Result) {
	if len(result.Items) == 0 {
		fmt.Fprintln(w, SubtleStyle.Render("No items extracted."))
	}

	for _, item := range result.Items {
		line := fmt.Sprintf("%-24s %6g %-6s %-12s %5.0f%%",
			item.Name, item.Quantity, item.Unit, item.Category, item.Confidence*100)
		if item.Price != nil {
			line += fmt.Sprintf("  $%.2f", *item.Price)
		}

		switch {
		case item.Confidence < confidenceFlagThreshold:
			fmt.Fprintln(w, WarningStyle.Render(line+"  (please confirm)"))
		case item.IsNewProduct():
			fmt.Fprintln(w, line+SubtleStyle.Render("  new"))
		default:
			fmt.Fprintln(w, line)
		}

		for _, warning := range item.Warnings {
			fmt.Fprintln(w, SubtleStyle.Render("    ! "+warning))
		}
	}

	for _, seg := range result.UnresolvedSegments {
		fmt.Fprintln(w, WarningStyle.Render(fmt.Sprintf("could not parse: %q", seg)))
	}

	fmt.Fprintln(w, SubtleStyle.Render(fmt.Sprintf("overall confidence: %.0f%%", result.OverallConfidence*100)))
}

// RenderSuggestions writes a ranked suggestion list.
func RenderSuggestions(w io.Writer, suggestions []model.Suggestion) {
	if len(suggestions) == 0 {
		fmt.Fprintln(w, SubtleStyle.Render("Not enough purchase history for suggestions yet."))
		return
	}

	for i, s := range suggestions {
		fmt.Fprintf(w, "%2d. %-24s %-12s %5.2f  %s\n",
			i+1, s.Name, s.Category, s.Score, SubtleStyle.Render(string(s.Reason)))
	}
}

// Confirm asks a yes/no question on the given reader, defaulting to no.
func Confirm(r io.Reader, w io.Writer, prompt string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", prompt)

	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}
