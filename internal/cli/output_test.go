package cli

import (
	"strings"
	"testing"

	"github.com/herbwise/basil/internal/model"
	"github.com/herbwise/basil/internal/pipeline"
)

func TestRenderItems(t *testing.T) {
	matched := int64(4)
	price := 2.49
	result := &pipeline.Result{
		Items: []model.ExtractedItem{
			{Name: "milk", Quantity: 1, Unit: "l", Category: "dairy", Confidence: 0.95, Price: &price, MatchedProductID: &matched},
			{Name: "quinoa", Quantity: 1, Unit: "unit", Category: "other", Confidence: 0.4, Warnings: []string{"quantity defaulted to 1"}},
		},
		UnresolvedSegments: []string{"???"},
		OverallConfidence:  0.675,
	}

	var buf strings.Builder
	RenderItems(&buf, result)
	out := buf.String()

	for _, want := range []string{"milk", "dairy", "$2.49", "quinoa", "(please confirm)", "quantity defaulted to 1", `could not parse: "???"`, "overall confidence"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderItems_Empty(t *testing.T) {
	var buf strings.Builder
	RenderItems(&buf, &pipeline.Result{})

	if !strings.Contains(buf.String(), "No items extracted.") {
		t.Errorf("output = %q, want empty-result message", buf.String())
	}
}

func TestRenderItems_NewProductMarker(t *testing.T) {
	result := &pipeline.Result{
		Items: []model.ExtractedItem{
			{Name: "dragonfruit", Quantity: 1, Unit: "unit", Category: "produce", Confidence: 0.8},
		},
	}

	var buf strings.Builder
	RenderItems(&buf, result)

	if !strings.Contains(buf.String(), "new") {
		t.Errorf("output missing new-product marker:\n%s", buf.String())
	}
}

func TestRenderSuggestions(t *testing.T) {
	suggestions := []model.Suggestion{
		{ProductID: 1, Name: "milk", Category: "dairy", Score: 0.82, Reason: model.ReasonOverdue},
		{ProductID: 2, Name: "bread", Category: "pantry", Score: 0.61, Reason: model.ReasonFrequency},
	}

	var buf strings.Builder
	RenderSuggestions(&buf, suggestions)
	out := buf.String()

	for _, want := range []string{"1.", "milk", "overdue", "2.", "bread", "frequency"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSuggestions_Empty(t *testing.T) {
	var buf strings.Builder
	RenderSuggestions(&buf, nil)

	if !strings.Contains(buf.String(), "Not enough purchase history") {
		t.Errorf("output = %q, want empty-history message", buf.String())
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "yes word", input: "YES\n", want: true},
		{name: "no", input: "n\n", want: false},
		{name: "default is no", input: "\n", want: false},
		{name: "eof is no", input: "", want: false},
		{name: "garbage is no", input: "sure\n", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			got := Confirm(strings.NewReader(tt.input), &out, "Save?")
			if got != tt.want {
				t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(out.String(), "[y/N]") {
				t.Errorf("prompt missing default marker: %q", out.String())
			}
		})
	}
}
