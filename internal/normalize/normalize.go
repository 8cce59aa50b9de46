// Package normalize canonicalizes raw input text before segmentation and
// extraction. Every function here is pure: no state, no I/O, and no
// failure modes. Unsupported characters pass through unchanged.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// currencyMarker is the canonical marker all currency symbols fold to. The
// extractor recognizes it when pulling price tokens out of a segment.
const currencyMarker = "$"

var currencySymbols = map[rune]bool{
	'$': true,
	'€': true,
	'£': true,
	'¥': true,
	'₹': true,
}

var (
	chatterPrefix = regexp.MustCompile(`^(?:i\s+)?(?:bought|purchased|got|need|buy)\b\s*`)
	articlePrefix = regexp.MustCompile(`^(?:a|an|the|some|of)\s+`)
	spaceRuns     = regexp.MustCompile(`[ \t]+`)
)

// diacriticFolder strips combining marks after NFD decomposition.
var diacriticFolder = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Text canonicalizes a whole raw input: lowercase, diacritics folded,
// currency symbols mapped to the canonical marker, horizontal whitespace
// collapsed. Line boundaries are preserved so receipt text can still be
// segmented per line.
func Text(s string) string {
	s = strings.ToLower(s)
	s = FoldDiacritics(s)
	s = mapCurrency(s)

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(spaceRuns.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// FoldDiacritics removes combining marks ("café" -> "cafe"). Characters the
// transform cannot handle are passed through as-is.
func FoldDiacritics(s string) string {
	folded, _, err := transform.String(diacriticFolder, s)
	if err != nil {
		return s
	}
	return folded
}

func mapCurrency(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if currencySymbols[r] {
			b.WriteString(currencyMarker)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// StripChatter removes conversational lead-ins ("i bought", "got") from the
// start of manually typed text.
func StripChatter(s string) string {
	return strings.TrimSpace(chatterPrefix.ReplaceAllString(s, ""))
}

// Name canonicalizes an item name for catalog storage and matching:
// lowercase, marketing prefixes and trailing count markers dropped,
// leading articles removed.
func Name(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = FoldDiacritics(s)

	for _, prefix := range []string{"organic ", "fresh ", "local "} {
		s = strings.TrimPrefix(s, prefix)
	}
	for _, suffix := range []string{" each", " ea", " pc", " pcs"} {
		s = strings.TrimSuffix(s, suffix)
	}

	s = articlePrefix.ReplaceAllString(s, "")
	return strings.TrimSpace(spaceRuns.ReplaceAllString(s, " "))
}
