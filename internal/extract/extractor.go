// Package extract pulls quantity, unit, and price tokens out of a single
// segment, leaving a residual item-name string. Extraction never fails: a
// segment either yields a result with a confidence reflecting how cleanly
// the tokens matched, or it is dropped with a diagnostic when nothing
// usable remains after stripping numerics.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/herbwise/basil/internal/config"
	"github.com/herbwise/basil/internal/model"
	"github.com/herbwise/basil/internal/normalize"
)

// Fixed confidence penalties. Extraction starts at 1.0 and each compromise
// subtracts its penalty; the result is clamped to [0,1].
const (
	penaltyInferredUnit  = 0.15 // bare count, unit inferred rather than matched
	penaltyNoQuantity    = 0.25 // no numeric at all, quantity defaulted to 1
	penaltyAmbiguousNums = 0.20 // extra numeric tokens left after extraction
)

// DefaultUnit is the generic count unit applied when a segment carries no
// quantity information.
const DefaultUnit = "unit"

var (
	// A currency-marked amount, or a bare decimal with exactly two places.
	pricePattern = regexp.MustCompile(`\$\s*(\d+(?:[.,]\d{1,2})?)|\b(\d+[.,]\d{2})\b`)

	// number immediately followed by a word token, e.g. "2kg" or "200 g".
	leadingQtyPattern  = regexp.MustCompile(`^(\d+(?:[.,]\d+)?)\s*([a-z]+)\b`)
	trailingQtyPattern = regexp.MustCompile(`\b(\d+(?:[.,]\d+)?)\s*([a-z]+)$`)

	// standalone integer for a bare count, e.g. "2 apples" or "apples 2".
	leadingCountPattern  = regexp.MustCompile(`^(\d+)\s+`)
	trailingCountPattern = regexp.MustCompile(`\s+(\d+)$`)

	numberToken = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	letterToken = regexp.MustCompile(`[a-z]`)
)

// Result is the outcome of extracting one segment.
type Result struct {
	ResidualName string
	Quantity     float64
	Unit         string
	UnitKind     string
	Price        *float64
	Confidence   float64
	Warnings     []string
}

// Extractor recognizes units from a closed vocabulary and applies the
// extraction patterns in a fixed order.
type Extractor struct {
	units map[string]config.UnitDef
}

// New builds an Extractor from the unit vocabulary.
func New(units []config.UnitDef) *Extractor {
	byAlias := make(map[string]config.UnitDef)
	for _, u := range units {
		for _, alias := range u.Aliases {
			byAlias[strings.ToLower(alias)] = u
		}
	}
	return &Extractor{units: byAlias}
}

// Extract parses one segment. ok is false when the segment yields no
// residual name after numeric stripping; such segments are dropped by the
// pipeline, not treated as errors.
func (e *Extractor) Extract(seg model.Segment) (Result, bool) {
	res := Result{
		Quantity:   1,
		Unit:       DefaultUnit,
		UnitKind:   "count",
		Confidence: 1.0,
	}

	text := seg.Text

	// Price is matched independently of quantity so "2kg 5.99" yields both.
	if loc := pricePattern.FindStringSubmatchIndex(text); loc != nil {
		raw := firstSubmatch(text, loc)
		if p, err := parseAmount(raw); err == nil {
			res.Price = &p
		}
		text = strings.TrimSpace(text[:loc[0]] + " " + text[loc[1]:])
	}

	quantityMatched := false
	unitMatched := false

	// (a) numeric+unit, leading or trailing.
	for _, pat := range []*regexp.Regexp{leadingQtyPattern, trailingQtyPattern} {
		loc := pat.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		word := text[loc[4]:loc[5]]
		unit, ok := e.units[word]
		if !ok {
			continue
		}
		if q, err := parseAmount(text[loc[2]:loc[3]]); err == nil && q > 0 {
			res.Quantity = q
			res.Unit = unit.Canonical
			res.UnitKind = unit.Kind
			quantityMatched = true
			unitMatched = true
			text = text[:loc[0]] + " " + text[loc[1]:]
		}
		break
	}

	// (b) bare count when no unit token was present.
	if !quantityMatched {
		for _, pat := range []*regexp.Regexp{leadingCountPattern, trailingCountPattern} {
			loc := pat.FindStringSubmatchIndex(text)
			if loc == nil {
				continue
			}
			if q, err := strconv.ParseFloat(text[loc[2]:loc[3]], 64); err == nil && q > 0 {
				res.Quantity = q
				quantityMatched = true
				text = text[:loc[0]] + " " + text[loc[1]:]
			}
			break
		}
	}

	switch {
	case quantityMatched && !unitMatched:
		res.Confidence -= penaltyInferredUnit
		res.Warnings = append(res.Warnings, "unit inferred from bare count")
	case !quantityMatched:
		res.Confidence -= penaltyNoQuantity
		res.Warnings = append(res.Warnings, "quantity defaulted to 1")
	}

	// Leftover numerics mean the segment was ambiguous; the first plausible
	// reading above stands, flagged with a penalty.
	if numberToken.MatchString(text) {
		res.Confidence -= penaltyAmbiguousNums
		res.Warnings = append(res.Warnings, "multiple numeric tokens in segment")
		text = numberToken.ReplaceAllString(text, " ")
	}

	res.ResidualName = normalize.Name(e.stripUnitWords(text))
	if len(res.ResidualName) < 2 || !letterToken.MatchString(res.ResidualName) {
		return Result{}, false
	}

	if res.Confidence < 0 {
		res.Confidence = 0
	}
	return res, true
}

// stripUnitWords drops stray unit tokens left behind once their number was
// consumed, e.g. the "kg" in "apples kg".
func (e *Extractor) stripUnitWords(text string) string {
	fields := strings.Fields(text)
	kept := fields[:0]
	for _, f := range fields {
		if _, isUnit := e.units[f]; isUnit {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

func firstSubmatch(text string, loc []int) string {
	for i := 2; i+1 < len(loc); i += 2 {
		if loc[i] >= 0 {
			return text[loc[i]:loc[i+1]]
		}
	}
	return ""
}

// parseAmount parses a number accepting both decimal separators: "1,5"
// reads as 1.5.
func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}
