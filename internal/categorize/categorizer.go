// Package categorize assigns a category to extracted items via an ordered
// chain of classifier strategies: matched-product category, keyword table
// lookup, then the reserved fallback bucket. The chain is deterministic and
// has no learning component; keyword table updates are an offline concern.
package categorize

import (
	"strings"

	"github.com/herbwise/basil/internal/config"
	"github.com/herbwise/basil/internal/model"
)

// FallbackCategory is the reserved bucket for items no strategy can place.
const FallbackCategory = "other"

// Classifier is one strategy in the fallback chain. ok is false when the
// strategy has no opinion and the next one should be consulted.
type Classifier interface {
	Classify(name string, matched *model.Product) (category string, ok bool)
}

// Categorizer evaluates its classifier chain in order and returns the first
// answer.
type Categorizer struct {
	chain []Classifier
}

// New builds the standard chain from the seed keyword table.
func New(table []config.CategoryKeywords) *Categorizer {
	return &Categorizer{
		chain: []Classifier{
			productClassifier{},
			newKeywordClassifier(table),
			fallbackClassifier{},
		},
	}
}

// Classify returns the category for an item name, using the matched
// catalog product when there is one.
func (c *Categorizer) Classify(name string, matched *model.Product) string {
	for _, classifier := range c.chain {
		if category, ok := classifier.Classify(name, matched); ok {
			return category
		}
	}
	return FallbackCategory
}

// productClassifier returns the stored category of a matched product.
type productClassifier struct{}

func (productClassifier) Classify(_ string, matched *model.Product) (string, bool) {
	if matched == nil || matched.Category == "" {
		return "", false
	}
	return matched.Category, true
}

// keywordClassifier matches item names against the category keyword table
// in declaration order; the first category with a matching keyword wins.
type keywordClassifier struct {
	table []config.CategoryKeywords
}

func newKeywordClassifier(table []config.CategoryKeywords) keywordClassifier {
	return keywordClassifier{table: table}
}

func (k keywordClassifier) Classify(name string, _ *model.Product) (string, bool) {
	name = strings.ToLower(name)

	for _, row := range k.table {
		for _, keyword := range row.Keywords {
			if keywordMatches(name, strings.ToLower(keyword)) {
				return row.Name, true
			}
		}
	}
	return "", false
}

// keywordMatches accepts exact hits, substring containment, and singular /
// plural stem equality.
func keywordMatches(name, keyword string) bool {
	if name == keyword || strings.Contains(name, keyword) {
		return true
	}
	return stem(name) == stem(keyword)
}

// stem strips a trailing plural suffix. Deliberately crude: the keyword
// table is curated, not mined.
func stem(s string) string {
	switch {
	case strings.HasSuffix(s, "ies") && len(s) > 4:
		return s[:len(s)-3] + "y"
	case strings.HasSuffix(s, "es") && len(s) > 3:
		return s[:len(s)-2]
	case strings.HasSuffix(s, "s") && len(s) > 2:
		return s[:len(s)-1]
	}
	return s
}

// fallbackClassifier terminates the chain with the reserved bucket.
type fallbackClassifier struct{}

func (fallbackClassifier) Classify(_ string, _ *model.Product) (string, bool) {
	return FallbackCategory, true
}
