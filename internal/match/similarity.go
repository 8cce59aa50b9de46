// Package match fuzzy-matches residual item names against the product
// catalog.
package match

import "strings"

// Similarity scores how alike two normalized strings are, in [0,1]. The
// matcher's control flow is independent of the measure, so edit-distance,
// token-set, or embedding-based implementations can be swapped freely.
type Similarity interface {
	Name() string
	Score(a, b string) float64
}

// Levenshtein scores by normalized edit distance.
type Levenshtein struct{}

// Name returns the measure's identifier.
func (Levenshtein) Name() string { return "levenshtein" }

// Score returns 1 - distance/maxLen.
func (Levenshtein) Score(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(len(a), len(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(editDistance(a, b))/float64(longest)
}

// editDistance computes the Levenshtein distance with a two-row table.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// TokenSet scores by Jaccard overlap of whitespace-separated tokens.
type TokenSet struct{}

// Name returns the measure's identifier.
func (TokenSet) Name() string { return "tokenset" }

// Score returns |intersection| / |union| of the two token sets.
func (TokenSet) Score(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	shared := 0
	for tok := range ta {
		if tb[tok] {
			shared++
		}
	}
	return float64(shared) / float64(len(ta)+len(tb)-shared)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}

// ForName returns the similarity measure registered under name, defaulting
// to Levenshtein.
func ForName(name string) Similarity {
	if name == "tokenset" {
		return TokenSet{}
	}
	return Levenshtein{}
}
