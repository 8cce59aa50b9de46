package match

import (
	"sort"
	"strings"
	"time"

	"github.com/herbwise/basil/internal/model"
)

// prefilterPrefixLen is the shared-prefix length that lets a misspelled
// single token ("tomatoe") survive the candidate pre-filter against its
// catalog spelling ("tomato").
const prefilterPrefixLen = 3

// Snapshot is one immutable catalog view, built per pipeline invocation.
// Passing the snapshot explicitly keeps the matcher free of shared mutable
// state; callers refresh it whenever they want a newer catalog.
type Snapshot struct {
	products []model.Product
	byName   map[string]int
}

// NewSnapshot builds a catalog view from the store's product list.
func NewSnapshot(products []model.Product) *Snapshot {
	byName := make(map[string]int, len(products))
	for i, p := range products {
		byName[strings.ToLower(p.CanonicalName)] = i
	}
	return &Snapshot{products: products, byName: byName}
}

// Len returns the number of products in the snapshot.
func (s *Snapshot) Len() int { return len(s.products) }

// Products returns the snapshot's product list. Callers must not mutate it.
func (s *Snapshot) Products() []model.Product { return s.products }

// Verdict is the outcome of matching one residual name.
type Verdict struct {
	// Product is the matched catalog entry, nil when no match cleared the
	// threshold.
	Product *model.Product
	// Similarity is the winning similarity, or the best similarity seen
	// when no match cleared the threshold (for diagnostics).
	Similarity float64
	// Exact reports a case-insensitive exact name hit.
	Exact bool
	// ProposedName is the normalized name to register as a new product
	// when Product is nil.
	ProposedName string
}

// Matcher resolves residual item names against a catalog snapshot.
type Matcher struct {
	sim       Similarity
	threshold float64
}

// New creates a Matcher with the given similarity measure and acceptance
// threshold.
func New(sim Similarity, threshold float64) *Matcher {
	return &Matcher{sim: sim, threshold: threshold}
}

// Match resolves name against the snapshot. lastPurchased maps product ID
// to the requesting user's most recent purchase of it and is used only to
// break similarity ties; it may be nil.
func (m *Matcher) Match(name string, snapshot *Snapshot, lastPurchased map[int64]time.Time) Verdict {
	name = strings.ToLower(strings.TrimSpace(name))

	if i, ok := snapshot.byName[name]; ok {
		return Verdict{
			Product:    &snapshot.products[i],
			Similarity: 1,
			Exact:      true,
		}
	}

	candidates := m.prefilter(name, snapshot)

	best := -1
	bestSim := 0.0
	for _, i := range candidates {
		sim := m.sim.Score(name, strings.ToLower(snapshot.products[i].CanonicalName))
		if sim > bestSim {
			best, bestSim = i, sim
			continue
		}
		if sim == bestSim && best >= 0 && m.prefer(snapshot.products[i], snapshot.products[best], lastPurchased) {
			best = i
		}
	}

	if best >= 0 && bestSim >= m.threshold {
		return Verdict{
			Product:    &snapshot.products[best],
			Similarity: bestSim,
		}
	}

	return Verdict{
		Similarity:   bestSim,
		ProposedName: name,
	}
}

// prefilter narrows the catalog to candidates that share a token with the
// query, or a token prefix long enough to suggest a misspelling.
func (m *Matcher) prefilter(name string, snapshot *Snapshot) []int {
	queryTokens := strings.Fields(name)

	var candidates []int
	for i, p := range snapshot.products {
		if tokensOverlap(queryTokens, strings.Fields(strings.ToLower(p.CanonicalName))) {
			candidates = append(candidates, i)
		}
	}

	sort.Ints(candidates)
	return candidates
}

func tokensOverlap(a, b []string) bool {
	for _, ta := range a {
		for _, tb := range b {
			if ta == tb {
				return true
			}
			if len(ta) >= prefilterPrefixLen && len(tb) >= prefilterPrefixLen &&
				ta[:prefilterPrefixLen] == tb[:prefilterPrefixLen] {
				return true
			}
		}
	}
	return false
}

// prefer reports whether a should win a similarity tie against b: most
// recent purchase by the requesting user first, then lexicographic order.
func (m *Matcher) prefer(a, b model.Product, lastPurchased map[int64]time.Time) bool {
	ta := lastPurchased[a.ID]
	tb := lastPurchased[b.ID]
	if !ta.Equal(tb) {
		return ta.After(tb)
	}
	return a.CanonicalName < b.CanonicalName
}
