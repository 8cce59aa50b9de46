package suggest

import (
	"sort"
	"strings"
	"time"

	"github.com/herbwise/basil/internal/model"
)

// similarityFloor is the minimum word-overlap similarity for an item to
// count as similar.
const similarityFloor = 0.3

// SimilarItem is one history item resembling a queried name.
type SimilarItem struct {
	Name       string
	Similarity float64
}

// SimilarItems finds items in the purchase history whose names overlap the
// queried name, ranked by word-overlap similarity. Used to nudge users away
// from registering near-duplicate products.
func SimilarItems(history []model.PurchaseEvent, name string, limit int) []SimilarItem {
	queryWords := wordSet(name)

	seen := make(map[string]float64)
	for _, ev := range history {
		candidate := strings.ToLower(ev.Name)
		if candidate == strings.ToLower(name) {
			continue
		}
		if _, done := seen[candidate]; done {
			continue
		}

		sim := overlap(queryWords, wordSet(ev.Name))
		if sim > similarityFloor {
			seen[candidate] = sim
		}
	}

	items := make([]SimilarItem, 0, len(seen))
	for n, sim := range seen {
		items = append(items, SimilarItem{Name: n, Similarity: sim})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Similarity != items[j].Similarity {
			return items[i].Similarity > items[j].Similarity
		}
		return items[i].Name < items[j].Name
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// NextTrip predicts the user's next shopping day from the average interval
// between distinct past shopping days. Returns false with fewer than three
// recorded days.
func NextTrip(history []model.PurchaseEvent) (time.Time, bool) {
	daySet := make(map[string]time.Time)
	for _, ev := range history {
		day := ev.Timestamp.Truncate(24 * time.Hour)
		daySet[day.Format("2006-01-02")] = day
	}
	if len(daySet) < 3 {
		return time.Time{}, false
	}

	days := make([]time.Time, 0, len(daySet))
	for _, d := range daySet {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	total := 0.0
	for i := 1; i < len(days); i++ {
		total += days[i].Sub(days[i-1]).Hours() / 24
	}
	avg := total / float64(len(days)-1)

	last := days[len(days)-1]
	return last.AddDate(0, 0, int(avg)), true
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = true
	}
	return set
}

// overlap is Jaccard similarity over word sets.
func overlap(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := 0
	for w := range a {
		if b[w] {
			shared++
		}
	}
	return float64(shared) / float64(len(a)+len(b)-shared)
}
