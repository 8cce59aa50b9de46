// Package suggest ranks candidate products for a user's next shopping trip
// from purchase history alone. Scores are recomputable: identical history
// and date always produce identical suggestions, with no hidden state.
package suggest

import (
	"sort"
	"time"

	"github.com/herbwise/basil/internal/config"
	"github.com/herbwise/basil/internal/model"
)

// seasonalMinPurchases is the minimum history a product needs before the
// seasonal signal is considered meaningful.
const seasonalMinPurchases = 4

// Engine computes ranked shopping suggestions.
type Engine struct {
	cfg config.SuggestConfig
}

// New creates an Engine with the given tuning.
func New(cfg config.SuggestConfig) *Engine {
	return &Engine{cfg: cfg}
}

// productStats is the per-product aggregate built in one pass over the
// event stream. Only what the four signals need is retained.
type productStats struct {
	name        string
	category    string
	timestamps  []time.Time
	days        map[string]bool
	windowCount int
	monthCount  int
	totalCount  int
	lastBought  time.Time
}

// Suggest ranks products from the user's purchase history. active lists
// product IDs already on the shopping list; those are excluded unless their
// overdue signal exceeds the configured override. An empty or sparse
// history yields an empty list, never an error.
func (e *Engine) Suggest(history []model.PurchaseEvent, active []int64, now time.Time) []model.Suggestion {
	if len(history) == 0 {
		return nil
	}

	stats := e.aggregate(history, now)

	activeSet := make(map[int64]bool, len(active))
	for _, id := range active {
		activeSet[id] = true
	}

	maxWindowCount := 0
	for _, s := range stats {
		if s.windowCount > maxWindowCount {
			maxWindowCount = s.windowCount
		}
	}

	var suggestions []model.Suggestion
	lastBought := make(map[int64]time.Time, len(stats))

	for id, s := range stats {
		lastBought[id] = s.lastBought

		scored := e.score(s, stats, activeSet, maxWindowCount, now)

		if activeSet[id] && scored.overdue <= e.cfg.OverdueOverride {
			continue
		}

		suggestions = append(suggestions, model.Suggestion{
			ProductID: id,
			Name:      s.name,
			Category:  s.category,
			Score:     scored.total,
			Reason:    scored.reason,
		})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		ti := lastBought[suggestions[i].ProductID]
		tj := lastBought[suggestions[j].ProductID]
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return suggestions[i].Name < suggestions[j].Name
	})

	if len(suggestions) > e.cfg.TopN {
		suggestions = suggestions[:e.cfg.TopN]
	}
	return suggestions
}

// aggregate folds the event stream into per-product stats in one pass.
func (e *Engine) aggregate(history []model.PurchaseEvent, now time.Time) map[int64]*productStats {
	windowStart := now.AddDate(0, 0, -e.cfg.WindowDays)
	currentMonth := now.Month()

	stats := make(map[int64]*productStats)
	for _, ev := range history {
		s, ok := stats[ev.ProductID]
		if !ok {
			s = &productStats{
				name:     ev.Name,
				category: ev.Category,
				days:     make(map[string]bool),
			}
			stats[ev.ProductID] = s
		}

		s.totalCount++
		s.timestamps = append(s.timestamps, ev.Timestamp)
		s.days[ev.Timestamp.Format("2006-01-02")] = true
		if ev.Timestamp.After(s.lastBought) {
			s.lastBought = ev.Timestamp
			s.name = ev.Name
			s.category = ev.Category
		}
		if ev.Timestamp.After(windowStart) {
			s.windowCount++
		}
		if ev.Timestamp.Month() == currentMonth {
			s.monthCount++
		}
	}

	for _, s := range stats {
		sort.Slice(s.timestamps, func(i, j int) bool { return s.timestamps[i].Before(s.timestamps[j]) })
	}
	return stats
}

type scoredSignals struct {
	total   float64
	overdue float64
	reason  model.SuggestionReason
}

// score computes the weighted sum of the four signals for one product,
// redistributing weight when the overdue signal is undefined.
func (e *Engine) score(s *productStats, all map[int64]*productStats, activeSet map[int64]bool, maxWindowCount int, now time.Time) scoredSignals {
	frequency := 0.0
	if maxWindowCount > 0 {
		frequency = float64(s.windowCount) / float64(maxWindowCount)
	}

	overdue, overdueDefined := e.overdueSignal(s, now)

	seasonal := 0.0
	if e.isSeasonal(s) {
		seasonal = 1
	}

	complement := 0.0
	if e.isComplement(s, all, activeSet) {
		complement = 1
	}

	type contribution struct {
		reason model.SuggestionReason
		weight float64
		value  float64
	}
	contributions := []contribution{
		{model.ReasonFrequency, e.cfg.FrequencyWeight, frequency},
		{model.ReasonOverdue, e.cfg.OverdueWeight, overdue},
		{model.ReasonSeasonal, e.cfg.SeasonalWeight, seasonal},
		{model.ReasonComplement, e.cfg.ComplementWeight, complement},
	}

	totalWeight := 0.0
	for _, c := range contributions {
		if c.reason == model.ReasonOverdue && !overdueDefined {
			continue
		}
		totalWeight += c.weight
	}

	result := scoredSignals{overdue: overdue, reason: model.ReasonFrequency}
	if totalWeight == 0 {
		return result
	}

	best := -1.0
	for _, c := range contributions {
		if c.reason == model.ReasonOverdue && !overdueDefined {
			continue
		}
		weighted := c.weight / totalWeight * c.value
		result.total += weighted
		if weighted > best {
			best = weighted
			result.reason = c.reason
		}
	}
	return result
}

// overdueSignal returns min(1, daysSinceLast/expectedInterval) where the
// expected interval is the median inter-purchase gap. Undefined with fewer
// than two purchases; the caller redistributes its weight.
func (e *Engine) overdueSignal(s *productStats, now time.Time) (float64, bool) {
	if len(s.timestamps) < 2 {
		return 0, false
	}

	gaps := make([]float64, 0, len(s.timestamps)-1)
	for i := 1; i < len(s.timestamps); i++ {
		gaps = append(gaps, s.timestamps[i].Sub(s.timestamps[i-1]).Hours()/24)
	}
	expected := median(gaps)
	if expected <= 0 {
		return 0, false
	}

	daysSince := now.Sub(s.lastBought).Hours() / 24
	signal := daysSince / expected
	if signal > 1 {
		signal = 1
	}
	return signal, true
}

// isSeasonal reports whether the product's purchases cluster in the current
// calendar month at more than twice the uniform monthly baseline.
func (e *Engine) isSeasonal(s *productStats) bool {
	if s.totalCount < seasonalMinPurchases {
		return false
	}
	return float64(s.monthCount)*12 > float64(s.totalCount)*2
}

// isComplement reports whether the product was bought on the same shopping
// day as any product on the active list often enough to clear the
// co-occurrence threshold.
func (e *Engine) isComplement(s *productStats, all map[int64]*productStats, activeSet map[int64]bool) bool {
	if len(activeSet) == 0 || len(s.days) == 0 {
		return false
	}

	for id := range activeSet {
		other, ok := all[id]
		if !ok {
			continue
		}
		shared := 0
		for day := range s.days {
			if other.days[day] {
				shared++
			}
		}
		if float64(shared)/float64(len(s.days)) >= e.cfg.CooccurrenceThreshold {
			return true
		}
	}
	return false
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
