package pipeline

import (
	"math"

	"github.com/herbwise/basil/internal/config"
)

// Scorer combines per-field confidences into one item-level confidence.
//
// The combination is a weighted product, not a sum: any near-zero sub-score
// drags the overall score down sharply, so a perfectly parsed but entirely
// unmatched item still surfaces low enough to prompt user confirmation.
type Scorer struct {
	sourceWeight     float64
	extractionWeight float64
	matchWeight      float64
}

// NewScorer builds a Scorer from config, normalizing the weights to sum
// to 1 so the combined score stays in [0,1].
func NewScorer(cfg config.ConfidenceConfig) *Scorer {
	total := cfg.SourceWeight + cfg.ExtractionWeight + cfg.MatchWeight
	if total <= 0 {
		// Degenerate config; fall back to equal thirds.
		return &Scorer{sourceWeight: 1.0 / 3, extractionWeight: 1.0 / 3, matchWeight: 1.0 / 3}
	}
	return &Scorer{
		sourceWeight:     cfg.SourceWeight / total,
		extractionWeight: cfg.ExtractionWeight / total,
		matchWeight:      cfg.MatchWeight / total,
	}
}

// Combine returns source^wa * extraction^wb * match^wc, clamped to [0,1].
func (s *Scorer) Combine(source, extraction, match float64) float64 {
	score := math.Pow(clamp01(source), s.sourceWeight) *
		math.Pow(clamp01(extraction), s.extractionWeight) *
		math.Pow(clamp01(match), s.matchWeight)
	return clamp01(score)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
