package pipeline

import (
	"math"
	"testing"

	"github.com/herbwise/basil/internal/config"
)

func equalThirds() config.ConfidenceConfig {
	return config.ConfidenceConfig{
		SourceWeight:     1.0 / 3,
		ExtractionWeight: 1.0 / 3,
		MatchWeight:      1.0 / 3,
	}
}

func TestCombine(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.ConfidenceConfig
		source     float64
		extraction float64
		match      float64
		want       float64
	}{
		{
			name:       "all perfect",
			cfg:        equalThirds(),
			source:     1, extraction: 1, match: 1,
			want: 1,
		},
		{
			name:       "zero match zeroes the product",
			cfg:        equalThirds(),
			source:     1, extraction: 1, match: 0,
			want: 0,
		},
		{
			name:       "equal thirds geometric mean",
			cfg:        equalThirds(),
			source:     0.5, extraction: 0.5, match: 0.5,
			want: 0.5,
		},
		{
			name:       "weights normalize before combining",
			cfg:        config.ConfidenceConfig{SourceWeight: 2, ExtractionWeight: 2, MatchWeight: 2},
			source:     0.5, extraction: 0.5, match: 0.5,
			want: 0.5,
		},
		{
			name:       "out of range inputs clamp",
			cfg:        equalThirds(),
			source:     1.5, extraction: -0.3, match: 1,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScorer(tt.cfg)
			got := s.Combine(tt.source, tt.extraction, tt.match)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Combine(%g, %g, %g) = %.4f, want %.4f",
					tt.source, tt.extraction, tt.match, got, tt.want)
			}
		})
	}
}

func TestCombine_Monotonic(t *testing.T) {
	s := NewScorer(equalThirds())

	prev := s.Combine(1, 0.8, 0.9)
	for _, source := range []float64{0.9, 0.7, 0.5, 0.2, 0} {
		got := s.Combine(source, 0.8, 0.9)
		if got > prev {
			t.Errorf("Combine rose from %.4f to %.4f as source fell to %.2f", prev, got, source)
		}
		prev = got
	}
}

func TestCombine_LowSubScoreDragsSharply(t *testing.T) {
	s := NewScorer(equalThirds())

	balanced := s.Combine(0.7, 0.7, 0.7)
	skewed := s.Combine(1, 1, 0.1)
	if skewed >= balanced {
		t.Errorf("weighted product: Combine(1,1,0.1) = %.4f should fall below Combine(0.7,0.7,0.7) = %.4f",
			skewed, balanced)
	}
}

func TestNewScorer_DegenerateWeights(t *testing.T) {
	s := NewScorer(config.ConfidenceConfig{})

	got := s.Combine(0.5, 0.5, 0.5)
	if math.Abs(got-0.5) > 1e-9 {
		t.Errorf("degenerate weights: Combine(0.5,0.5,0.5) = %.4f, want equal-thirds fallback 0.5", got)
	}
}
