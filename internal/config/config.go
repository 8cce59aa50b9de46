// Package config provides configuration loading for the application.
//
// All of the numeric policy choices in the extraction and suggestion layers
// (similarity threshold, confidence weights, suggestion weights and window)
// live here rather than in the packages that consume them, so they can be
// tuned per deployment without code changes.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/herbwise/basil/internal/common"
)

// MatchingConfig tunes the catalog matcher.
type MatchingConfig struct {
	// Algorithm selects the similarity measure: "levenshtein" or "tokenset".
	Algorithm string
	// SimilarityThreshold is the minimum similarity for a fuzzy match.
	SimilarityThreshold float64
}

// ConfidenceConfig holds the exponents of the weighted-product confidence
// combination. They are normalized to sum to 1 at load time.
type ConfidenceConfig struct {
	SourceWeight     float64
	ExtractionWeight float64
	MatchWeight      float64
}

// SuggestConfig tunes the suggestion engine.
type SuggestConfig struct {
	WindowDays            int
	TopN                  int
	FrequencyWeight       float64
	OverdueWeight         float64
	SeasonalWeight        float64
	ComplementWeight      float64
	CooccurrenceThreshold float64
	OverdueOverride       float64
}

// Config is the full application configuration.
type Config struct {
	DatabasePath string
	SeedsPath    string
	Matching     MatchingConfig
	Confidence   ConfidenceConfig
	Suggest      SuggestConfig
	Enrichment   EnrichmentConfig
}

// EnrichmentConfig configures the optional LLM enrichment collaborator.
type EnrichmentConfig struct {
	Enabled     bool
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
}

// SetDefaults registers default values for every key on the given viper
// instance. Called once before reading the config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "~/.local/share/basil/basil.db")
	v.SetDefault("seeds.path", "")

	v.SetDefault("matching.algorithm", "levenshtein")
	v.SetDefault("matching.similarity_threshold", 0.75)

	v.SetDefault("confidence.source_weight", 1.0/3.0)
	v.SetDefault("confidence.extraction_weight", 1.0/3.0)
	v.SetDefault("confidence.match_weight", 1.0/3.0)

	v.SetDefault("suggest.window_days", 90)
	v.SetDefault("suggest.top_n", 10)
	v.SetDefault("suggest.frequency_weight", 0.4)
	v.SetDefault("suggest.overdue_weight", 0.35)
	v.SetDefault("suggest.seasonal_weight", 0.15)
	v.SetDefault("suggest.complement_weight", 0.1)
	v.SetDefault("suggest.cooccurrence_threshold", 0.3)
	v.SetDefault("suggest.overdue_override", 0.9)

	v.SetDefault("enrichment.enabled", false)
	v.SetDefault("enrichment.base_url", "https://api.openai.com/v1")
	v.SetDefault("enrichment.model", "gpt-4o-mini")
	v.SetDefault("enrichment.temperature", 0.0)
}

// Load builds a Config from the given viper instance.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabasePath: ExpandPath(v.GetString("database.path")),
		SeedsPath:    ExpandPath(v.GetString("seeds.path")),
		Matching: MatchingConfig{
			Algorithm:           v.GetString("matching.algorithm"),
			SimilarityThreshold: v.GetFloat64("matching.similarity_threshold"),
		},
		Confidence: ConfidenceConfig{
			SourceWeight:     v.GetFloat64("confidence.source_weight"),
			ExtractionWeight: v.GetFloat64("confidence.extraction_weight"),
			MatchWeight:      v.GetFloat64("confidence.match_weight"),
		},
		Suggest: SuggestConfig{
			WindowDays:            v.GetInt("suggest.window_days"),
			TopN:                  v.GetInt("suggest.top_n"),
			FrequencyWeight:       v.GetFloat64("suggest.frequency_weight"),
			OverdueWeight:         v.GetFloat64("suggest.overdue_weight"),
			SeasonalWeight:        v.GetFloat64("suggest.seasonal_weight"),
			ComplementWeight:      v.GetFloat64("suggest.complement_weight"),
			CooccurrenceThreshold: v.GetFloat64("suggest.cooccurrence_threshold"),
			OverdueOverride:       v.GetFloat64("suggest.overdue_override"),
		},
		Enrichment: EnrichmentConfig{
			Enabled:     v.GetBool("enrichment.enabled"),
			BaseURL:     v.GetString("enrichment.base_url"),
			APIKey:      os.ExpandEnv(v.GetString("enrichment.api_key")),
			Model:       v.GetString("enrichment.model"),
			Temperature: v.GetFloat64("enrichment.temperature"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Matching.SimilarityThreshold < 0 || c.Matching.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: matching.similarity_threshold must be in [0,1], got %g",
			common.ErrInvalidConfig, c.Matching.SimilarityThreshold)
	}
	switch c.Matching.Algorithm {
	case "levenshtein", "tokenset":
	default:
		return fmt.Errorf("%w: unknown matching.algorithm %q",
			common.ErrInvalidConfig, c.Matching.Algorithm)
	}
	if c.Confidence.SourceWeight < 0 || c.Confidence.ExtractionWeight < 0 || c.Confidence.MatchWeight < 0 {
		return fmt.Errorf("%w: confidence weights must be non-negative", common.ErrInvalidConfig)
	}
	if c.Suggest.TopN <= 0 {
		return fmt.Errorf("%w: suggest.top_n must be positive, got %d",
			common.ErrInvalidConfig, c.Suggest.TopN)
	}
	if c.Suggest.WindowDays <= 0 {
		return fmt.Errorf("%w: suggest.window_days must be positive, got %d",
			common.ErrInvalidConfig, c.Suggest.WindowDays)
	}
	return nil
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}
