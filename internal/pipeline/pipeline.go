// Package pipeline orchestrates extraction: normalization, segmentation,
// quantity/unit extraction, catalog matching, categorization, and
// confidence scoring, in that order, over a single immutable catalog
// snapshot.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/herbwise/basil/internal/categorize"
	"github.com/herbwise/basil/internal/common"
	"github.com/herbwise/basil/internal/config"
	"github.com/herbwise/basil/internal/extract"
	"github.com/herbwise/basil/internal/match"
	"github.com/herbwise/basil/internal/model"
	"github.com/herbwise/basil/internal/normalize"
	"github.com/herbwise/basil/internal/segment"
	"github.com/herbwise/basil/internal/service"
)

// Result is the outcome of one extraction run.
type Result struct {
	Items []model.ExtractedItem
	// UnresolvedSegments holds segments that produced no usable residual
	// name, surfaced for caller-side clarification prompts.
	UnresolvedSegments []string
	// OverallConfidence is the arithmetic mean of item confidences, or 0
	// when nothing was extracted.
	OverallConfidence float64
}

// Pipeline is the extraction entry point. All linguistic ambiguity is
// resolved heuristically and becomes a lower confidence value; the only
// error this pipeline raises itself is ErrNoContent for empty input.
type Pipeline struct {
	segmenter   *segment.Segmenter
	extractor   *extract.Extractor
	matcher     *match.Matcher
	categorizer *categorize.Categorizer
	scorer      *Scorer
	catalog     service.CatalogStore
}

// New wires a Pipeline from seed data and configuration. catalog is used
// for exactly one thing: the idempotent registration of unmatched items.
func New(seeds *config.Seeds, cfg *config.Config, catalog service.CatalogStore) *Pipeline {
	return &Pipeline{
		segmenter:   segment.New(seeds.DenyList),
		extractor:   extract.New(seeds.Units),
		matcher:     match.New(match.ForName(cfg.Matching.Algorithm), cfg.Matching.SimilarityThreshold),
		categorizer: categorize.New(seeds.Categories),
		scorer:      NewScorer(cfg.Confidence),
		catalog:     catalog,
	}
}

// Extract runs the full pipeline over one raw input against the given
// catalog snapshot. lastPurchased (product ID to the requesting user's most
// recent purchase) only breaks matching ties and may be nil.
func (p *Pipeline) Extract(ctx context.Context, raw model.RawInput, snapshot *match.Snapshot, lastPurchased map[int64]time.Time) (*Result, error) {
	if err := raw.Validate(); err != nil {
		return nil, err
	}

	text := normalize.Text(raw.Text)
	if raw.Source == model.SourceManual {
		text = normalize.StripChatter(text)
	}
	if text == "" {
		return nil, common.ErrNoContent
	}

	segments := p.segmenter.Split(text, raw.Source)
	slog.Debug("Segmented input", "source", raw.Source, "segments", len(segments))

	result := &Result{}
	total := 0.0

	for _, seg := range segments {
		extracted, ok := p.extractor.Extract(seg)
		if !ok {
			slog.Debug("Segment yielded no residual name", "segment", seg.Text, "start", seg.Start)
			result.UnresolvedSegments = append(result.UnresolvedSegments, seg.Text)
			continue
		}

		item, err := p.resolveItem(ctx, raw, seg, extracted, snapshot, lastPurchased)
		if err != nil {
			return nil, err
		}

		result.Items = append(result.Items, item)
		total += item.Confidence
	}

	if len(result.Items) > 0 {
		result.OverallConfidence = total / float64(len(result.Items))
	}

	return result, nil
}

// resolveItem matches, categorizes, and scores one extracted segment,
// registering a new product when nothing in the catalog fits.
func (p *Pipeline) resolveItem(ctx context.Context, raw model.RawInput, seg model.Segment, extracted extract.Result, snapshot *match.Snapshot, lastPurchased map[int64]time.Time) (model.ExtractedItem, error) {
	verdict := p.matcher.Match(extracted.ResidualName, snapshot, lastPurchased)

	item := model.ExtractedItem{
		Name:     extracted.ResidualName,
		Quantity: extracted.Quantity,
		Unit:     extracted.Unit,
		Price:    extracted.Price,
		RawText:  seg.Text,
		Warnings: extracted.Warnings,
	}

	matchScore := 0.0
	switch {
	case verdict.Exact:
		matchScore = 1
		item.Name = verdict.Product.CanonicalName
		item.MatchedProductID = &verdict.Product.ID
		item.Category = p.categorizer.Classify(item.Name, verdict.Product)
	case verdict.Product != nil:
		matchScore = verdict.Similarity
		item.Name = verdict.Product.CanonicalName
		item.MatchedProductID = &verdict.Product.ID
		item.Category = p.categorizer.Classify(item.Name, verdict.Product)
	default:
		// No match cleared the threshold: register the proposal once and
		// treat whatever the store returns as authoritative. The store's
		// get-or-create collapses concurrent identical proposals.
		guess := p.categorizer.Classify(verdict.ProposedName, nil)
		product, err := p.catalog.GetOrCreateProduct(ctx, verdict.ProposedName, guess)
		if err != nil {
			return model.ExtractedItem{}, fmt.Errorf("failed to register product %q: %w", verdict.ProposedName, err)
		}
		item.Name = product.CanonicalName
		item.Category = product.Category
		slog.Debug("Registered new product",
			"name", product.CanonicalName,
			"category", product.Category,
			"best_similarity", verdict.Similarity)
	}

	item.Confidence = p.scorer.Combine(raw.SourceConfidence, extracted.Confidence, matchScore)
	return item, nil
}
