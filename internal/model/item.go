package model

import "fmt"

// ExtractedItem is one structured purchase record produced by the
// extraction pipeline. Ownership passes to the caller, who decides whether
// and how to persist it.
type ExtractedItem struct {
	Name             string
	Quantity         float64
	Unit             string
	Price            *float64
	Category         string
	Confidence       float64
	MatchedProductID *int64
	RawText          string
	// Warnings records non-fatal extraction ambiguities. They lower the
	// item's confidence but never stop the pipeline.
	Warnings []string
}

// Validate checks invariants on a finished item.
func (i ExtractedItem) Validate() error {
	if i.Name == "" {
		return fmt.Errorf("item name is required")
	}
	if i.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %g", i.Quantity)
	}
	if i.Confidence < 0 || i.Confidence > 1 {
		return fmt.Errorf("confidence must be between 0.0 and 1.0, got %.2f", i.Confidence)
	}
	if i.Price != nil && *i.Price < 0 {
		return fmt.Errorf("price cannot be negative, got %.2f", *i.Price)
	}
	return nil
}

// IsNewProduct reports whether the item did not resolve to an existing
// catalog product during matching.
func (i ExtractedItem) IsNewProduct() bool {
	return i.MatchedProductID == nil
}
