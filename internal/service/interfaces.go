// Package service defines the interfaces for all application collaborators.
package service

import (
	"context"
	"time"

	"github.com/herbwise/basil/internal/model"
)

// CatalogStore is the contract for the shared product catalog.
//
// GetOrCreateProduct must be idempotent per normalized name: concurrent
// identical proposals collapse to a single row, and the returned Product is
// authoritative even when it differs from the caller's proposal.
type CatalogStore interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProductByName(ctx context.Context, canonicalName string) (*model.Product, error)
	GetOrCreateProduct(ctx context.Context, canonicalName, category string) (*model.Product, error)
	UpdateLastPrice(ctx context.Context, productID int64, price float64) error
}

// PurchaseLog is the contract for the append-only purchase history.
type PurchaseLog interface {
	RecordPurchase(ctx context.Context, event *model.PurchaseEvent) error
	ListPurchases(ctx context.Context, userID int64, since time.Time) ([]model.PurchaseEvent, error)
	LastPurchaseTimes(ctx context.Context, userID int64) (map[int64]time.Time, error)
}

// Storage aggregates the persistence collaborators.
type Storage interface {
	CatalogStore
	PurchaseLog

	Migrate(ctx context.Context) error
	Close() error
}

// OCRClient is the contract for the optical character recognition engine.
// The engine is a black box: it returns raw text plus its own confidence,
// which the pipeline treats as the input's source confidence.
type OCRClient interface {
	Recognize(ctx context.Context, imagePath string) (OCRResult, error)
}

// OCRResult is the raw output of an OCR run.
type OCRResult struct {
	Text       string
	Confidence float64
}

// Enricher is the optional LLM-backed assist consulted around the core
// pipeline. The pipeline's contracts hold with or without it.
type Enricher interface {
	SuggestCategory(ctx context.Context, itemName string, categories []string) (string, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
