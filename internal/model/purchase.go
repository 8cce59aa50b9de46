package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PurchaseEvent is an append-only record of one purchased item. Events are
// inserted once and never mutated; the suggestion engine only reads them.
type PurchaseEvent struct {
	ID        uuid.UUID
	UserID    int64
	ProductID int64
	Name      string
	Quantity  float64
	Unit      string
	Price     *float64
	Category  string
	Timestamp time.Time
}

// Validate checks that the event can be recorded.
func (p PurchaseEvent) Validate() error {
	if p.UserID == 0 {
		return fmt.Errorf("user id is required")
	}
	if p.ProductID == 0 {
		return fmt.Errorf("product id is required")
	}
	if p.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %g", p.Quantity)
	}
	if p.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	return nil
}
