package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/herbwise/basil/internal/model"
)

// RecordPurchase appends one purchase event to the log. Events are
// immutable once written.
func (s *SQLiteStorage) RecordPurchase(ctx context.Context, event *model.PurchaseEvent) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if event == nil {
		return fmt.Errorf("%w: event", ErrNilParameter)
	}
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid purchase event: %w", err)
	}

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	var price any
	if event.Price != nil {
		price = *event.Price
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO purchases (id, user_id, product_id, name, quantity, unit, price, category, purchased_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID.String(), event.UserID, event.ProductID, event.Name,
		event.Quantity, event.Unit, price, event.Category, event.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("failed to record purchase: %w", err)
	}

	// Keep the catalog's last observed price current.
	if event.Price != nil {
		if err := s.UpdateLastPrice(ctx, event.ProductID, *event.Price); err != nil {
			return fmt.Errorf("failed to update last price: %w", err)
		}
	}

	return nil
}

// ListPurchases returns a user's purchase events since the given time,
// oldest first.
func (s *SQLiteStorage) ListPurchases(ctx context.Context, userID int64, since time.Time) ([]model.PurchaseEvent, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, product_id, name, quantity, unit, price, category, purchased_at
		FROM purchases
		WHERE user_id = ? AND purchased_at >= ?
		ORDER BY purchased_at ASC`,
		userID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query purchases: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []model.PurchaseEvent
	for rows.Next() {
		var ev model.PurchaseEvent
		var id string
		var price sql.NullFloat64
		if err := rows.Scan(&id, &ev.UserID, &ev.ProductID, &ev.Name,
			&ev.Quantity, &ev.Unit, &price, &ev.Category, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("corrupt purchase id %q: %w", id, err)
		}
		ev.ID = parsed
		if price.Valid {
			ev.Price = &price.Float64
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchases: %w", err)
	}

	return events, nil
}

// LastPurchaseTimes returns, per product, the user's most recent purchase
// timestamp. Used by the matcher's tie-break.
func (s *SQLiteStorage) LastPurchaseTimes(ctx context.Context, userID int64) (map[int64]time.Time, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	// The max per product is taken in Go: aggregate expressions lose the
	// column's declared DATETIME type, which the driver needs to produce
	// time.Time values.
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, purchased_at
		FROM purchases
		WHERE user_id = ?`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query last purchases: %w", err)
	}
	defer func() { _ = rows.Close() }()

	times := make(map[int64]time.Time)
	for rows.Next() {
		var productID int64
		var ts time.Time
		if err := rows.Scan(&productID, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan last purchase: %w", err)
		}
		if ts.After(times[productID]) {
			times[productID] = ts
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating last purchases: %w", err)
	}

	return times, nil
}
