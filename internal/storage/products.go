package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/herbwise/basil/internal/common"
	"github.com/herbwise/basil/internal/model"
	"github.com/herbwise/basil/internal/normalize"
)

// ListProducts returns the full catalog ordered by canonical name.
func (s *SQLiteStorage) ListProducts(ctx context.Context) ([]model.Product, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, canonical_name, category, last_known_price, created_at
		FROM products
		ORDER BY canonical_name`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCatalogUnavailable, err)
	}
	defer func() { _ = rows.Close() }()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	slog.Debug("retrieved catalog", "count", len(products))
	return products, nil
}

// GetProductByName returns the product with the given canonical name, or
// common.ErrNotFound.
func (s *SQLiteStorage) GetProductByName(ctx context.Context, canonicalName string) (*model.Product, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(canonicalName, "canonicalName"); err != nil {
		return nil, err
	}

	p, err := s.getProductByNameTx(ctx, s.db, normalize.Name(canonicalName))
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetOrCreateProduct registers a product under its normalized name, or
// returns the existing row when one is already registered. The operation is
// idempotent: concurrent identical proposals collapse to a single row, and
// the returned product (including a category resolved earlier by another
// caller) is authoritative.
func (s *SQLiteStorage) GetOrCreateProduct(ctx context.Context, canonicalName, category string) (*model.Product, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(canonicalName, "canonicalName"); err != nil {
		return nil, err
	}
	if err := validateString(category, "category"); err != nil {
		return nil, err
	}

	name := normalize.Name(canonicalName)

	// Insert-or-ignore against the unique name constraint, then read back
	// whichever row won.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (canonical_name, category)
		VALUES (?, ?)
		ON CONFLICT(canonical_name) DO NOTHING`,
		name, category)
	if err != nil {
		return nil, fmt.Errorf("failed to register product: %w", err)
	}

	product, err := s.getProductByNameTx(ctx, s.db, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read back product %q: %w", name, err)
	}
	return product, nil
}

// UpdateLastPrice records the most recent observed price for a product.
func (s *SQLiteStorage) UpdateLastPrice(ctx context.Context, productID int64, price float64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if price < 0 {
		return fmt.Errorf("price cannot be negative, got %.2f", price)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE products SET last_known_price = ? WHERE id = ?`,
		price, productID)
	if err != nil {
		return fmt.Errorf("failed to update price: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: product %d", common.ErrNotFound, productID)
	}
	return nil
}

func (s *SQLiteStorage) getProductByNameTx(ctx context.Context, q queryable, name string) (*model.Product, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, canonical_name, category, last_known_price, created_at
		FROM products
		WHERE canonical_name = ?`, name)

	var p model.Product
	var price sql.NullFloat64
	err := row.Scan(&p.ID, &p.CanonicalName, &p.Category, &price, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: product %q", common.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if price.Valid {
		p.LastKnownPrice = &price.Float64
	}
	return &p, nil
}

func scanProduct(rows *sql.Rows) (model.Product, error) {
	var p model.Product
	var price sql.NullFloat64
	if err := rows.Scan(&p.ID, &p.CanonicalName, &p.Category, &price, &p.CreatedAt); err != nil {
		return model.Product{}, fmt.Errorf("failed to scan product: %w", err)
	}
	if price.Valid {
		p.LastKnownPrice = &price.Float64
	}
	return p, nil
}
