package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/herbwise/basil/internal/common"
	"github.com/herbwise/basil/internal/model"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "basil-test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return s
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	if _, err := NewSQLiteStorage(""); err == nil {
		t.Error("NewSQLiteStorage(\"\") error = nil, want error")
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStorage(t)

	// Migrations already ran in the helper; a second pass is a no-op.
	if err := s.Migrate(context.Background()); err != nil {
		t.Errorf("second Migrate() error = %v", err)
	}
}

func TestGetOrCreateProduct_Idempotent(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	first, err := s.GetOrCreateProduct(ctx, "tomato", "produce")
	if err != nil {
		t.Fatalf("GetOrCreateProduct() error = %v", err)
	}
	if first.ID == 0 {
		t.Error("first registration has zero id")
	}
	if first.Category != "produce" {
		t.Errorf("category = %q, want %q", first.Category, "produce")
	}

	// A second proposal, even with a different category guess, returns the
	// existing row unchanged.
	second, err := s.GetOrCreateProduct(ctx, "tomato", "other")
	if err != nil {
		t.Fatalf("second GetOrCreateProduct() error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second registration id = %d, want %d", second.ID, first.ID)
	}
	if second.Category != "produce" {
		t.Errorf("second registration category = %q, want original %q", second.Category, "produce")
	}

	products, err := s.ListProducts(ctx)
	if err != nil {
		t.Fatalf("ListProducts() error = %v", err)
	}
	if len(products) != 1 {
		t.Errorf("catalog has %d products, want 1", len(products))
	}
}

func TestGetOrCreateProduct_NormalizesName(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	created, err := s.GetOrCreateProduct(ctx, "  Organic Tomato ", "produce")
	if err != nil {
		t.Fatalf("GetOrCreateProduct() error = %v", err)
	}
	if created.CanonicalName != "tomato" {
		t.Errorf("canonical name = %q, want %q", created.CanonicalName, "tomato")
	}

	found, err := s.GetProductByName(ctx, "Tomato")
	if err != nil {
		t.Fatalf("GetProductByName() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("lookup id = %d, want %d", found.ID, created.ID)
	}
}

func TestGetProductByName_NotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.GetProductByName(context.Background(), "ghost")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetProductByName(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestUpdateLastPrice(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	p, err := s.GetOrCreateProduct(ctx, "milk", "dairy")
	if err != nil {
		t.Fatalf("GetOrCreateProduct() error = %v", err)
	}

	if err := s.UpdateLastPrice(ctx, p.ID, 2.49); err != nil {
		t.Fatalf("UpdateLastPrice() error = %v", err)
	}

	updated, err := s.GetProductByName(ctx, "milk")
	if err != nil {
		t.Fatalf("GetProductByName() error = %v", err)
	}
	if updated.LastKnownPrice == nil || *updated.LastKnownPrice != 2.49 {
		t.Errorf("last known price = %v, want 2.49", updated.LastKnownPrice)
	}
}

func TestUpdateLastPrice_UnknownProduct(t *testing.T) {
	s := newTestStorage(t)

	err := s.UpdateLastPrice(context.Background(), 999, 1.00)
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("UpdateLastPrice(999) error = %v, want ErrNotFound", err)
	}
}

func TestUpdateLastPrice_NegativePrice(t *testing.T) {
	s := newTestStorage(t)

	if err := s.UpdateLastPrice(context.Background(), 1, -0.5); err == nil {
		t.Error("UpdateLastPrice(-0.5) error = nil, want error")
	}
}

func TestRecordPurchase_RoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	p, err := s.GetOrCreateProduct(ctx, "bread", "pantry")
	if err != nil {
		t.Fatalf("GetOrCreateProduct() error = %v", err)
	}

	price := 1.99
	bought := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	event := &model.PurchaseEvent{
		UserID:    1,
		ProductID: p.ID,
		Name:      "bread",
		Quantity:  2,
		Unit:      "unit",
		Price:     &price,
		Category:  "pantry",
		Timestamp: bought,
	}
	if err := s.RecordPurchase(ctx, event); err != nil {
		t.Fatalf("RecordPurchase() error = %v", err)
	}
	if event.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("RecordPurchase() left the event id unset")
	}

	events, err := s.ListPurchases(ctx, 1, time.Time{})
	if err != nil {
		t.Fatalf("ListPurchases() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("ListPurchases() returned %d events, want 1", len(events))
	}

	got := events[0]
	if got.ID != event.ID {
		t.Errorf("id = %s, want %s", got.ID, event.ID)
	}
	if got.ProductID != p.ID || got.Name != "bread" || got.Quantity != 2 {
		t.Errorf("event = %+v, want bread x2", got)
	}
	if got.Price == nil || *got.Price != 1.99 {
		t.Errorf("price = %v, want 1.99", got.Price)
	}
	if !got.Timestamp.Equal(bought) {
		t.Errorf("timestamp = %v, want %v", got.Timestamp, bought)
	}

	// Recording a priced purchase refreshes the catalog's last price.
	updated, err := s.GetProductByName(ctx, "bread")
	if err != nil {
		t.Fatalf("GetProductByName() error = %v", err)
	}
	if updated.LastKnownPrice == nil || *updated.LastKnownPrice != 1.99 {
		t.Errorf("last known price = %v, want 1.99", updated.LastKnownPrice)
	}
}

func TestRecordPurchase_Invalid(t *testing.T) {
	s := newTestStorage(t)

	err := s.RecordPurchase(context.Background(), &model.PurchaseEvent{})
	if err == nil {
		t.Error("RecordPurchase(zero event) error = nil, want validation error")
	}

	if err := s.RecordPurchase(context.Background(), nil); err == nil {
		t.Error("RecordPurchase(nil) error = nil, want error")
	}
}

func TestListPurchases_FiltersByUserAndTime(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	p, err := s.GetOrCreateProduct(ctx, "milk", "dairy")
	if err != nil {
		t.Fatalf("GetOrCreateProduct() error = %v", err)
	}

	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, userID := range []int64{1, 1, 2} {
		event := &model.PurchaseEvent{
			UserID:    userID,
			ProductID: p.ID,
			Name:      "milk",
			Quantity:  1,
			Unit:      "l",
			Category:  "dairy",
			Timestamp: base.AddDate(0, 0, i*7),
		}
		if err := s.RecordPurchase(ctx, event); err != nil {
			t.Fatalf("RecordPurchase(%d) error = %v", i, err)
		}
	}

	all, err := s.ListPurchases(ctx, 1, time.Time{})
	if err != nil {
		t.Fatalf("ListPurchases() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("user 1 events = %d, want 2", len(all))
	}
	if len(all) == 2 && !all[0].Timestamp.Before(all[1].Timestamp) {
		t.Error("events not ordered oldest first")
	}

	recent, err := s.ListPurchases(ctx, 1, base.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("ListPurchases(since) error = %v", err)
	}
	if len(recent) != 1 {
		t.Errorf("filtered events = %d, want 1", len(recent))
	}
}

func TestLastPurchaseTimes(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	milk, err := s.GetOrCreateProduct(ctx, "milk", "dairy")
	if err != nil {
		t.Fatalf("GetOrCreateProduct() error = %v", err)
	}
	bread, err := s.GetOrCreateProduct(ctx, "bread", "pantry")
	if err != nil {
		t.Fatalf("GetOrCreateProduct() error = %v", err)
	}

	older := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	for _, ev := range []struct {
		productID int64
		ts        time.Time
	}{
		{milk.ID, older},
		{milk.ID, newer},
		{bread.ID, older},
	} {
		event := &model.PurchaseEvent{
			UserID:    1,
			ProductID: ev.productID,
			Name:      "x",
			Quantity:  1,
			Unit:      "unit",
			Category:  "other",
			Timestamp: ev.ts,
		}
		if err := s.RecordPurchase(ctx, event); err != nil {
			t.Fatalf("RecordPurchase() error = %v", err)
		}
	}

	times, err := s.LastPurchaseTimes(ctx, 1)
	if err != nil {
		t.Fatalf("LastPurchaseTimes() error = %v", err)
	}
	if len(times) != 2 {
		t.Fatalf("LastPurchaseTimes() = %v, want entries for 2 products", times)
	}
	if !times[milk.ID].Equal(newer) {
		t.Errorf("milk last purchase = %v, want %v", times[milk.ID], newer)
	}
	if !times[bread.ID].Equal(older) {
		t.Errorf("bread last purchase = %v, want %v", times[bread.ID], older)
	}
}
