package match

import (
	"testing"
	"time"

	"github.com/herbwise/basil/internal/model"
)

func testSnapshot() *Snapshot {
	return NewSnapshot([]model.Product{
		{ID: 1, CanonicalName: "tomato", Category: "produce"},
		{ID: 2, CanonicalName: "milk", Category: "dairy"},
		{ID: 3, CanonicalName: "whole milk", Category: "dairy"},
		{ID: 4, CanonicalName: "bread", Category: "pantry"},
	})
}

func TestMatch_Exact(t *testing.T) {
	m := New(Levenshtein{}, 0.75)

	v := m.Match("milk", testSnapshot(), nil)
	if v.Product == nil || v.Product.ID != 2 {
		t.Fatalf("Match(milk) product = %+v, want id 2", v.Product)
	}
	if !v.Exact {
		t.Error("Match(milk) exact = false, want true")
	}
	if v.Similarity != 1 {
		t.Errorf("Match(milk) similarity = %.2f, want 1.0", v.Similarity)
	}
}

func TestMatch_ExactIsCaseInsensitive(t *testing.T) {
	m := New(Levenshtein{}, 0.75)

	v := m.Match("  Bread ", testSnapshot(), nil)
	if v.Product == nil || v.Product.ID != 4 {
		t.Fatalf("Match(Bread) product = %+v, want id 4", v.Product)
	}
	if !v.Exact {
		t.Error("Match(Bread) exact = false, want true")
	}
}

func TestMatch_Misspelling(t *testing.T) {
	m := New(Levenshtein{}, 0.75)

	v := m.Match("tomatoe", testSnapshot(), nil)
	if v.Product == nil || v.Product.ID != 1 {
		t.Fatalf("Match(tomatoe) product = %+v, want tomato", v.Product)
	}
	if v.Exact {
		t.Error("Match(tomatoe) exact = true, want fuzzy")
	}
	if v.Similarity < 0.75 || v.Similarity >= 1 {
		t.Errorf("Match(tomatoe) similarity = %.4f, want within [0.75, 1)", v.Similarity)
	}
}

func TestMatch_BelowThresholdProposesNewProduct(t *testing.T) {
	m := New(Levenshtein{}, 0.75)

	v := m.Match("quinoa", testSnapshot(), nil)
	if v.Product != nil {
		t.Fatalf("Match(quinoa) product = %+v, want nil", v.Product)
	}
	if v.ProposedName != "quinoa" {
		t.Errorf("ProposedName = %q, want %q", v.ProposedName, "quinoa")
	}
}

func TestMatch_EmptyCatalog(t *testing.T) {
	m := New(Levenshtein{}, 0.75)

	v := m.Match("apples", NewSnapshot(nil), nil)
	if v.Product != nil {
		t.Fatalf("Match on empty catalog matched %+v", v.Product)
	}
	if v.ProposedName != "apples" {
		t.Errorf("ProposedName = %q, want %q", v.ProposedName, "apples")
	}
}

func TestMatch_TieBreakPrefersRecentPurchase(t *testing.T) {
	snapshot := NewSnapshot([]model.Product{
		{ID: 1, CanonicalName: "soda water"},
		{ID: 2, CanonicalName: "tonic water"},
	})
	lastPurchased := map[int64]time.Time{
		2: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	}

	m := New(TokenSet{}, 0.3)
	v := m.Match("water", snapshot, lastPurchased)
	if v.Product == nil || v.Product.ID != 2 {
		t.Fatalf("Match(water) product = %+v, want recently bought tonic water", v.Product)
	}
}

func TestMatch_TieBreakFallsBackToName(t *testing.T) {
	snapshot := NewSnapshot([]model.Product{
		{ID: 1, CanonicalName: "tonic water"},
		{ID: 2, CanonicalName: "soda water"},
	})

	m := New(TokenSet{}, 0.3)
	v := m.Match("water", snapshot, nil)
	if v.Product == nil || v.Product.CanonicalName != "soda water" {
		t.Fatalf("Match(water) product = %+v, want lexicographically first", v.Product)
	}
}

func TestPrefilter_SharedPrefixSurvives(t *testing.T) {
	m := New(Levenshtein{}, 0.75)
	snapshot := testSnapshot()

	candidates := m.prefilter("tomatoe", snapshot)
	if len(candidates) != 1 || snapshot.products[candidates[0]].CanonicalName != "tomato" {
		t.Errorf("prefilter(tomatoe) = %v, want the tomato entry", candidates)
	}
}

func TestPrefilter_NoOverlap(t *testing.T) {
	m := New(Levenshtein{}, 0.75)

	if candidates := m.prefilter("quinoa", testSnapshot()); len(candidates) != 0 {
		t.Errorf("prefilter(quinoa) = %v, want none", candidates)
	}
}
