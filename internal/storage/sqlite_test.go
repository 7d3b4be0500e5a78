package storage

import (
	"testing"
	"time"

	"github.com/chicbot/chicbot/internal/catalog"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:): %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrationsApplied(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.CountProducts(); err != nil {
		t.Fatalf("products table missing: %v", err)
	}
}

func TestImportAndListProducts(t *testing.T) {
	s := openTestStore(t)

	price := 24.99
	in := []catalog.Product{
		{
			SKU: "A1", Name: "Black Jacket", Category: "Jackets", Color: "black",
			BaseColor: "black", Brand: "Topshop", Price: &price,
			AvailableSizes: []string{"S", "M"}, ImageURLs: []string{"http://img/1"},
		},
		{Name: "No Price Dress", Category: "Dresses", Color: "red"},
	}
	if err := s.ImportProducts(in); err != nil {
		t.Fatalf("ImportProducts: %v", err)
	}

	out, err := s.ListProducts()
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d products, want 2", len(out))
	}
	if out[0].SKU != "A1" || out[0].Price == nil || *out[0].Price != 24.99 {
		t.Errorf("first product mangled: %+v", out[0])
	}
	if len(out[0].AvailableSizes) != 2 {
		t.Errorf("sizes not round-tripped: %v", out[0].AvailableSizes)
	}
	if out[1].Price != nil {
		t.Errorf("nil price not preserved: %v", *out[1].Price)
	}

	// Re-import replaces, never appends.
	if err := s.ImportProducts(in[:1]); err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if n, _ := s.CountProducts(); n != 1 {
		t.Errorf("re-import kept %d products, want 1", n)
	}
}

func TestSaveAndListInteractions(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, q := range []string{"black jacket", "qu'est-ce que tu as en rouge", "show me more"} {
		err := s.SaveInteraction(Interaction{
			ID:            string(rune('a' + i)),
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
			SessionID:     "s1",
			OriginalQuery: q,
			Status:        "completed",
		})
		if err != nil {
			t.Fatalf("SaveInteraction: %v", err)
		}
	}

	got, err := s.ListInteractions(2)
	if err != nil {
		t.Fatalf("ListInteractions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d interactions, want 2", len(got))
	}
	if got[0].OriginalQuery != "show me more" {
		t.Errorf("newest first expected, got %q", got[0].OriginalQuery)
	}
}
