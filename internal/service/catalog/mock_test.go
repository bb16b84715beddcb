package catalog

import (
	"testing"

	"github.com/ashish02003/Freshify/internal/domain"
)

func TestMockCatalog(t *testing.T) {
	mock := NewMockCatalog()
	if mock == nil {
		t.Fatal("expected non-nil mock")
	}

	product, ok := mock.GetProduct("prod-bananas")
	if !ok {
		t.Fatal("expected default product prod-bananas")
	}
	if product.PriceMinor != 6900 {
		t.Fatalf("unexpected price: %d", product.PriceMinor)
	}

	if _, ok := mock.GetProduct("prod-unknown"); ok {
		t.Fatal("expected miss for unknown product")
	}

	mock.Put(domain.ProductView{ID: "prod-eggs", Name: "Eggs 12pcs", PriceMinor: 9900})
	if _, ok := mock.GetProduct("prod-eggs"); !ok {
		t.Fatal("expected product after Put")
	}

	if mock.GetCalls != 3 {
		t.Fatalf("unexpected call counter: %d", mock.GetCalls)
	}
}
