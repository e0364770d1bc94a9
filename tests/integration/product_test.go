//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/products")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	page := decodeJSON[productPageResponse](t, resp)
	if len(page.Products) != seedProducts {
		t.Errorf("products: got %d, want %d", len(page.Products), seedProducts)
	}
	if page.Page != 1 {
		t.Errorf("page: got %d, want 1", page.Page)
	}
}

func TestListProducts_Keyword(t *testing.T) {
	resp := doGet(t, "/api/products?keyword=iphone")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	page := decodeJSON[productPageResponse](t, resp)
	if len(page.Products) != 1 {
		t.Fatalf("products: got %d, want 1", len(page.Products))
	}
	if page.Products[0].Name != "iPhone 13 Pro 256GB Memory" {
		t.Errorf("unexpected product %q", page.Products[0].Name)
	}
}

func TestGetProduct(t *testing.T) {
	resp := doGet(t, "/api/products/"+seedProductID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	p := decodeJSON[productResponse](t, resp)
	if p.ID != seedProductID {
		t.Errorf("id: got %q, want %q", p.ID, seedProductID)
	}
	if p.Price != 89.99 {
		t.Errorf("price: got %v, want 89.99", p.Price)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/does-not-exist")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestTopProducts(t *testing.T) {
	resp := doGet(t, "/api/products/top")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) == 0 || len(products) > 4 {
		t.Fatalf("top products: got %d, want 1..4", len(products))
	}
	// Highest rated first: the Playstation (5.0).
	if products[0].Name != "Sony Playstation 5" {
		t.Errorf("top product: got %q", products[0].Name)
	}
}

func TestNewProducts(t *testing.T) {
	resp := doGet(t, "/api/products/new")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) == 0 || len(products) > 5 {
		t.Fatalf("new products: got %d, want 1..5", len(products))
	}
}
