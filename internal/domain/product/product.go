package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase.
type Product struct {
	ID           string
	Name         string
	Brand        string
	Category     string
	Description  string
	Price        decimal.Decimal
	CountInStock int
	Rating       decimal.Decimal
	NumReviews   int
	Image        string
	CreatedAt    time.Time
}

// Page is one page of catalog results together with pagination metadata.
type Page struct {
	Products []Product
	Page     int
	Pages    int
}

// Repository defines read operations for the product catalog.
type Repository interface {
	// List returns the first page of products whose name matches the keyword
	// (case-insensitive substring; an empty keyword matches everything).
	List(ctx context.Context, keyword string, pageSize int) (*Page, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	// GetByIDs returns the products matching any of the given IDs in a single
	// query. Missing IDs are simply absent from the result.
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	// Top returns the highest-rated products.
	Top(ctx context.Context, limit int) ([]Product, error)
	// Newest returns the most recently added products.
	Newest(ctx context.Context, limit int) ([]Product, error)
}
