package postgres

import (
	"context"
	"fmt"
	"math"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sohag00879/tech-haven-server/internal/domain/product"
)

const (
	productColumns = `id, name, brand, category, description, price,
		count_in_stock, rating, num_reviews, image, created_at`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY id
		LIMIT $2`

	countProductsSQL = `SELECT COUNT(*) FROM products
		WHERE name ILIKE '%' || $1 || '%'`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	getProductsByIDsSQL = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	topProductsSQL = `SELECT ` + productColumns + ` FROM products
		ORDER BY rating DESC, id
		LIMIT $1`

	newestProductsSQL = `SELECT ` + productColumns + ` FROM products
		ORDER BY created_at DESC, id DESC
		LIMIT $1`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns the first page of keyword-matching products together with the
// total page count.
func (r *ProductRepository) List(ctx context.Context, keyword string, pageSize int) (*product.Page, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, countProductsSQL, keyword).Scan(&count); err != nil {
		return nil, fmt.Errorf("counting products: %w", err)
	}

	rows, err := r.pool.Query(ctx, listProductsSQL, keyword, pageSize)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	return &product.Page{
		Products: products,
		Page:     1,
		Pages:    int(math.Ceil(float64(count) / float64(pageSize))),
	}, nil
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Top returns the highest-rated products.
func (r *ProductRepository) Top(ctx context.Context, limit int) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, topProductsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("listing top products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Newest returns the most recently added products.
func (r *ProductRepository) Newest(ctx context.Context, limit int) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, newestProductsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("listing newest products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Brand, &p.Category, &p.Description, &p.Price,
		&p.CountInStock, &p.Rating, &p.NumReviews, &p.Image, &p.CreatedAt,
	)
	return p, err
}
