// Command seed-db loads catalog and user fixtures into PostgreSQL.
// Input files are JSON arrays, optionally gzip-compressed (.json.gz).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Sohag00879/tech-haven-server/internal/storage/postgres"
)

type productJSON struct {
	ID           string          `json:"_id"`
	Name         string          `json:"name"`
	Brand        string          `json:"brand"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	CountInStock int             `json:"countInStock"`
	Rating       decimal.Decimal `json:"rating"`
	NumReviews   int             `json:"numReviews"`
	Image        string          `json:"image"`
}

type userJSON struct {
	ID       string `json:"_id"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
}

const upsertProductSQL = `
INSERT INTO products (id, name, brand, category, description, price, count_in_stock, rating, num_reviews, image)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    brand = EXCLUDED.brand,
    category = EXCLUDED.category,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    count_in_stock = EXCLUDED.count_in_stock,
    rating = EXCLUDED.rating,
    num_reviews = EXCLUDED.num_reviews,
    image = EXCLUDED.image
`

const upsertUserSQL = `
INSERT INTO users (id, user_name, email)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET
    user_name = EXCLUDED.user_name,
    email = EXCLUDED.email
`

func main() {
	var (
		databaseURL  string
		productsFile string
		usersFile    string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file (.json or .json.gz)")
	flag.StringVar(&usersFile, "users-file", "db/seed/users.json", "path to users JSON file (.json or .json.gz)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, usersFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, usersFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Users and products live in independent tables, so seed them
	// concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return errors.Wrap(seedUsers(gctx, pool, usersFile), "seed users")
	})
	g.Go(func() error {
		return errors.Wrap(seedProducts(gctx, pool, productsFile), "seed products")
	})
	return g.Wait()
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, path string) error {
	slog.Info("reading products file", slog.String("path", path))

	var products []productJSON
	if err := readJSONFile(path, &products); err != nil {
		return err
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		if _, err := pool.Exec(ctx, upsertProductSQL,
			p.ID, p.Name, p.Brand, p.Category, p.Description,
			p.Price, p.CountInStock, p.Rating, p.NumReviews, p.Image,
		); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}
	}

	return nil
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool, path string) error {
	slog.Info("reading users file", slog.String("path", path))

	var users []userJSON
	if err := readJSONFile(path, &users); err != nil {
		return err
	}

	slog.Info("upserting users", slog.Int("count", len(users)))

	for _, u := range users {
		if u.ID == "" {
			u.ID = uuid.New().String()
		}
		if _, err := pool.Exec(ctx, upsertUserSQL, u.ID, u.UserName, u.Email); err != nil {
			return errors.Wrapf(err, "upsert user %s", u.ID)
		}
	}

	return nil
}

// readJSONFile decodes a JSON array from path into v, transparently
// decompressing .gz files.
func readJSONFile(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open file")
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrap(err, "open gzip reader")
		}
		defer zr.Close()
		r = zr
	}

	if err := json.NewDecoder(r).Decode(v); err != nil {
		return errors.Wrap(err, "parse JSON")
	}
	return nil
}
