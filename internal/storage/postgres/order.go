package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Sohag00879/tech-haven-server/internal/domain/order"
	"github.com/Sohag00879/tech-haven-server/internal/domain/user"
)

const (
	orderColumns = `o.id, o.user_id, o.items, o.shipping_address, o.payment_method,
		o.items_price, o.shipping_price, o.tax_price, o.total_price,
		o.is_paid, o.paid_at, o.is_delivered, o.delivered_at, o.created_at`

	insertOrderSQL = `INSERT INTO orders (
			id, user_id, items, shipping_address, payment_method,
			items_price, shipping_price, tax_price, total_price, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	getOrderByIDSQL = `SELECT ` + orderColumns + `, u.id, u.user_name, u.email
		FROM orders o JOIN users u ON u.id = o.user_id
		WHERE o.id = $1`

	listOrdersByUserSQL = `SELECT ` + orderColumns + `, u.id, u.user_name, u.email
		FROM orders o JOIN users u ON u.id = o.user_id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.id DESC`

	listAllOrdersSQL = `SELECT ` + orderColumns + `, u.id, u.user_name, u.email
		FROM orders o JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC, o.id DESC`

	countOrdersSQL = `SELECT COUNT(*) FROM orders`

	sumTotalPriceSQL = `SELECT COALESCE(SUM(total_price), 0) FROM orders`

	sumPaidByDaySQL = `SELECT to_char(paid_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day,
			SUM(total_price)
		FROM orders
		WHERE is_paid AND paid_at IS NOT NULL
		GROUP BY day
		ORDER BY day`

	listOrdersSinceSQL = `SELECT ` + orderColumns + `, u.id, u.user_name, u.email
		FROM orders o JOIN users u ON u.id = o.user_id
		WHERE $1::timestamptz IS NULL OR o.created_at >= $1
		ORDER BY o.created_at DESC, o.id DESC
		LIMIT $2 OFFSET $3`

	countOrdersSinceSQL = `SELECT COUNT(*) FROM orders
		WHERE $1::timestamptz IS NULL OR created_at >= $1`

	// The paid/delivered timestamps latch inside the statement: COALESCE keeps
	// an existing value, so concurrent calls settle on exactly one timestamp.
	markPaidSQL = `UPDATE orders o
		SET is_paid = TRUE, paid_at = COALESCE(o.paid_at, now())
		WHERE o.id = $1
		RETURNING ` + orderColumns

	markDeliveredSQL = `UPDATE orders o
		SET is_delivered = TRUE, delivered_at = COALESCE(o.delivered_at, now())
		WHERE o.id = $1
		RETURNING ` + orderColumns

	// NULL flag parameters leave the corresponding column untouched. The
	// timestamp is set only on an unset -> true transition and never cleared.
	updateStatusSQL = `UPDATE orders o
		SET is_paid = COALESCE($2, o.is_paid),
			paid_at = CASE
				WHEN COALESCE($2, o.is_paid) AND o.paid_at IS NULL THEN now()
				ELSE o.paid_at
			END,
			is_delivered = COALESCE($3, o.is_delivered),
			delivered_at = CASE
				WHEN COALESCE($3, o.is_delivered) AND o.delivered_at IS NULL THEN now()
				ELSE o.delivered_at
			END
		WHERE o.id = $1
		RETURNING ` + orderColumns
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Line
// items travel as a JSONB document; monetary columns are NUMERIC mapped to
// shopspring decimals.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Insert persists a new order. The order is visible to reads as soon as the
// call returns.
func (r *OrderRepository) Insert(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}

	_, err = r.pool.Exec(ctx, insertOrderSQL,
		o.ID, o.UserID, itemsJSON, []byte(o.ShippingAddress), o.PaymentMethod,
		o.ItemsPrice, o.ShippingPrice, o.TaxPrice, o.TotalPrice, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting order %q: %w", o.ID, err)
	}
	return nil
}

// GetByID returns a single order with its user summary populated.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrderWithUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanOrderWithUser)
}

// ListAll returns every order with denormalized user summaries, newest first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listAllOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrderWithUser)
}

// Count reports the total number of orders.
func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, countOrdersSQL).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting orders: %w", err)
	}
	return count, nil
}

// SumTotalPrice reports the summed total price across all orders.
func (r *OrderRepository) SumTotalPrice(ctx context.Context) (decimal.Decimal, error) {
	var sum decimal.Decimal
	if err := r.pool.QueryRow(ctx, sumTotalPriceSQL).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("summing total price: %w", err)
	}
	return sum, nil
}

// SumPaidByDay groups paid orders by the UTC calendar day they were marked
// paid and sums their total price.
func (r *OrderRepository) SumPaidByDay(ctx context.Context) ([]order.DailySales, error) {
	rows, err := r.pool.Query(ctx, sumPaidByDaySQL)
	if err != nil {
		return nil, fmt.Errorf("summing paid sales by day: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.DailySales, error) {
		var d order.DailySales
		err := row.Scan(&d.Day, &d.TotalSales)
		return d, err
	})
}

// ListSince returns one page of orders created at or after since (all orders
// when since is nil), newest first, plus the unpaginated match count.
func (r *OrderRepository) ListSince(ctx context.Context, since *time.Time, limit, offset int) ([]order.Order, int64, error) {
	rows, err := r.pool.Query(ctx, listOrdersSinceSQL, since, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing orders by window: %w", err)
	}
	orders, err := pgx.CollectRows(rows, scanOrderWithUser)
	if err != nil {
		return nil, 0, fmt.Errorf("listing orders by window: %w", err)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, countOrdersSinceSQL, since).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting orders by window: %w", err)
	}
	return orders, total, nil
}

// MarkPaid latches the paid flag in a single conditional update.
func (r *OrderRepository) MarkPaid(ctx context.Context, id string) (*order.Order, error) {
	return r.mutate(ctx, markPaidSQL, id)
}

// MarkDelivered latches the delivered flag in a single conditional update.
func (r *OrderRepository) MarkDelivered(ctx context.Context, id string) (*order.Order, error) {
	return r.mutate(ctx, markDeliveredSQL, id)
}

// UpdateStatus applies the present flags; absent flags are passed as NULL and
// leave their columns untouched.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, upd order.StatusUpdate) (*order.Order, error) {
	return r.mutate(ctx, updateStatusSQL, id, upd.IsPaid, upd.IsDelivered)
}

func (r *OrderRepository) mutate(ctx context.Context, sql string, args ...any) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("updating order: %w", err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("updating order: %w", err)
	}
	return &o, nil
}

// scanOrder scans the bare order columns (no user join).
func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o        order.Order
		items    []byte
		shipping []byte
	)
	err := row.Scan(
		&o.ID, &o.UserID, &items, &shipping, &o.PaymentMethod,
		&o.ItemsPrice, &o.ShippingPrice, &o.TaxPrice, &o.TotalPrice,
		&o.IsPaid, &o.PaidAt, &o.IsDelivered, &o.DeliveredAt, &o.CreatedAt,
	)
	if err != nil {
		return order.Order{}, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return order.Order{}, fmt.Errorf("unmarshaling order items: %w", err)
	}
	o.ShippingAddress = json.RawMessage(shipping)
	return o, nil
}

// scanOrderWithUser scans the order columns followed by the joined user
// summary columns.
func scanOrderWithUser(row pgx.CollectableRow) (order.Order, error) {
	var (
		o        order.Order
		items    []byte
		shipping []byte
		u        user.Summary
	)
	err := row.Scan(
		&o.ID, &o.UserID, &items, &shipping, &o.PaymentMethod,
		&o.ItemsPrice, &o.ShippingPrice, &o.TaxPrice, &o.TotalPrice,
		&o.IsPaid, &o.PaidAt, &o.IsDelivered, &o.DeliveredAt, &o.CreatedAt,
		&u.ID, &u.UserName, &u.Email,
	)
	if err != nil {
		return order.Order{}, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return order.Order{}, fmt.Errorf("unmarshaling order items: %w", err)
	}
	o.ShippingAddress = json.RawMessage(shipping)
	o.User = &u
	return o, nil
}
