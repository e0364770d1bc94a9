package order

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/Sohag00879/tech-haven-server/internal/domain/user"
)

// Sentinel errors for order validation and lookup.
var (
	ErrNotFound    = errors.New("order not found")
	ErrEmptyItems  = errors.New("no order items")
	ErrMissingUser = errors.New("user is required")
)

// ProductNotFoundError indicates a line item references a product that does
// not exist in the catalog. Creation is aborted and nothing is persisted.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InvalidLineItemError indicates a line item with a non-positive quantity or
// a negative price.
type InvalidLineItemError struct {
	ProductID string
	Reason    string
}

func (e *InvalidLineItemError) Error() string {
	return fmt.Sprintf("invalid line item %s: %s", e.ProductID, e.Reason)
}

// TotalMismatchError indicates the caller-supplied total does not match the
// server-computed total. Caller totals are never trusted; when present they
// are only cross-checked.
type TotalMismatchError struct {
	Supplied decimal.Decimal
	Computed decimal.Decimal
}

func (e *TotalMismatchError) Error() string {
	return fmt.Sprintf("total price mismatch: supplied %s, computed %s", e.Supplied, e.Computed)
}

// LineItem is one product entry within an order. Price and descriptive
// fields are snapshotted from the catalog at creation time; line items are
// immutable once attached to an order.
type LineItem struct {
	ProductID string          `json:"product"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Qty       int             `json:"qty"`
}

// Order is a placed order: priced line items, delivery details, and the two
// independent lifecycle latches (paid, delivered) with their first-set
// timestamps.
type Order struct {
	ID              string
	UserID          string
	User            *user.Summary // populated by reads that join users
	Items           []LineItem
	ShippingAddress json.RawMessage
	PaymentMethod   string
	ItemsPrice      decimal.Decimal
	ShippingPrice   decimal.Decimal
	TaxPrice        decimal.Decimal
	TotalPrice      decimal.Decimal
	IsPaid          bool
	PaidAt          *time.Time
	IsDelivered     bool
	DeliveredAt     *time.Time
	CreatedAt       time.Time
}

// StatusUpdate carries the optional lifecycle flags of a combined status
// update. A nil field leaves that flag untouched.
type StatusUpdate struct {
	IsPaid      *bool
	IsDelivered *bool
}

// DailySales is the summed total price of paid orders for one UTC calendar day.
type DailySales struct {
	Day        string
	TotalSales decimal.Decimal
}

// Repository defines persistence operations for orders.
//
// MarkPaid, MarkDelivered, and UpdateStatus must apply the timestamp latch as
// a single atomic conditional update (set-only-if-unset) so that concurrent
// mutations settle on exactly one timestamp.
type Repository interface {
	Insert(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	Count(ctx context.Context) (int64, error)
	SumTotalPrice(ctx context.Context) (decimal.Decimal, error)
	SumPaidByDay(ctx context.Context) ([]DailySales, error)
	// ListSince returns one page of orders with created_at >= since (or all
	// orders when since is nil), newest first, plus the unpaginated count.
	ListSince(ctx context.Context, since *time.Time, limit, offset int) ([]Order, int64, error)
	MarkPaid(ctx context.Context, id string) (*Order, error)
	MarkDelivered(ctx context.Context, id string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, upd StatusUpdate) (*Order, error)
}
