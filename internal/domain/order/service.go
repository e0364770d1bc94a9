package order

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Sohag00879/tech-haven-server/internal/domain/product"
	"github.com/Sohag00879/tech-haven-server/internal/domain/user"
)

// CreateItem is one requested line item of a checkout. Any client-supplied
// price is absent on purpose: unit prices always come from the catalog.
type CreateItem struct {
	ProductID string
	Qty       int
}

// CreateRequest holds the validated input for placing an order.
type CreateRequest struct {
	UserID          string
	Items           []CreateItem
	ShippingAddress json.RawMessage
	PaymentMethod   string
	// ClientTotal, when present, is cross-checked against the server-computed
	// total and the request is rejected on mismatch.
	ClientTotal *decimal.Decimal
}

// WindowPage is one page of a time-windowed order listing.
type WindowPage struct {
	Page        int
	TotalPages  int
	TotalOrders int64
	Orders      []Order
}

// Service encapsulates order placement, lifecycle, and reporting logic.
type Service struct {
	products product.Repository
	users    user.Repository
	orders   Repository
}

// NewService creates an order Service with the required dependencies.
func NewService(products product.Repository, users user.Repository, orders Repository) *Service {
	return &Service{
		products: products,
		users:    users,
		orders:   orders,
	}
}

// Create resolves each requested item against the catalog, prices the order
// server-side, and persists it. Catalog prices always win over anything the
// client sent.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Order, error) {
	if req.UserID == "" {
		return nil, ErrMissingUser
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	buyer, err := s.users.GetSummary(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, errors.Wrap(err, "get user")
	}

	ids := make([]string, len(req.Items))
	for i, item := range req.Items {
		if item.Qty < 1 {
			return nil, &InvalidLineItemError{ProductID: item.ProductID, Reason: "quantity must be at least 1"}
		}
		ids[i] = item.ProductID
	}

	// Single batch fetch; every requested product must exist.
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	items := make([]LineItem, len(req.Items))
	for i, item := range req.Items {
		p, ok := byID[item.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: item.ProductID}
		}
		items[i] = LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			Image:     p.Image,
			Price:     p.Price,
			Qty:       item.Qty,
		}
	}

	prices, err := CalcPrices(items)
	if err != nil {
		return nil, err
	}
	if req.ClientTotal != nil && !req.ClientTotal.Equal(prices.TotalPrice) {
		return nil, &TotalMismatchError{Supplied: *req.ClientTotal, Computed: prices.TotalPrice}
	}

	o := &Order{
		ID:              uuid.New().String(),
		UserID:          req.UserID,
		User:            buyer,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ItemsPrice:      prices.ItemsPrice,
		ShippingPrice:   prices.ShippingPrice,
		TaxPrice:        prices.TaxPrice,
		TotalPrice:      prices.TotalPrice,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.orders.Insert(ctx, o); err != nil {
		return nil, errors.Wrap(err, "insert order")
	}

	return o, nil
}

// GetByID returns a single order with its user summary populated.
func (s *Service) GetByID(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// ListByUser returns the given user's orders, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// ListAll returns every order with denormalized user summaries, newest first.
func (s *Service) ListAll(ctx context.Context) ([]Order, error) {
	return s.orders.ListAll(ctx)
}

// MarkPaid latches the paid flag. The paid timestamp is set only on the first
// transition; repeated calls leave it unchanged.
func (s *Service) MarkPaid(ctx context.Context, id string) (*Order, error) {
	return s.orders.MarkPaid(ctx, id)
}

// MarkDelivered latches the delivered flag, symmetric to MarkPaid.
func (s *Service) MarkDelivered(ctx context.Context, id string) (*Order, error) {
	return s.orders.MarkDelivered(ctx, id)
}

// UpdateStatus applies whichever lifecycle flags are present. Timestamps obey
// the one-way latch: set on the first true transition, never cleared.
func (s *Service) UpdateStatus(ctx context.Context, id string, upd StatusUpdate) (*Order, error) {
	return s.orders.UpdateStatus(ctx, id, upd)
}

// Count reports the total number of orders.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.orders.Count(ctx)
}

// TotalSales reports the summed total price across all orders.
func (s *Service) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	return s.orders.SumTotalPrice(ctx)
}

// SalesByDay reports paid-order sales grouped by the UTC calendar day the
// order was marked paid.
func (s *Service) SalesByDay(ctx context.Context) ([]DailySales, error) {
	return s.orders.SumPaidByDay(ctx)
}

// OrdersByTimeFrame returns one page of orders created within the window,
// newest first. Page numbers are 1-based; non-positive page or limit values
// fall back to 1 and 10.
func (s *Service) OrdersByTimeFrame(ctx context.Context, window TimeWindow, page, limit int) (*WindowPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var since *time.Time
	if start, ok := window.Start(time.Now()); ok {
		since = &start
	}

	orders, total, err := s.orders.ListSince(ctx, since, limit, (page-1)*limit)
	if err != nil {
		return nil, errors.Wrap(err, "list orders by window")
	}

	return &WindowPage{
		Page:        page,
		TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
		TotalOrders: total,
		Orders:      orders,
	}, nil
}
