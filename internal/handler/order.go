package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/Sohag00879/tech-haven-server/internal/domain/order"
	"github.com/Sohag00879/tech-haven-server/internal/domain/user"
)

// createOrderRequest mirrors the checkout body. Prices are computed
// server-side; a client-supplied totalPrice, when present, is only
// cross-checked against the computed value. Any other price keys in the
// body are ignored.
type createOrderRequest struct {
	OrderItems []struct {
		ProductID string `json:"_id"`
		Qty       int    `json:"qty"`
	} `json:"orderItems"`
	ShippingAddress json.RawMessage `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	User            string          `json:"user"`
	TotalPrice      *float64        `json:"totalPrice"`
}

type updateStatusRequest struct {
	IsPaid      *bool `json:"isPaid"`
	IsDelivered *bool `json:"isDelivered"`
}

type userSummaryResponse struct {
	ID       string `json:"_id"`
	UserName string `json:"userName,omitempty"`
	Email    string `json:"email,omitempty"`
}

type orderItemResponse struct {
	Product string  `json:"product"`
	Name    string  `json:"name"`
	Image   string  `json:"image"`
	Price   float64 `json:"price"`
	Qty     int     `json:"qty"`
}

type orderResponse struct {
	ID              string              `json:"_id"`
	User            userSummaryResponse `json:"user"`
	OrderItems      []orderItemResponse `json:"orderItems"`
	ShippingAddress json.RawMessage     `json:"shippingAddress,omitempty"`
	PaymentMethod   string              `json:"paymentMethod"`
	ItemsPrice      float64             `json:"itemsPrice"`
	ShippingPrice   float64             `json:"shippingPrice"`
	TaxPrice        float64             `json:"taxPrice"`
	TotalPrice      float64             `json:"totalPrice"`
	IsPaid          bool                `json:"isPaid"`
	PaidAt          *time.Time          `json:"paidAt,omitempty"`
	IsDelivered     bool                `json:"isDelivered"`
	DeliveredAt     *time.Time          `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
}

type timeFramePage struct {
	CurrentPage int             `json:"currentPage"`
	TotalPages  int             `json:"totalPages"`
	TotalOrders int64           `json:"totalOrders"`
	Items       []orderResponse `json:"items"`
}

type dailySalesResponse struct {
	Day        string  `json:"_id"`
	TotalSales float64 `json:"totalSales"`
}

// CreateOrder prices the requested items server-side and persists the order.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]order.CreateItem, len(req.OrderItems))
	for i, item := range req.OrderItems {
		items[i] = order.CreateItem{ProductID: item.ProductID, Qty: item.Qty}
	}

	var clientTotal *decimal.Decimal
	if req.TotalPrice != nil {
		d := decimal.NewFromFloat(*req.TotalPrice).Round(2)
		clientTotal = &d
	}

	o, err := h.orders.Create(r.Context(), order.CreateRequest{
		UserID:          req.User,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ClientTotal:     clientTotal,
	})
	if err != nil {
		h.orderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.toOrderResponse(*o))
}

// ListOrders returns every order with its user summary, newest first.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toOrderResponses(orders))
}

// ListUserOrders returns the given user's orders, newest first.
func (h *Handler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toOrderResponses(orders))
}

// TotalOrders reports the order count.
func (h *Handler) TotalOrders(w http.ResponseWriter, r *http.Request) {
	count, err := h.orders.Count(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"totalOrders": count})
}

// TotalSales reports the summed total price across all orders.
func (h *Handler) TotalSales(w http.ResponseWriter, r *http.Request) {
	sum, err := h.orders.TotalSales(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"totalSales": sum.InexactFloat64()})
}

// TotalSalesByDate reports paid sales grouped by the UTC day of payment.
func (h *Handler) TotalSalesByDate(w http.ResponseWriter, r *http.Request) {
	sales, err := h.orders.SalesByDay(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}

	out := make([]dailySalesResponse, len(sales))
	for i, s := range sales {
		out[i] = dailySalesResponse{Day: s.Day, TotalSales: s.TotalSales.InexactFloat64()}
	}
	writeJSON(w, http.StatusOK, out)
}

// GetOrder returns a single order by id.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.orderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toOrderResponse(*o))
}

// PayOrder latches the paid flag; repeated calls do not move paidAt.
func (h *Handler) PayOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.MarkPaid(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.orderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toOrderResponse(*o))
}

// DeliverOrder latches the delivered flag, symmetric to PayOrder.
func (h *Handler) DeliverOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.MarkDelivered(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.orderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toOrderResponse(*o))
}

// UpdateOrderStatus applies whichever lifecycle flags the body carries.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), order.StatusUpdate{
		IsPaid:      req.IsPaid,
		IsDelivered: req.IsDelivered,
	})
	if err != nil {
		h.orderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Order updated successfully",
		"order":   h.toOrderResponse(*o),
	})
}

// OrdersByTimeFrame returns one page of orders created within the window.
func (h *Handler) OrdersByTimeFrame(w http.ResponseWriter, r *http.Request) {
	window := order.ParseTimeWindow(chi.URLParam(r, "timeFrame"))

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	result, err := h.orders.OrdersByTimeFrame(r.Context(), window, page, limit)
	if err != nil {
		serverError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, timeFramePage{
		CurrentPage: result.Page,
		TotalPages:  result.TotalPages,
		TotalOrders: result.TotalOrders,
		Items:       h.toOrderResponses(result.Orders),
	})
}

// orderError maps domain errors to status codes; anything unrecognized is a
// generic 500.
func (h *Handler) orderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, user.ErrNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, order.ErrEmptyItems):
		writeError(w, http.StatusBadRequest, "no order items")
	case errors.Is(err, order.ErrMissingUser):
		writeError(w, http.StatusBadRequest, "user is required")
	default:
		var pnfErr *order.ProductNotFoundError
		if errors.As(err, &pnfErr) {
			writeError(w, http.StatusNotFound, pnfErr.Error())
			return
		}
		var iliErr *order.InvalidLineItemError
		if errors.As(err, &iliErr) {
			writeError(w, http.StatusBadRequest, iliErr.Error())
			return
		}
		var tmErr *order.TotalMismatchError
		if errors.As(err, &tmErr) {
			writeError(w, http.StatusBadRequest, tmErr.Error())
			return
		}
		serverError(w, r, err)
	}
}

func (h *Handler) toOrderResponse(o order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = orderItemResponse{
			Product: item.ProductID,
			Name:    item.Name,
			Image:   h.imageBaseURL + item.Image,
			Price:   item.Price.InexactFloat64(),
			Qty:     item.Qty,
		}
	}

	u := userSummaryResponse{ID: o.UserID}
	if o.User != nil {
		u = userSummaryResponse{ID: o.User.ID, UserName: o.User.UserName, Email: o.User.Email}
	}

	return orderResponse{
		ID:              o.ID,
		User:            u,
		OrderItems:      items,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		ItemsPrice:      o.ItemsPrice.InexactFloat64(),
		ShippingPrice:   o.ShippingPrice.InexactFloat64(),
		TaxPrice:        o.TaxPrice.InexactFloat64(),
		TotalPrice:      o.TotalPrice.InexactFloat64(),
		IsPaid:          o.IsPaid,
		PaidAt:          o.PaidAt,
		IsDelivered:     o.IsDelivered,
		DeliveredAt:     o.DeliveredAt,
		CreatedAt:       o.CreatedAt,
	}
}

func (h *Handler) toOrderResponses(orders []order.Order) []orderResponse {
	out := make([]orderResponse, len(orders))
	for i, o := range orders {
		out[i] = h.toOrderResponse(o)
	}
	return out
}

// queryInt parses an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
