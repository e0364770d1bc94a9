package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sohag00879/tech-haven-server/internal/domain/order"
	"github.com/Sohag00879/tech-haven-server/internal/domain/product"
	"github.com/Sohag00879/tech-haven-server/internal/domain/user"
)

// --- Mock repositories ---

type mockProductRepo struct {
	byID map[string]product.Product
}

func (m *mockProductRepo) List(_ context.Context, _ string, _ int) (*product.Page, error) {
	var all []product.Product
	for _, p := range m.byID {
		all = append(all, p)
	}
	return &product.Page{Products: all, Page: 1, Pages: 1}, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	var out []product.Product
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) Top(_ context.Context, _ int) ([]product.Product, error) {
	return nil, nil
}

func (m *mockProductRepo) Newest(_ context.Context, _ int) ([]product.Product, error) {
	return nil, nil
}

type mockUserRepo struct {
	byID map[string]user.Summary
}

func (m *mockUserRepo) GetSummary(_ context.Context, id string) (*user.Summary, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &u, nil
}

type mockOrderRepo struct {
	byID map[string]*order.Order
}

func (m *mockOrderRepo) Insert(_ context.Context, o *order.Order) error {
	if m.byID == nil {
		m.byID = make(map[string]*order.Order)
	}
	m.byID[o.ID] = o
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) ListByUser(_ context.Context, userID string) ([]order.Order, error) {
	var out []order.Order
	for _, o := range m.byID {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) ListAll(_ context.Context) ([]order.Order, error) {
	var out []order.Order
	for _, o := range m.byID {
		out = append(out, *o)
	}
	return out, nil
}

func (m *mockOrderRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.byID)), nil
}

func (m *mockOrderRepo) SumTotalPrice(_ context.Context) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, o := range m.byID {
		sum = sum.Add(o.TotalPrice)
	}
	return sum, nil
}

func (m *mockOrderRepo) SumPaidByDay(_ context.Context) ([]order.DailySales, error) {
	return []order.DailySales{
		{Day: "2024-03-01", TotalSales: decimal.RequireFromString("56.00")},
	}, nil
}

func (m *mockOrderRepo) ListSince(_ context.Context, _ *time.Time, _, _ int) ([]order.Order, int64, error) {
	all, _ := m.ListAll(context.Background())
	return all, int64(len(all)), nil
}

func (m *mockOrderRepo) MarkPaid(_ context.Context, id string) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	o.IsPaid = true
	if o.PaidAt == nil {
		now := time.Now().UTC()
		o.PaidAt = &now
	}
	return o, nil
}

func (m *mockOrderRepo) MarkDelivered(_ context.Context, id string) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	o.IsDelivered = true
	if o.DeliveredAt == nil {
		now := time.Now().UTC()
		o.DeliveredAt = &now
	}
	return o, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id string, upd order.StatusUpdate) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	if upd.IsPaid != nil && *upd.IsPaid {
		return m.MarkPaid(context.Background(), id)
	}
	if upd.IsDelivered != nil && *upd.IsDelivered {
		return m.MarkDelivered(context.Background(), id)
	}
	return o, nil
}

// --- Helpers ---

func testRouter(t *testing.T, products *mockProductRepo, users *mockUserRepo, orders *mockOrderRepo) http.Handler {
	t.Helper()
	svc := order.NewService(products, users, orders)
	h := New(Config{ImageBaseURL: "https://cdn.example.com"}, products, svc)
	return h.Router()
}

func defaultRouter(t *testing.T) http.Handler {
	t.Helper()
	products, users, orders := defaultFixtures()
	return testRouter(t, products, users, orders)
}

func defaultFixtures() (*mockProductRepo, *mockUserRepo, *mockOrderRepo) {
	products := &mockProductRepo{byID: map[string]product.Product{
		"p1": {ID: "p1", Name: "Widget", Price: decimal.RequireFromString("10.00"), Image: "/images/p1.jpg"},
		"p2": {ID: "p2", Name: "Gadget", Price: decimal.RequireFromString("20.00"), Image: "/images/p2.jpg"},
	}}
	users := &mockUserRepo{byID: map[string]user.Summary{
		"u1": {ID: "u1", UserName: "jdoe", Email: "jdoe@example.com"},
	}}
	orders := &mockOrderRepo{byID: make(map[string]*order.Order)}
	return products, users, orders
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// --- Order endpoint tests ---

func TestCreateOrder_Success(t *testing.T) {
	router := defaultRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/orders", map[string]any{
		"user":          "u1",
		"paymentMethod": "PayPal",
		"orderItems": []map[string]any{
			{"_id": "p1", "qty": 2},
			{"_id": "p2", "qty": 1},
		},
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))

	assert.NotEmpty(t, body["_id"])
	assert.InDelta(t, 40.0, body["itemsPrice"], 0.001)
	assert.InDelta(t, 10.0, body["shippingPrice"], 0.001)
	assert.InDelta(t, 6.0, body["taxPrice"], 0.001)
	assert.InDelta(t, 56.0, body["totalPrice"], 0.001)
	assert.Equal(t, false, body["isPaid"])

	u, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "jdoe", u["userName"])

	items, ok := body["orderItems"].([]any)
	require.True(t, ok)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, "https://cdn.example.com/images/p1.jpg", first["image"])
}

func TestCreateOrder_ClientPriceIgnored(t *testing.T) {
	router := defaultRouter(t)

	// A doctored per-item price has no effect; only the catalog price counts.
	w := doJSON(t, router, http.MethodPost, "/api/orders", map[string]any{
		"user": "u1",
		"orderItems": []map[string]any{
			{"_id": "p1", "qty": 1, "price": 0.01},
		},
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.InDelta(t, 10.0, body["itemsPrice"], 0.001)
}

func TestCreateOrder_ClientComponentPricesIgnored(t *testing.T) {
	router := defaultRouter(t)

	// Price breakdown keys in the body have no effect on the stored order.
	w := doJSON(t, router, http.MethodPost, "/api/orders", map[string]any{
		"user": "u1",
		"orderItems": []map[string]any{
			{"_id": "p1", "qty": 1}, // catalog price 10.00
		},
		"itemsPrice":    1.0,
		"shippingPrice": 0.0,
		"taxPrice":      0.0,
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.InDelta(t, 10.0, body["itemsPrice"], 0.001)
	assert.InDelta(t, 10.0, body["shippingPrice"], 0.001)
	assert.InDelta(t, 1.5, body["taxPrice"], 0.001)
	assert.InDelta(t, 21.5, body["totalPrice"], 0.001)
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	router := defaultRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/orders", map[string]any{
		"user":       "u1",
		"orderItems": []map[string]any{},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no order items")
}

func TestCreateOrder_MissingUser(t *testing.T) {
	router := defaultRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/orders", map[string]any{
		"orderItems": []map[string]any{{"_id": "p1", "qty": 1}},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	router := defaultRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/orders", map[string]any{
		"user":       "u1",
		"orderItems": []map[string]any{{"_id": "nope", "qty": 1}},
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "nope")
}

func TestCreateOrder_TotalMismatch(t *testing.T) {
	router := defaultRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/orders", map[string]any{
		"user":       "u1",
		"orderItems": []map[string]any{{"_id": "p1", "qty": 1}},
		"totalPrice": 1.23,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "mismatch")
}

func TestCreateOrder_MalformedBody(t *testing.T) {
	router := defaultRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrder_NotFound(t *testing.T) {
	router := defaultRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/orders/missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPayOrder_SetsLatch(t *testing.T) {
	products, users, orders := defaultFixtures()
	orders.byID["o1"] = &order.Order{ID: "o1", UserID: "u1"}
	router := testRouter(t, products, users, orders)

	w := doJSON(t, router, http.MethodPut, "/api/orders/o1/pay", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, true, body["isPaid"])
	assert.NotEmpty(t, body["paidAt"])
}

func TestUpdateOrderStatus(t *testing.T) {
	products, users, orders := defaultFixtures()
	orders.byID["o1"] = &order.Order{ID: "o1", UserID: "u1"}
	router := testRouter(t, products, users, orders)

	w := doJSON(t, router, http.MethodPut, "/api/orders/o1/status", map[string]any{
		"isDelivered": true,
	})

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "Order updated successfully", body["message"])

	o, ok := body["order"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, o["isDelivered"])
}

func TestTotalSalesByDate(t *testing.T) {
	router := defaultRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/orders/total-sales-by-date", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var body []map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Len(t, body, 1)
	assert.Equal(t, "2024-03-01", body[0]["_id"])
	assert.InDelta(t, 56.0, body[0]["totalSales"], 0.001)
}

func TestOrdersByTimeFrame_ResponseShape(t *testing.T) {
	products, users, orders := defaultFixtures()
	orders.byID["o1"] = &order.Order{ID: "o1", UserID: "u1", CreatedAt: time.Now().UTC()}
	router := testRouter(t, products, users, orders)

	w := doJSON(t, router, http.MethodGet, "/api/orders/time-frame/week?page=1&limit=10", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.EqualValues(t, 1, body["currentPage"])
	assert.EqualValues(t, 1, body["totalOrders"])
	items, ok := body["items"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 1)
}

// --- Product endpoint tests ---

func TestGetProduct_NotFound(t *testing.T) {
	router := defaultRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/products/missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetProduct_ImagePrefixed(t *testing.T) {
	router := defaultRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/products/p1", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "p1", body["_id"])
	assert.Equal(t, "https://cdn.example.com/images/p1.jpg", body["image"])
}
