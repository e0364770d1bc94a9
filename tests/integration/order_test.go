//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"testing"

	"golang.org/x/sync/errgroup"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func placeOrder(t *testing.T, req createOrderRequest) orderResponse {
	t.Helper()

	resp := doSend(t, http.MethodPost, "/api/orders", req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	return decodeJSON[orderResponse](t, resp)
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	resp := doSend(t, http.MethodPost, "/api/orders", createOrderRequest{
		User:       seedUserID,
		OrderItems: []orderItemRequest{},
	})

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decodeJSON[errorResponse](t, resp)
	if body.Error == "" {
		t.Fatal("expected an error message")
	}
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	resp := doSend(t, http.MethodPost, "/api/orders", createOrderRequest{
		User:       seedUserID,
		OrderItems: []orderItemRequest{{ProductID: "does-not-exist", Qty: 1}},
	})

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCreateOrder_UnknownUser(t *testing.T) {
	resp := doSend(t, http.MethodPost, "/api/orders", createOrderRequest{
		User:       "11111111-2222-3333-4444-555555555555",
		OrderItems: []orderItemRequest{{ProductID: seedProductID, Qty: 1}},
	})

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCreateOrder_ServerSidePricing(t *testing.T) {
	order := placeOrder(t, createOrderRequest{
		User:          seedUserID,
		PaymentMethod: "PayPal",
		OrderItems:    []orderItemRequest{{ProductID: seedProductID, Qty: 1}}, // 89.99
	})

	if !uuidPattern.MatchString(order.ID) {
		t.Errorf("order id %q is not a UUID", order.ID)
	}
	if order.ItemsPrice != 89.99 {
		t.Errorf("itemsPrice: got %v, want 89.99", order.ItemsPrice)
	}
	if order.ShippingPrice != 10 {
		t.Errorf("shippingPrice: got %v, want 10", order.ShippingPrice)
	}
	if order.TaxPrice != 13.5 { // 89.99 * 0.15 = 13.4985 -> 13.50
		t.Errorf("taxPrice: got %v, want 13.5", order.TaxPrice)
	}
	if order.TotalPrice != 113.49 {
		t.Errorf("totalPrice: got %v, want 113.49", order.TotalPrice)
	}
	if order.IsPaid || order.PaidAt != nil {
		t.Error("new order must not be paid")
	}
	if order.User.UserName != "admin" {
		t.Errorf("user: got %q, want admin", order.User.UserName)
	}
}

func TestCreateOrder_FreeShippingAboveThreshold(t *testing.T) {
	order := placeOrder(t, createOrderRequest{
		User:       seedUserID,
		OrderItems: []orderItemRequest{{ProductID: seedProductID, Qty: 2}}, // 179.98
	})

	if order.ShippingPrice != 0 {
		t.Errorf("shippingPrice: got %v, want 0", order.ShippingPrice)
	}
}

func TestCreateOrder_TotalMismatchRejected(t *testing.T) {
	wrong := 1.23
	resp := doSend(t, http.MethodPost, "/api/orders", createOrderRequest{
		User:       seedUserID,
		OrderItems: []orderItemRequest{{ProductID: seedProductID, Qty: 1}},
		TotalPrice: &wrong,
	})

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestPayOrder_LatchIsIdempotent(t *testing.T) {
	order := placeOrder(t, createOrderRequest{
		User:       seedUserID,
		OrderItems: []orderItemRequest{{ProductID: seedProductID, Qty: 1}},
	})

	resp := doSend(t, http.MethodPut, fmt.Sprintf("/api/orders/%s/pay", order.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	first := decodeJSON[orderResponse](t, resp)
	if !first.IsPaid || first.PaidAt == nil {
		t.Fatal("order should be paid with a timestamp")
	}

	resp = doSend(t, http.MethodPut, fmt.Sprintf("/api/orders/%s/pay", order.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	second := decodeJSON[orderResponse](t, resp)
	if second.PaidAt == nil || !second.PaidAt.Equal(*first.PaidAt) {
		t.Errorf("paidAt moved on repeat pay: first %v, second %v", first.PaidAt, second.PaidAt)
	}
}

func TestPayOrder_ConcurrentPaysSettleOnOnePaidAt(t *testing.T) {
	order := placeOrder(t, createOrderRequest{
		User:       seedUserID,
		OrderItems: []orderItemRequest{{ProductID: seedProductID, Qty: 1}},
	})
	payURL := baseURL + fmt.Sprintf("/api/orders/%s/pay", order.ID)

	const racers = 8
	results := make([]orderResponse, racers)

	var g errgroup.Group
	for i := range racers {
		g.Go(func() error {
			req, err := http.NewRequestWithContext(context.Background(), http.MethodPut, payURL, nil)
			if err != nil {
				return err
			}
			resp, err := httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("pay %d: expected 200, got %d", i, resp.StatusCode)
			}
			return json.NewDecoder(resp.Body).Decode(&results[i])
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	first := results[0]
	if first.PaidAt == nil {
		t.Fatal("order should be paid with a timestamp")
	}
	for i, got := range results[1:] {
		if !got.IsPaid || got.PaidAt == nil {
			t.Fatalf("pay %d: order not paid", i+1)
		}
		if !got.PaidAt.Equal(*first.PaidAt) {
			t.Errorf("pay %d: paidAt %v differs from %v", i+1, got.PaidAt, first.PaidAt)
		}
	}
}

func TestDeliverOrder_Latch(t *testing.T) {
	order := placeOrder(t, createOrderRequest{
		User:       seedUserID,
		OrderItems: []orderItemRequest{{ProductID: seedProductID, Qty: 1}},
	})

	resp := doSend(t, http.MethodPut, fmt.Sprintf("/api/orders/%s/deliver", order.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	got := decodeJSON[orderResponse](t, resp)
	if !got.IsDelivered || got.DeliveredAt == nil {
		t.Fatal("order should be delivered with a timestamp")
	}
	if got.IsPaid {
		t.Error("delivering must not touch the paid flag")
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	resp := doGet(t, "/api/orders/11111111-2222-3333-4444-555555555555")

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestOrdersByTimeFrame(t *testing.T) {
	placeOrder(t, createOrderRequest{
		User:       seedUserID,
		OrderItems: []orderItemRequest{{ProductID: seedProductID, Qty: 1}},
	})

	resp := doGet(t, "/api/orders/time-frame/day?page=1&limit=5")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	page := decodeJSON[timeFramePage](t, resp)
	if page.CurrentPage != 1 {
		t.Errorf("currentPage: got %d, want 1", page.CurrentPage)
	}
	if page.TotalOrders < 1 {
		t.Errorf("totalOrders: got %d, want >= 1", page.TotalOrders)
	}
	if len(page.Items) == 0 {
		t.Error("expected at least one order in the day window")
	}
}

func TestTotalSalesByDate(t *testing.T) {
	order := placeOrder(t, createOrderRequest{
		User:       seedUserID,
		OrderItems: []orderItemRequest{{ProductID: seedProductID, Qty: 1}},
	})
	resp := doSend(t, http.MethodPut, fmt.Sprintf("/api/orders/%s/pay", order.ID), nil)
	decodeJSON[orderResponse](t, resp)

	resp = doGet(t, "/api/orders/total-sales-by-date")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	days := decodeJSON[[]dailySales](t, resp)
	if len(days) == 0 {
		t.Fatal("expected at least one sales day")
	}
	for _, d := range days {
		if d.TotalSales <= 0 {
			t.Errorf("day %s has non-positive sales %v", d.Day, d.TotalSales)
		}
	}
}
