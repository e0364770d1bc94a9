package order

import (
	"github.com/shopspring/decimal"
)

// Pricing constants. Shipping is free above the threshold (strict greater-than,
// so an items total of exactly 100 still pays flat shipping).
var (
	freeShippingThreshold = decimal.NewFromInt(100)
	flatShippingPrice     = decimal.NewFromInt(10)
	taxRate               = decimal.RequireFromString("0.15")
)

// Prices holds the computed monetary breakdown of an order. All values are
// rounded to 2 decimal places.
type Prices struct {
	ItemsPrice    decimal.Decimal
	ShippingPrice decimal.Decimal
	TaxPrice      decimal.Decimal
	TotalPrice    decimal.Decimal
}

// CalcPrices computes the priced total for a set of line items:
// items subtotal, flat-or-free shipping, 15% tax, and the grand total.
// It is the only authority for order totals; caller-supplied totals are at
// most cross-checked against its result.
func CalcPrices(items []LineItem) (Prices, error) {
	if len(items) == 0 {
		return Prices{}, ErrEmptyItems
	}

	itemsPrice := decimal.Zero
	for _, item := range items {
		if item.Qty < 1 {
			return Prices{}, &InvalidLineItemError{ProductID: item.ProductID, Reason: "quantity must be at least 1"}
		}
		if item.Price.IsNegative() {
			return Prices{}, &InvalidLineItemError{ProductID: item.ProductID, Reason: "price must not be negative"}
		}
		itemsPrice = itemsPrice.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Qty))))
	}
	itemsPrice = itemsPrice.Round(2)

	shippingPrice := flatShippingPrice
	if itemsPrice.GreaterThan(freeShippingThreshold) {
		shippingPrice = decimal.Zero
	}

	taxPrice := itemsPrice.Mul(taxRate).Round(2)
	totalPrice := itemsPrice.Add(shippingPrice).Add(taxPrice).Round(2)

	return Prices{
		ItemsPrice:    itemsPrice,
		ShippingPrice: shippingPrice,
		TaxPrice:      taxPrice,
		TotalPrice:    totalPrice,
	}, nil
}
