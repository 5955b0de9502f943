// Package order records checkouts. An order is a frozen copy of the cart and
// its quote at the moment the shopper placed it.
package order

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/pkg/cart"
	"storefront/pkg/checkout"
)

// Status tracks where an order is in fulfilment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
)

// Line is one product as it was priced when the order was placed.
type Line struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// ShippingAddress is where the parcel goes.
type ShippingAddress struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

// Order aggregates what was bought, what it cost and where it ships.
type Order struct {
	ID              string
	Lines           []Line
	Subtotal        decimal.Decimal
	Shipping        decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	Status          Status
	ShippingAddress ShippingAddress
	CreatedAt       time.Time
}

// ItemCount is the number of units across all lines.
func (o Order) ItemCount() int {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}

// FromCart freezes a cart into a pending order. Amounts are rounded to cents
// since that is what the shopper is charged.
func FromCart(state cart.State, quote checkout.Quote, address ShippingAddress) Order {
	lines := make([]Line, 0, len(state.Lines))
	for _, l := range state.Lines {
		lines = append(lines, Line{
			ProductID: l.Item.ID,
			Name:      l.Item.Name,
			UnitPrice: l.Item.Price,
			Quantity:  l.Quantity,
		})
	}
	shown := quote.Display()
	return Order{
		Lines:           lines,
		Subtotal:        shown.Subtotal,
		Shipping:        shown.Shipping,
		Tax:             shown.Tax,
		Total:           shown.GrandTotal,
		Status:          StatusPending,
		ShippingAddress: address,
	}
}
