// Package checkout turns a cart into the amounts shown on the cart and
// checkout pages: shipping, tax and the grand total.
package checkout

import (
	"errors"

	"github.com/shopspring/decimal"

	"storefront/internal/money"
	"storefront/pkg/cart"
)

// Policy holds the store's shipping and tax rules.
type Policy struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	TaxRate               decimal.Decimal
}

// DefaultPolicy is free shipping from $50, a flat $5.99 fee below that and 8% tax.
func DefaultPolicy() Policy {
	return Policy{
		FreeShippingThreshold: decimal.NewFromInt(50),
		ShippingFee:           decimal.RequireFromString("5.99"),
		TaxRate:               decimal.RequireFromString("0.08"),
	}
}

// Validate rejects negative amounts and tax rates of 100% or more.
func (p Policy) Validate() error {
	switch {
	case p.FreeShippingThreshold.IsNegative():
		return errors.New("free shipping threshold must not be negative")
	case p.ShippingFee.IsNegative():
		return errors.New("shipping fee must not be negative")
	case p.TaxRate.IsNegative() || p.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)):
		return errors.New("tax rate must be between 0 and 1")
	}
	return nil
}

// Quote is the breakdown of what a cart costs. Amounts are not rounded.
type Quote struct {
	Subtotal             decimal.Decimal
	Shipping             decimal.Decimal
	Tax                  decimal.Decimal
	GrandTotal           decimal.Decimal
	AmountToFreeShipping decimal.Decimal
}

// Quote prices a cart. An empty cart ships for free.
func (p Policy) Quote(state cart.State) Quote {
	subtotal := state.Total
	q := Quote{
		Subtotal:             subtotal,
		Shipping:             decimal.Zero,
		AmountToFreeShipping: decimal.Zero,
	}
	if !state.Empty() && subtotal.LessThan(p.FreeShippingThreshold) {
		q.Shipping = p.ShippingFee
		q.AmountToFreeShipping = p.FreeShippingThreshold.Sub(subtotal)
	}
	q.Tax = subtotal.Mul(p.TaxRate)
	q.GrandTotal = subtotal.Add(q.Shipping).Add(q.Tax)
	return q
}

// FreeShipping reports whether no shipping fee applies.
func (q Quote) FreeShipping() bool {
	return q.Shipping.IsZero()
}

// Display returns the quote with every amount rounded to cents.
func (q Quote) Display() Quote {
	return Quote{
		Subtotal:             money.Round(q.Subtotal),
		Shipping:             money.Round(q.Shipping),
		Tax:                  money.Round(q.Tax),
		GrandTotal:           money.Round(q.GrandTotal),
		AmountToFreeShipping: money.Round(q.AmountToFreeShipping),
	}
}
