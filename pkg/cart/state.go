// Package cart holds a shopper's basket: an ordered set of product lines and
// the totals derived from them.
package cart

import (
	"slices"

	"github.com/shopspring/decimal"

	"storefront/pkg/catalog"
)

// Line pairs a product with how many of it the shopper wants. Quantity is always at least 1.
type Line struct {
	Item     catalog.Item `json:"item"`
	Quantity int          `json:"quantity"`
}

// Subtotal is the unrounded unit price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals are the aggregates derived from a set of lines.
type Totals struct {
	ItemCount int
	Total     decimal.Decimal
}

// Derive recomputes the aggregates from scratch. It has no side effects.
func Derive(lines []Line) Totals {
	totals := Totals{Total: decimal.Zero}
	for _, line := range lines {
		totals.ItemCount += line.Quantity
		totals.Total = totals.Total.Add(line.Subtotal())
	}
	return totals
}

// State is a consistent snapshot of a cart. Total is not rounded.
type State struct {
	Lines     []Line
	ItemCount int
	Total     decimal.Decimal
}

func newState(lines []Line) *State {
	totals := Derive(lines)
	return &State{Lines: lines, ItemCount: totals.ItemCount, Total: totals.Total}
}

// Empty reports whether the cart has no lines.
func (s State) Empty() bool {
	return len(s.Lines) == 0
}

// Line returns the line for a product id.
func (s State) Line(id string) (Line, bool) {
	if i := s.index(id); i >= 0 {
		return s.Lines[i], true
	}
	return Line{}, false
}

func (s State) index(id string) int {
	return slices.IndexFunc(s.Lines, func(l Line) bool { return l.Item.ID == id })
}

func (s State) clone() State {
	s.Lines = slices.Clone(s.Lines)
	return s
}
