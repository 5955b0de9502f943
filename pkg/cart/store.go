package cart

import (
	"slices"
	"sync"
	"sync/atomic"

	"storefront/pkg/catalog"
)

// Store is the only way to change a cart. Each mutation builds a new line
// slice, derives its totals and publishes the result with one atomic store,
// so Snapshot never sees lines and totals from different generations.
//
// None of the operations fail: invalid input degrades to a no-op or a removal.
type Store struct {
	mu    sync.Mutex
	state atomic.Pointer[State]
}

// NewStore returns an empty cart.
func NewStore() *Store {
	s := &Store{}
	s.state.Store(newState(nil))
	return s
}

// Snapshot returns the current state. The caller owns the returned lines.
func (s *Store) Snapshot() State {
	return s.state.Load().clone()
}

// AddItem puts one more unit of item in the cart. A product already in the
// cart gets its quantity bumped; a new one is appended with quantity 1.
// Products that are out of stock or have no id are ignored.
func (s *Store) AddItem(item catalog.Item) State {
	if !item.InStock || item.ID == "" {
		return s.Snapshot()
	}
	return s.mutate(func(lines []Line) []Line {
		if i := (State{Lines: lines}).index(item.ID); i >= 0 {
			lines[i].Quantity++
			return lines
		}
		return append(lines, Line{Item: item, Quantity: 1})
	})
}

// UpdateQuantity sets the quantity of a product already in the cart.
// A quantity below 1 removes the line. Unknown ids are ignored.
func (s *Store) UpdateQuantity(id string, quantity int) State {
	if quantity < 1 {
		return s.RemoveItem(id)
	}
	return s.mutate(func(lines []Line) []Line {
		if i := (State{Lines: lines}).index(id); i >= 0 {
			lines[i].Quantity = quantity
		}
		return lines
	})
}

// RemoveItem drops the line for id if there is one.
func (s *Store) RemoveItem(id string) State {
	return s.mutate(func(lines []Line) []Line {
		return slices.DeleteFunc(lines, func(l Line) bool { return l.Item.ID == id })
	})
}

// Clear empties the cart.
func (s *Store) Clear() State {
	return s.mutate(func([]Line) []Line { return nil })
}

// Deduct takes the quantities in placed out of the cart and drops lines that
// reach zero. Lines and units added after placed was read stay in the cart.
func (s *Store) Deduct(placed []Line) State {
	return s.mutate(func(lines []Line) []Line {
		for _, p := range placed {
			if i := (State{Lines: lines}).index(p.Item.ID); i >= 0 {
				lines[i].Quantity -= p.Quantity
			}
		}
		return slices.DeleteFunc(lines, func(l Line) bool { return l.Quantity < 1 })
	})
}

// mutate applies fn to a private copy of the lines and publishes the outcome.
func (s *Store) mutate(fn func([]Line) []Line) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := fn(slices.Clone(s.state.Load().Lines))
	next := newState(lines)
	s.state.Store(next)
	return next.clone()
}
