package httpapi

import (
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront/pkg/cart"
)

// maxQuantity caps a single line so the quantity always fits an int.
const maxQuantity = 9999

func (s *Server) viewCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()

	state, err := s.carts.Snapshot(ctx, sessionID(r))
	s.respondCart(w, state, err)
}

// addCartItem looks the product up so the cart always holds the catalog's
// current price and availability. Out of stock products leave the cart as it was.
func (s *Server) addCartItem(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ProductID string `json:"productId"`
	}
	if !s.decode(w, r, &payload) {
		return
	}
	productID := strings.TrimSpace(payload.ProductID)
	if productID == "" {
		s.respondError(w, "productId is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()

	item, err := s.catalog.Get(ctx, productID)
	if err != nil {
		s.catalogError(w, err)
		return
	}
	state, err := s.carts.Add(ctx, sessionID(r), item)
	s.respondCart(w, state, err)
}

// updateCartItem sets a line's quantity. Fractions are floored and anything
// below one removes the line.
func (s *Server) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Quantity *float64 `json:"quantity"`
	}
	if !s.decode(w, r, &payload) {
		return
	}
	if payload.Quantity == nil {
		s.respondError(w, "quantity is required", http.StatusBadRequest)
		return
	}
	quantity := math.Max(math.Floor(*payload.Quantity), 0)
	if quantity > maxQuantity {
		s.respondError(w, "quantity is too large", http.StatusBadRequest)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()

	state, err := s.carts.UpdateQuantity(ctx, sessionID(r), chi.URLParam(r, "id"), int(quantity))
	s.respondCart(w, state, err)
}

func (s *Server) removeCartItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()

	state, err := s.carts.Remove(ctx, sessionID(r), chi.URLParam(r, "id"))
	s.respondCart(w, state, err)
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()

	state, err := s.carts.Clear(ctx, sessionID(r))
	s.respondCart(w, state, err)
}

func (s *Server) respondCart(w http.ResponseWriter, state cart.State, err error) {
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, cart.ErrClosed) {
			status = http.StatusServiceUnavailable
		}
		s.logger.Error("cart request failed", zap.Error(err))
		s.respondError(w, err.Error(), status)
		return
	}
	respondJSON(w, http.StatusOK, newCartView(state, s.policy))
}
