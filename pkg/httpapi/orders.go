package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront/pkg/order"
)

// placeOrder checks out the session's cart. Once the order is stored only the
// ordered units leave the cart, so items added meanwhile are kept.
func (s *Server) placeOrder(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ShippingAddress order.ShippingAddress `json:"shippingAddress"`
	}
	if !s.decode(w, r, &payload) {
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()

	sid := sessionID(r)
	state, err := s.carts.Snapshot(ctx, sid)
	if err != nil {
		s.respondCart(w, state, err)
		return
	}

	stored, err := s.orders.Submit(ctx, order.FromCart(state, s.policy.Quote(state), payload.ShippingAddress))
	if err != nil {
		s.orderError(w, err)
		return
	}
	if _, err := s.carts.Deduct(ctx, sid, state.Lines); err != nil {
		s.logger.Warn("cart not settled after checkout", zap.String("order_id", stored.ID), zap.Error(err))
	}
	respondJSON(w, http.StatusCreated, newOrderView(stored))
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()

	orders, err := s.orders.List(ctx)
	if err != nil {
		s.orderError(w, err)
		return
	}
	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, newOrderView(o))
	}
	respondJSON(w, http.StatusOK, views)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()

	stored, err := s.orders.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.orderError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newOrderView(stored))
}

func (s *Server) orderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrNotFound):
		s.respondError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, order.ErrEmptyCart), order.IsValidation(err):
		s.respondError(w, err.Error(), http.StatusBadRequest)
	default:
		s.logger.Error("order request failed", zap.Error(err))
		s.respondError(w, err.Error(), http.StatusInternalServerError)
	}
}
