// Package httpapi exposes the storefront as a JSON API: the product catalog,
// the shopper's cart, checkout and catalog administration.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"storefront/pkg/cart"
	"storefront/pkg/catalog"
	"storefront/pkg/checkout"
	"storefront/pkg/order"
	"storefront/pkg/version"
)

// requestTimeout bounds how long a handler waits on the backing services.
const requestTimeout = 5 * time.Second

// Deps are the services the API talks to.
type Deps struct {
	Catalog    *catalog.Service
	Carts      *cart.Sessions
	Orders     *order.Service
	Policy     checkout.Policy
	SessionTTL time.Duration
}

// Server wires HTTP endpoints to the catalog, cart and order services.
type Server struct {
	catalog    *catalog.Service
	carts      *cart.Sessions
	orders     *order.Service
	policy     checkout.Policy
	sessionTTL time.Duration
	logger     *zap.Logger
}

// New builds the API. A nil logger discards output.
func New(deps Deps, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.SessionTTL <= 0 {
		deps.SessionTTL = cart.DefaultSessionTTL
	}
	return &Server{
		catalog:    deps.Catalog,
		carts:      deps.Carts,
		orders:     deps.Orders,
		policy:     deps.Policy,
		sessionTTL: deps.SessionTTL,
		logger:     logger.Named("http"),
	}
}

// Handler returns the router with all middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Delete("/session", s.endSession)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.listProducts)
			r.Get("/facets", s.productFacets)
			r.Get("/{id}", s.getProduct)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.session)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", s.viewCart)
				r.Delete("/", s.clearCart)
				r.Post("/items", s.addCartItem)
				r.Put("/items/{id}", s.updateCartItem)
				r.Delete("/items/{id}", s.removeCartItem)
			})
			r.Post("/orders", s.placeOrder)
		})

		r.Get("/orders", s.listOrders)
		r.Get("/orders/{id}", s.getOrder)

		r.Route("/admin/products", func(r chi.Router) {
			r.Get("/", s.adminListProducts)
			r.Post("/", s.createProduct)
			r.Put("/{id}", s.updateProduct)
			r.Delete("/{id}", s.deleteProduct)
		})
	})
	return r
}

type healthView struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	ActiveCarts int    `json:"activeCarts"`
}

// health reports the build and how many carts are held. It answers 503 once
// the cart registry has stopped.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()

	view := healthView{Status: "ok", Version: version.Version()}
	active, err := s.carts.Active(ctx)
	if err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		view.Status = "unavailable"
		respondJSON(w, http.StatusServiceUnavailable, view)
		return
	}
	view.ActiveCarts = active
	respondJSON(w, http.StatusOK, view)
}

// withTimeout derives the context handlers pass to the services.
func withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), requestTimeout)
}

// respondJSON writes v with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError keeps JSON formatting consistent across endpoints.
func (s *Server) respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decode reads a JSON body into v and answers 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.logger.Info("rejecting request body", zap.String("path", r.URL.Path), zap.Error(err))
		s.respondError(w, "invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}
