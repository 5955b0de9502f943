package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront/pkg/catalog"
)

// listProducts serves the shop page: search, category and spice filters, then sorting.
func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q, err := catalog.ParseQuery(params.Get("search"), params.Get("category"), params.Get("spice"), params.Get("sort"))
	if err != nil {
		s.respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()

	items, err := s.catalog.Search(ctx, q)
	if err != nil {
		s.logger.Error("product search failed", zap.Error(err))
		s.respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, newProductViews(items))
}

func (s *Server) productFacets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()

	items, err := s.catalog.List(ctx)
	if err != nil {
		s.logger.Error("product listing failed", zap.Error(err))
		s.respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, newFacetsView(catalog.Summarize(items)))
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()

	item, err := s.catalog.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.catalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newProductView(item))
}

// catalogError maps catalog failures onto status codes.
func (s *Server) catalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		s.respondError(w, err.Error(), http.StatusNotFound)
	case catalog.IsValidation(err):
		s.respondError(w, err.Error(), http.StatusBadRequest)
	default:
		s.logger.Error("catalog request failed", zap.Error(err))
		s.respondError(w, err.Error(), http.StatusInternalServerError)
	}
}
