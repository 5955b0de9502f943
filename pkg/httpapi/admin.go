package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"storefront/pkg/catalog"
)

// productPayload keeps transport level parsing separate from catalog.Item.
type productPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	ImageURL    string `json:"imageUrl"`
	Category    string `json:"category"`
	Featured    bool   `json:"featured"`
	SpiceLevel  string `json:"spiceLevel"`
	InStock     *bool  `json:"inStock"`
}

// toItem builds the catalog item. inStock applies when the payload omits the field.
func (p productPayload) toItem(inStock bool) (catalog.Item, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(p.Price))
	if err != nil {
		return catalog.Item{}, fmt.Errorf("invalid price %q", p.Price)
	}
	category, err := catalog.ParseCategory(p.Category)
	if err != nil {
		return catalog.Item{}, err
	}
	spice, err := catalog.ParseSpiceLevel(p.SpiceLevel)
	if err != nil {
		return catalog.Item{}, err
	}
	if p.InStock != nil {
		inStock = *p.InStock
	}
	return catalog.Item{
		ID:          strings.TrimSpace(p.ID),
		Name:        strings.TrimSpace(p.Name),
		Description: p.Description,
		Price:       price,
		ImageURL:    p.ImageURL,
		Category:    category,
		Featured:    p.Featured,
		SpiceLevel:  spice,
		InStock:     inStock,
	}, nil
}

func (s *Server) adminListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()

	items, err := s.catalog.List(ctx)
	if err != nil {
		s.catalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newProductViews(items))
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var payload productPayload
	if !s.decode(w, r, &payload) {
		return
	}
	item, err := payload.toItem(true)
	if err != nil {
		s.respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()

	stored, err := s.catalog.Add(ctx, item)
	if err != nil {
		s.catalogError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, newProductView(stored))
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	var payload productPayload
	if !s.decode(w, r, &payload) {
		return
	}
	payload.ID = chi.URLParam(r, "id")

	ctx, cancel := withTimeout(r)
	defer cancel()

	// an edit that leaves out inStock keeps the stored availability
	current, err := s.catalog.Get(ctx, payload.ID)
	if err != nil {
		s.catalogError(w, err)
		return
	}
	item, err := payload.toItem(current.InStock)
	if err != nil {
		s.respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.catalog.Update(ctx, item); err != nil {
		s.catalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newProductView(item))
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r)
	defer cancel()

	if err := s.catalog.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		s.catalogError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
