package httpapi

import (
	"time"

	"storefront/internal/money"
	"storefront/pkg/cart"
	"storefront/pkg/catalog"
	"storefront/pkg/checkout"
	"storefront/pkg/order"
)

// Response shapes. Money always leaves the API as a two decimal string.

type productView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	ImageURL    string `json:"imageUrl"`
	Category    string `json:"category"`
	Featured    bool   `json:"featured"`
	SpiceLevel  string `json:"spiceLevel,omitempty"`
	SpiceRank   int    `json:"spiceRank"`
	InStock     bool   `json:"inStock"`
}

func newProductView(item catalog.Item) productView {
	return productView{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Price:       money.Format(item.Price),
		ImageURL:    item.ImageURL,
		Category:    string(item.Category),
		Featured:    item.Featured,
		SpiceLevel:  string(item.SpiceLevel),
		SpiceRank:   item.SpiceLevel.Rank(),
		InStock:     item.InStock,
	}
}

func newProductViews(items []catalog.Item) []productView {
	out := make([]productView, 0, len(items))
	for _, item := range items {
		out = append(out, newProductView(item))
	}
	return out
}

type facetsView struct {
	InStock     int            `json:"inStock"`
	OutOfStock  int            `json:"outOfStock"`
	Categories  map[string]int `json:"categories"`
	SpiceLevels map[string]int `json:"spiceLevels"`
	MinPrice    string         `json:"minPrice"`
	MaxPrice    string         `json:"maxPrice"`
}

func newFacetsView(f catalog.Facets) facetsView {
	view := facetsView{
		InStock:     f.InStock,
		OutOfStock:  f.OutOfStock,
		Categories:  make(map[string]int, len(f.Categories)),
		SpiceLevels: make(map[string]int, len(f.SpiceLevels)),
		MinPrice:    money.Format(f.MinPrice),
		MaxPrice:    money.Format(f.MaxPrice),
	}
	for k, v := range f.Categories {
		view.Categories[string(k)] = v
	}
	for k, v := range f.SpiceLevels {
		view.SpiceLevels[string(k)] = v
	}
	return view
}

type lineView struct {
	Product   productView `json:"product"`
	Quantity  int         `json:"quantity"`
	UnitPrice string      `json:"unitPrice"`
	Subtotal  string      `json:"subtotal"`
}

type quoteView struct {
	Subtotal             string `json:"subtotal"`
	Shipping             string `json:"shipping"`
	Tax                  string `json:"tax"`
	GrandTotal           string `json:"grandTotal"`
	FreeShipping         bool   `json:"freeShipping"`
	AmountToFreeShipping string `json:"amountToFreeShipping"`
}

func newQuoteView(q checkout.Quote) quoteView {
	shown := q.Display()
	return quoteView{
		Subtotal:             money.Format(shown.Subtotal),
		Shipping:             money.Format(shown.Shipping),
		Tax:                  money.Format(shown.Tax),
		GrandTotal:           money.Format(shown.GrandTotal),
		FreeShipping:         shown.FreeShipping(),
		AmountToFreeShipping: money.Format(shown.AmountToFreeShipping),
	}
}

type cartView struct {
	Lines     []lineView `json:"lines"`
	ItemCount int        `json:"itemCount"`
	Total     string     `json:"total"`
	Quote     quoteView  `json:"quote"`
}

func newCartView(state cart.State, policy checkout.Policy) cartView {
	lines := make([]lineView, 0, len(state.Lines))
	for _, l := range state.Lines {
		lines = append(lines, lineView{
			Product:   newProductView(l.Item),
			Quantity:  l.Quantity,
			UnitPrice: money.Format(l.Item.Price),
			Subtotal:  money.Format(l.Subtotal()),
		})
	}
	return cartView{
		Lines:     lines,
		ItemCount: state.ItemCount,
		Total:     money.Format(state.Total),
		Quote:     newQuoteView(policy.Quote(state)),
	}
}

type orderLineView struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
}

type orderView struct {
	ID              string                `json:"id"`
	Status          string                `json:"status"`
	Lines           []orderLineView       `json:"lines"`
	ItemCount       int                   `json:"itemCount"`
	Subtotal        string                `json:"subtotal"`
	Shipping        string                `json:"shipping"`
	Tax             string                `json:"tax"`
	Total           string                `json:"total"`
	ShippingAddress order.ShippingAddress `json:"shippingAddress"`
	CreatedAt       string                `json:"createdAt"`
}

func newOrderView(o order.Order) orderView {
	lines := make([]orderLineView, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, orderLineView{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: money.Format(l.UnitPrice),
			Quantity:  l.Quantity,
		})
	}
	return orderView{
		ID:              o.ID,
		Status:          string(o.Status),
		Lines:           lines,
		ItemCount:       o.ItemCount(),
		Subtotal:        money.Format(o.Subtotal),
		Shipping:        money.Format(o.Shipping),
		Tax:             money.Format(o.Tax),
		Total:           money.Format(o.Total),
		ShippingAddress: o.ShippingAddress,
		CreatedAt:       o.CreatedAt.UTC().Format(time.RFC3339),
	}
}
