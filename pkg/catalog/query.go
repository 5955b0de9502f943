package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// SortOrder selects how Apply orders matching products.
type SortOrder string

const (
	SortByName      SortOrder = "name"
	SortByPriceLow  SortOrder = "price-low"
	SortByPriceHigh SortOrder = "price-high"
)

// anyFilter is the shop page value for "do not filter on this field".
const anyFilter = "all"

// ParseSortOrder accepts the wire names; an empty string means sort by name.
func ParseSortOrder(raw string) (SortOrder, error) {
	switch s := SortOrder(strings.ToLower(strings.TrimSpace(raw))); s {
	case "":
		return SortByName, nil
	case SortByName, SortByPriceLow, SortByPriceHigh:
		return s, nil
	default:
		return "", fmt.Errorf("unknown sort order %q", raw)
	}
}

// Query describes the shop page filters. Empty filters match everything.
type Query struct {
	Search     string
	Category   Category
	SpiceLevel SpiceLevel
	Sort       SortOrder
}

// ParseQuery builds a Query from raw request values. "all" and "" mean no filter.
func ParseQuery(search, category, spice, sort string) (Query, error) {
	q := Query{Search: strings.TrimSpace(search)}
	if c := strings.TrimSpace(category); c != "" && !strings.EqualFold(c, anyFilter) {
		parsed, err := ParseCategory(c)
		if err != nil {
			return Query{}, err
		}
		q.Category = parsed
	}
	if s := strings.TrimSpace(spice); s != "" && !strings.EqualFold(s, anyFilter) {
		parsed, err := ParseSpiceLevel(s)
		if err != nil {
			return Query{}, err
		}
		q.SpiceLevel = parsed
	}
	order, err := ParseSortOrder(sort)
	if err != nil {
		return Query{}, err
	}
	q.Sort = order
	return q, nil
}

// Matches reports whether a single item passes every filter of the query.
func (q Query) Matches(item Item) bool {
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(item.Name), needle) &&
			!strings.Contains(strings.ToLower(item.Description), needle) {
			return false
		}
	}
	if q.Category != "" && item.Category != q.Category {
		return false
	}
	if q.SpiceLevel != SpiceUnrated && item.SpiceLevel != q.SpiceLevel {
		return false
	}
	return true
}

// Apply returns the matching items in the requested order. The input slice is left untouched.
func Apply(items []Item, q Query) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if q.Matches(item) {
			out = append(out, item)
		}
	}

	byName := func(a, b Item) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	}

	switch q.Sort {
	case SortByPriceLow:
		slices.SortStableFunc(out, func(a, b Item) int {
			if c := a.Price.Cmp(b.Price); c != 0 {
				return c
			}
			return byName(a, b)
		})
	case SortByPriceHigh:
		slices.SortStableFunc(out, func(a, b Item) int {
			if c := b.Price.Cmp(a.Price); c != 0 {
				return c
			}
			return byName(a, b)
		})
	default:
		slices.SortStableFunc(out, byName)
	}
	return out
}

// Facets summarizes the catalog for the filter sidebar.
type Facets struct {
	InStock     int                `json:"inStock"`
	OutOfStock  int                `json:"outOfStock"`
	Categories  map[Category]int   `json:"categories"`
	SpiceLevels map[SpiceLevel]int `json:"spiceLevels"`
	MinPrice    decimal.Decimal    `json:"minPrice"`
	MaxPrice    decimal.Decimal    `json:"maxPrice"`
}

// Summarize counts availability, categories and spice levels and finds the price range.
func Summarize(items []Item) Facets {
	f := Facets{
		Categories:  make(map[Category]int),
		SpiceLevels: make(map[SpiceLevel]int),
	}
	for i, item := range items {
		if item.InStock {
			f.InStock++
		} else {
			f.OutOfStock++
		}
		f.Categories[item.Category]++
		if item.SpiceLevel != SpiceUnrated {
			f.SpiceLevels[item.SpiceLevel]++
		}
		if i == 0 || item.Price.LessThan(f.MinPrice) {
			f.MinPrice = item.Price
		}
		if i == 0 || item.Price.GreaterThan(f.MaxPrice) {
			f.MaxPrice = item.Price
		}
	}
	return f
}
