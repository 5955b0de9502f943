package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/money"
)

// Category groups products on the shop shelves.
type Category string

const (
	CategoryNoodles Category = "noodles"
	CategorySauces  Category = "sauces"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{CategoryNoodles, CategorySauces}
}

// ParseCategory accepts the lowercase wire names.
func ParseCategory(raw string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(raw))); c {
	case CategoryNoodles, CategorySauces:
		return c, nil
	default:
		return "", fmt.Errorf("unknown category %q", raw)
	}
}

// SpiceLevel is an optional, ordered heat rating. The zero value means unrated.
type SpiceLevel string

const (
	SpiceUnrated  SpiceLevel = ""
	SpiceMild     SpiceLevel = "mild"
	SpiceMedium   SpiceLevel = "medium"
	SpiceHot      SpiceLevel = "hot"
	SpiceExtraHot SpiceLevel = "extra-hot"
)

// SpiceLevels lists the rated levels from mildest to hottest.
func SpiceLevels() []SpiceLevel {
	return []SpiceLevel{SpiceMild, SpiceMedium, SpiceHot, SpiceExtraHot}
}

// ParseSpiceLevel accepts the wire names; an empty string is SpiceUnrated.
func ParseSpiceLevel(raw string) (SpiceLevel, error) {
	switch l := SpiceLevel(strings.ToLower(strings.TrimSpace(raw))); l {
	case SpiceUnrated, SpiceMild, SpiceMedium, SpiceHot, SpiceExtraHot:
		return l, nil
	default:
		return "", fmt.Errorf("unknown spice level %q", raw)
	}
}

// Rank orders levels: 0 for unrated, 1 for mild up to 4 for extra-hot.
// The storefront renders this many flame icons.
func (l SpiceLevel) Rank() int {
	switch l {
	case SpiceMild:
		return 1
	case SpiceMedium:
		return 2
	case SpiceHot:
		return 3
	case SpiceExtraHot:
		return 4
	default:
		return 0
	}
}

// Item is a product offered by the shop. Items are values: the cart copies
// them and never changes one.
type Item struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	Category    Category        `json:"category"`
	Featured    bool            `json:"featured"`
	SpiceLevel  SpiceLevel      `json:"spiceLevel,omitempty"`
	InStock     bool            `json:"inStock"`
}

// Validate checks the fields the storefront relies on.
func (i Item) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return newValidationError("id is required")
	}
	if strings.TrimSpace(i.Name) == "" {
		return newValidationError("name is required")
	}
	if !slices.Contains(Categories(), i.Category) {
		return newValidationError(fmt.Sprintf("unknown category %q", i.Category))
	}
	if i.SpiceLevel != SpiceUnrated && !slices.Contains(SpiceLevels(), i.SpiceLevel) {
		return newValidationError(fmt.Sprintf("unknown spice level %q", i.SpiceLevel))
	}
	if i.Price.IsNegative() {
		return newValidationError("price cannot be negative")
	}
	if !money.HasCents(i.Price) {
		return newValidationError("price must have at most two decimal places")
	}
	return nil
}
