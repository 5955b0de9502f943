package catalog

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// SampleItems is the built-in product list used when no seed file is configured.
func SampleItems() []Item {
	return []Item{
		{
			ID:          "1",
			Name:        "Classic Ramen Noodles",
			Description: "Traditional Japanese-style ramen noodles with rich, savory broth flavor.",
			Price:       decimal.RequireFromString("12.99"),
			ImageURL:    "/assets/ramen-noodles.jpg",
			Category:    CategoryNoodles,
			Featured:    true,
			SpiceLevel:  SpiceMild,
			InStock:     true,
		},
		{
			ID:          "2",
			Name:        "Spicy Udon Noodles",
			Description: "Thick, chewy udon noodles with a fiery kick that will awaken your taste buds.",
			Price:       decimal.RequireFromString("14.99"),
			ImageURL:    "/assets/udon-noodles.jpg",
			Category:    CategoryNoodles,
			Featured:    true,
			SpiceLevel:  SpiceHot,
			InStock:     true,
		},
		{
			ID:          "3",
			Name:        "Sesame Soba Noodles",
			Description: "Nutty buckwheat soba noodles with rich sesame flavor and aroma.",
			Price:       decimal.RequireFromString("13.99"),
			ImageURL:    "/assets/soba-noodles.jpg",
			Category:    CategoryNoodles,
			SpiceLevel:  SpiceMild,
			InStock:     true,
		},
		{
			ID:          "4",
			Name:        "Thai Pad Thai Noodles",
			Description: "Authentic Thai rice noodles with sweet and tangy flavors.",
			Price:       decimal.RequireFromString("15.99"),
			ImageURL:    "/assets/ramen-noodles.jpg",
			Category:    CategoryNoodles,
			SpiceLevel:  SpiceMedium,
			InStock:     true,
		},
		{
			ID:          "5",
			Name:        "Dragon Fire Chili Sauce",
			Description: "Blazing hot chili sauce made with premium ghost peppers and secret spices.",
			Price:       decimal.RequireFromString("8.99"),
			ImageURL:    "/assets/chili-sauce.jpg",
			Category:    CategorySauces,
			Featured:    true,
			SpiceLevel:  SpiceExtraHot,
			InStock:     true,
		},
		{
			ID:          "6",
			Name:        "Sweet & Sour Sauce",
			Description: "Perfect balance of sweetness and tang, ideal for stir-fries and dipping.",
			Price:       decimal.RequireFromString("6.99"),
			ImageURL:    "/assets/teriyaki-sauce.jpg",
			Category:    CategorySauces,
			SpiceLevel:  SpiceMild,
			InStock:     true,
		},
		{
			ID:          "7",
			Name:        "Garlic Teriyaki Sauce",
			Description: "Rich, umami-packed teriyaki sauce with roasted garlic undertones.",
			Price:       decimal.RequireFromString("7.99"),
			ImageURL:    "/assets/teriyaki-sauce.jpg",
			Category:    CategorySauces,
			Featured:    true,
			SpiceLevel:  SpiceMild,
			InStock:     true,
		},
		{
			ID:          "8",
			Name:        "Szechuan Pepper Sauce",
			Description: "Authentic Szechuan sauce with numbing pepper and bold flavors.",
			Price:       decimal.RequireFromString("9.99"),
			ImageURL:    "/assets/chili-sauce.jpg",
			Category:    CategorySauces,
			SpiceLevel:  SpiceHot,
			InStock:     true,
		},
		{
			ID:          "9",
			Name:        "Miso Ginger Sauce",
			Description: "Savory miso blended with fresh ginger for a complex, satisfying taste.",
			Price:       decimal.RequireFromString("8.49"),
			ImageURL:    "/assets/teriyaki-sauce.jpg",
			Category:    CategorySauces,
			SpiceLevel:  SpiceMild,
			InStock:     true,
		},
		{
			ID:          "10",
			Name:        "Korean Gochujang Sauce",
			Description: "Fermented Korean chili paste sauce with deep, complex heat.",
			Price:       decimal.RequireFromString("10.99"),
			ImageURL:    "/assets/chili-sauce.jpg",
			Category:    CategorySauces,
			SpiceLevel:  SpiceMedium,
			InStock:     true,
		},
	}
}

// seedFile is the YAML layout of a catalog seed file.
type seedFile struct {
	Products []seedRecord `yaml:"products"`
}

// seedRecord keeps file parsing separate from Item; prices stay strings until validated.
type seedRecord struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	ImageURL    string `yaml:"image_url"`
	Category    string `yaml:"category"`
	Featured    bool   `yaml:"featured"`
	SpiceLevel  string `yaml:"spice_level"`
	InStock     *bool  `yaml:"in_stock"`
}

// LoadFile reads products from a YAML seed file. Products default to in stock.
func LoadFile(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML seed document and validates every product.
func Parse(data []byte) ([]Item, error) {
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(file.Products))
	items := make([]Item, 0, len(file.Products))
	for n, rec := range file.Products {
		item, err := rec.toItem()
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", n+1, err)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("product %d: %w", n+1, newValidationError("duplicate id "+item.ID))
		}
		seen[item.ID] = struct{}{}
		items = append(items, item)
	}
	return items, nil
}

func (r seedRecord) toItem() (Item, error) {
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return Item{}, newValidationError(fmt.Sprintf("invalid price %q", r.Price))
	}
	category, err := ParseCategory(r.Category)
	if err != nil {
		return Item{}, newValidationError(err.Error())
	}
	spice, err := ParseSpiceLevel(r.SpiceLevel)
	if err != nil {
		return Item{}, newValidationError(err.Error())
	}
	inStock := true
	if r.InStock != nil {
		inStock = *r.InStock
	}
	item := Item{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       price,
		ImageURL:    r.ImageURL,
		Category:    category,
		Featured:    r.Featured,
		SpiceLevel:  spice,
		InStock:     inStock,
	}
	if err := item.Validate(); err != nil {
		return Item{}, err
	}
	return item, nil
}
