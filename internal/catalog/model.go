package catalog

import "github.com/shopspring/decimal"

// Variant is a priced sub-option of a product, e.g. a size/color
// combination. Size and Color are optional encoded attributes; matchers fall
// back to the variant name when they are empty.
type Variant struct {
	Name  string
	Price decimal.Decimal
	Size  string
	Color string
}

// Product is one catalog entry. A product with variants has no orderable
// price of its own.
type Product struct {
	Name     string
	Price    decimal.Decimal
	Category string
	ImageRef string
	Variants []Variant
}

func (p Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// DisplayName is how a variant is shown and stored in carts.
func (p Product) DisplayName(v Variant) string {
	return p.Name + " - " + v.Name
}

// Selection returns the orderable form of a product without variants.
func (p Product) Selection() Selection {
	return Selection{Name: p.Name, Price: p.Price, Category: p.Category, ImageRef: p.ImageRef}
}

// VariantSelection returns the orderable form of one of p's variants.
func (p Product) VariantSelection(v Variant) Selection {
	return Selection{Name: p.DisplayName(v), Price: v.Price, Category: p.Category, ImageRef: p.ImageRef}
}

type Category struct {
	Name     string
	Products []Product
}

// Selection is a resolved product or variant: something that can go into a
// cart.
type Selection struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	ImageRef string          `json:"imageRef,omitempty"`
}
