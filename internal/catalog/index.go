package catalog

import (
	"strconv"
	"strings"
)

// Index is an immutable view over the catalog. Lookups never fail loudly: a
// miss returns -1, false or an empty slice.
type Index struct {
	categories []Category
}

func NewIndex(categories []Category) *Index {
	cp := make([]Category, len(categories))
	for i, c := range categories {
		products := make([]Product, len(c.Products))
		for j, p := range c.Products {
			p.Category = c.Name
			p.Variants = append([]Variant(nil), p.Variants...)
			products[j] = p
		}
		cp[i] = Category{Name: c.Name, Products: products}
	}
	return &Index{categories: cp}
}

// Categories returns the categories in menu order. Callers must not modify
// the returned products.
func (x *Index) Categories() []Category {
	out := make([]Category, len(x.categories))
	copy(out, x.categories)
	return out
}

func (x *Index) Len() int {
	return len(x.categories)
}

func (x *Index) Category(i int) (Category, bool) {
	if i < 0 || i >= len(x.categories) {
		return Category{}, false
	}
	return x.categories[i], true
}

// CategoryByNameOrNumber maps a menu selection to a category position.
// "1".."N" select by position; anything else is matched as a case-insensitive
// substring of the category names, first match wins.
func (x *Index) CategoryByNameOrNumber(sel string) int {
	sel = strings.ToLower(strings.TrimSpace(sel))
	if sel == "" {
		return -1
	}
	if n, err := strconv.Atoi(sel); err == nil && n >= 1 && n <= len(x.categories) {
		return n - 1
	}
	for i, c := range x.categories {
		if strings.Contains(strings.ToLower(c.Name), sel) {
			return i
		}
	}
	return -1
}

// CategoryMentionedIn returns the first category whose name appears in text,
// or -1.
func (x *Index) CategoryMentionedIn(text string) int {
	text = strings.ToLower(text)
	for i, c := range x.categories {
		if name := strings.ToLower(c.Name); name != "" && strings.Contains(text, name) {
			return i
		}
	}
	return -1
}

func (x *Index) ProductsIn(category string) []Product {
	c, ok := x.find(category)
	if !ok {
		return nil
	}
	return c.Products
}

// ProductInCategory returns the first product of category whose name contains
// fragment, ignoring case.
func (x *Index) ProductInCategory(category, fragment string) (Product, bool) {
	fragment = strings.ToLower(strings.TrimSpace(fragment))
	if fragment == "" {
		return Product{}, false
	}
	c, ok := x.find(category)
	if !ok {
		return Product{}, false
	}
	for _, p := range c.Products {
		if strings.Contains(strings.ToLower(p.Name), fragment) {
			return p, true
		}
	}
	return Product{}, false
}

func (x *Index) find(category string) (Category, bool) {
	for _, c := range x.categories {
		if strings.EqualFold(c.Name, strings.TrimSpace(category)) {
			return c, true
		}
	}
	return Category{}, false
}
