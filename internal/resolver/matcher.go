package resolver

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/catalog"
)

// VariantMatcher picks a concrete variant out of the catalog for a query.
// Implementations are heuristics: returning false means "no confident match"
// and lets the scored pass take over.
type VariantMatcher interface {
	MatchVariant(query string, products []catalog.Product) (catalog.Product, catalog.Variant, bool)
}

var (
	sizeToken  = regexp.MustCompile(`(\d+)\s*(cm|mm|ml|kg|gr|oz|g|l)\b`)
	colorToken = regexp.MustCompile(`\bcolor\s+(\p{L}+)`)
)

func sizeOf(s string) string {
	m := sizeToken.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return ""
	}
	return m[1] + m[2]
}

func colorOf(s string) string {
	m := colorToken.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return ""
	}
	return m[1]
}

// SizeColorMatcher accepts a variant when both the size token ("12 cm") and
// the color token ("color blanco") of the query match it, or when the variant
// name appears in the query. Several hits of the same kind are ambiguous and
// produce no match.
type SizeColorMatcher struct{}

func (SizeColorMatcher) MatchVariant(query string, products []catalog.Product) (catalog.Product, catalog.Variant, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return catalog.Product{}, catalog.Variant{}, false
	}

	if size, color := sizeOf(q), colorOf(q); size != "" && color != "" {
		var (
			hits     int
			product  catalog.Product
			selected catalog.Variant
		)
		for _, p := range products {
			for _, v := range p.Variants {
				if variantSize(v) == size && variantHasColor(v, color) {
					hits++
					product, selected = p, v
				}
			}
		}
		if hits == 1 {
			return product, selected, true
		}
	}

	return matchByName(q, products)
}

type variantHit struct {
	product catalog.Product
	variant catalog.Variant
}

// matchByName runs the name pass. A query spelling out product and variant
// wins at once; otherwise exactly one variant must be named in the query, or
// failing that, exactly one variant name must contain the query.
func matchByName(q string, products []catalog.Product) (catalog.Product, catalog.Variant, bool) {
	var named, containing []variantHit
	for _, p := range products {
		pname := strings.ToLower(p.Name)
		for _, v := range p.Variants {
			vname := strings.ToLower(strings.TrimSpace(v.Name))
			if vname == "" {
				continue
			}
			full := pname + " - " + vname
			short := pname + " " + vname
			switch {
			case strings.Contains(q, full) || strings.Contains(q, short):
				return p, v, true
			case strings.Contains(q, vname):
				named = append(named, variantHit{p, v})
			case reverseMatches(q, pname, vname, full, short):
				containing = append(containing, variantHit{p, v})
			}
		}
	}
	if len(named) == 1 {
		return named[0].product, named[0].variant, true
	}
	if len(named) == 0 && len(containing) == 1 {
		return containing[0].product, containing[0].variant, true
	}
	return catalog.Product{}, catalog.Variant{}, false
}

func variantSize(v catalog.Variant) string {
	if v.Size != "" {
		return strings.ReplaceAll(strings.ToLower(v.Size), " ", "")
	}
	return sizeOf(v.Name)
}

func variantHasColor(v catalog.Variant, color string) bool {
	if v.Color != "" {
		return strings.EqualFold(v.Color, color)
	}
	for _, w := range strings.Fields(strings.ToLower(v.Name)) {
		if w == color {
			return true
		}
	}
	return false
}

// reverseMatches reports whether a variant name contains the query. Short
// queries and queries that only name the product itself select nothing.
func reverseMatches(q, pname, vname, full, short string) bool {
	if utf8.RuneCountInString(q) < MinPhraseLength || strings.Contains(pname, q) {
		return false
	}
	return strings.Contains(vname, q) || strings.Contains(full, q) || strings.Contains(short, q)
}
