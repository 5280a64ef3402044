// Package resolver maps free-form chat text to catalog products and variants.
package resolver

import (
	"strings"
	"unicode/utf8"

	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/catalog"
)

// MinScore is the confidence floor of the scored pass.
const MinScore = 40.0

// MinPhraseLength is the shortest product phrase, in runes, worth resolving.
const MinPhraseLength = 3

// Match is the outcome of a successful resolution. Variant is nil when the
// match is a whole product.
type Match struct {
	Product catalog.Product
	Variant *catalog.Variant
	Score   float64
}

// Orderable reports whether the match can go straight into a cart. A product
// with variants needs one of its variants picked first.
func (m Match) Orderable() bool {
	return m.Variant != nil || !m.Product.HasVariants()
}

func (m Match) Selection() catalog.Selection {
	if m.Variant != nil {
		return m.Product.VariantSelection(*m.Variant)
	}
	return m.Product.Selection()
}

type Resolver struct {
	index   *catalog.Index
	matcher VariantMatcher
}

type Option func(*Resolver)

// WithMatcher replaces the default SizeColorMatcher.
func WithMatcher(m VariantMatcher) Option {
	return func(r *Resolver) { r.matcher = m }
}

func New(index *catalog.Index, opts ...Option) *Resolver {
	r := &Resolver{index: index, matcher: SizeColorMatcher{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve runs the variant pass and then the scored pass. The returned match
// may be a product with variants; see Match.Orderable.
func (r *Resolver) Resolve(text string) (Match, bool) {
	q := strings.ToLower(strings.TrimSpace(text))
	if utf8.RuneCountInString(q) < MinPhraseLength {
		return Match{}, false
	}

	var withVariants []catalog.Product
	for _, c := range r.index.Categories() {
		for _, p := range c.Products {
			if p.HasVariants() {
				withVariants = append(withVariants, p)
			}
		}
	}
	if len(withVariants) > 0 {
		if p, v, ok := r.matcher.MatchVariant(q, withVariants); ok {
			return Match{Product: p, Variant: &v, Score: 100}, true
		}
	}

	var (
		best      Match
		bestScore float64
	)
	for _, c := range r.index.Categories() {
		category := strings.ToLower(c.Name)
		for _, p := range c.Products {
			s := score(q, strings.ToLower(p.Name), category)
			if s > bestScore {
				best, bestScore = Match{Product: p, Score: s}, s
			}
		}
	}
	if bestScore <= MinScore {
		return Match{}, false
	}
	return best, true
}

// ResolveExact returns the orderable selection for text, if any.
func (r *Resolver) ResolveExact(text string) (catalog.Selection, bool) {
	m, ok := r.Resolve(text)
	if !ok || !m.Orderable() {
		return catalog.Selection{}, false
	}
	return m.Selection(), true
}

func score(q, name, category string) float64 {
	if name == "" {
		return 0
	}
	var s float64
	switch {
	case q == name:
		s = 100
	case strings.Contains(q, name):
		s = 75 + 20*float64(utf8.RuneCountInString(name))/float64(utf8.RuneCountInString(q))
	case strings.Contains(name, q):
		s = 50 + 20*float64(utf8.RuneCountInString(q))/float64(utf8.RuneCountInString(name))
	default:
		return 0
	}
	if category != "" && strings.Contains(q, category) {
		s += 25
	}
	return s
}

// Search returns every product whose name contains term, ignoring case.
func (r *Resolver) Search(term string) []catalog.Product {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	var out []catalog.Product
	for _, c := range r.index.Categories() {
		for _, p := range c.Products {
			if strings.Contains(strings.ToLower(p.Name), term) {
				out = append(out, p)
			}
		}
	}
	return out
}

func (r *Resolver) ResolveInCategory(category, text string) (catalog.Product, bool) {
	return r.index.ProductInCategory(category, text)
}
