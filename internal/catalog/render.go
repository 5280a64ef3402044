package catalog

import (
	"fmt"
	"strings"

	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/money"
)

var categoryEmoji = map[string]string{
	"Miel de Abeja":              "🍯",
	"Cake":                       "🍰",
	"Alfajores":                  "🍬",
	"Manjar de Leche":            "🥛",
	"Propóleo":                   "🌿",
	"Cruces de Tagua":            "✝️",
	"Cerámicas":                  "🏺",
	"Fundas Ecológicas":          "♻️",
	"Cactus":                     "🌵",
	"CD Himno Monástico":         "💿",
	"Medallas de San Benito":     "🏅",
	"Cirios por la Paz":          "🕯️",
	"Cirios Pascuales":           "🕯️",
	"Cirios Litúrgicos":          "🕯️",
	"Llaveros y Esferos (Bambú)": "🔑",
	"Pulseras (macramé)":         "⚜️",
}

// Emoji returns the decoration used for a category heading.
func Emoji(category string) string {
	if e, ok := categoryEmoji[category]; ok {
		return e
	}
	return "📦"
}

// ProductLines renders one "- name: $price" line per product, expanding
// variants underneath their product.
func ProductLines(products []Product) string {
	var b strings.Builder
	for _, p := range products {
		if !p.HasVariants() {
			fmt.Fprintf(&b, "- %s: %s\n", p.Name, money.Format(p.Price))
			continue
		}
		fmt.Fprintf(&b, "- %s:\n", p.Name)
		for _, v := range p.Variants {
			fmt.Fprintf(&b, "   • %s: %s\n", v.Name, money.Format(v.Price))
		}
	}
	return b.String()
}

// ProductList renders the whole catalog grouped by category.
func (x *Index) ProductList() string {
	var b strings.Builder
	b.WriteString("📦 *Productos disponibles:*\n\n")
	for _, c := range x.categories {
		fmt.Fprintf(&b, "%s *%s*\n", Emoji(c.Name), c.Name)
		b.WriteString(ProductLines(c.Products))
		b.WriteString("\n")
	}
	b.WriteString("Para ver imágenes, escribe: *ver imágenes*\n\n")
	b.WriteString("📌 *¿Cómo hacer un pedido?*\n")
	b.WriteString("Escribe *quiero comprar* seguido del nombre exacto del producto.\n")
	b.WriteString("Ejemplo: \"quiero comprar Frasco de 500 ml\"\n\n")
	b.WriteString("Para más ayuda, escribe: *ayuda*")
	return b.String()
}

// CategoryMenu renders the numbered category menu.
func (x *Index) CategoryMenu() string {
	var b strings.Builder
	b.WriteString("📷 *¿De qué categoría deseas ver imágenes?*\n\n")
	for i, c := range x.categories {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c.Name)
	}
	b.WriteString("\nEscribe el número o nombre de la categoría.\n")
	b.WriteString("Ejemplo: 2 o Cake")
	return b.String()
}

// CategoryProducts renders the product list of a single category.
func CategoryProducts(c Category) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🛒 *Productos de %s:*\n\n", c.Name)
	b.WriteString(ProductLines(c.Products))
	b.WriteString("\n💬 Para hacer un pedido, escribe: *quiero comprar* seguido del producto.")
	return b.String()
}
