package resolver

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/money"
)

var (
	connectorWords = regexp.MustCompile(`(?i)quiero comprar|comprar|me gustaría|quisiera|necesito|quiero|pedir`)
	spaces         = regexp.MustCompile(`\s+`)
)

// Outcome is the reply to a purchase phrase. Found is set only when Match is
// orderable.
type Outcome struct {
	Text  string
	Found bool
	Match Match
}

const specifyProductText = "Por favor, especifica qué producto deseas comprar.\n\n" +
	"Escribe *ver productos* para ver el catálogo completo, y luego\n" +
	"escribe *quiero comprar* seguido del nombre exacto del producto.\n\n" +
	"Ejemplo: \"quiero comprar Frasco de 500 ml\""

const notFoundText = "Lo siento, no encontré ese producto en nuestro catálogo.\n\n" +
	"👉 Asegúrate de escribir el nombre exacto como aparece en el catálogo.\n\n" +
	"Escribe *ver productos* para consultar los productos disponibles.\n" +
	"Recuerda que debes usar el formato: \"quiero comprar [nombre exacto del producto]\"\n\n" +
	"Para obtener ayuda, escribe: *ayuda*"

// StripConnectors removes purchase verbs ("quiero comprar", "necesito", ...)
// and returns the remaining product phrase in lower case.
func StripConnectors(text string) string {
	s := connectorWords.ReplaceAllString(strings.ToLower(text), " ")
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

// ProcessOrder resolves a purchase phrase such as "quiero comprar frasco de
// 500 ml" and builds the reply for it.
func (r *Resolver) ProcessOrder(text string) Outcome {
	phrase := StripConnectors(text)
	if utf8.RuneCountInString(phrase) < MinPhraseLength {
		return Outcome{Text: specifyProductText}
	}

	if m, ok := r.Resolve(phrase); ok {
		if m.Orderable() {
			return Outcome{Text: FoundText(m.Selection()), Found: true, Match: m}
		}
		return Outcome{Text: VariantOptionsText(m.Product), Match: m}
	}

	for _, c := range r.index.Categories() {
		if strings.Contains(strings.ToLower(c.Name), phrase) {
			return Outcome{Text: categorySuggestion(c)}
		}
	}
	return Outcome{Text: notFoundText}
}

// FoundText confirms a resolved selection and asks for the quantity.
func FoundText(sel catalog.Selection) string {
	return "✅ *Producto encontrado:*\n\n" +
		fmt.Sprintf("📦 %s\n", sel.Name) +
		fmt.Sprintf("💰 Precio: %s\n", money.Format(sel.Price)) +
		fmt.Sprintf("🏷️ Categoría: %s\n\n", sel.Category) +
		"*¿Cuántas unidades deseas añadir al carrito?*\n" +
		"Responde con un número (ejemplo: 2)"
}

// VariantOptionsText lists the options of a product that cannot be ordered
// without picking a variant.
func VariantOptionsText(p catalog.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "El producto *%s* está disponible en varias opciones:\n\n", p.Name)
	for _, v := range p.Variants {
		fmt.Fprintf(&b, "   • %s: %s\n", v.Name, money.Format(v.Price))
	}
	example := p.Name
	if len(p.Variants) > 0 {
		example = p.DisplayName(p.Variants[0])
	}
	fmt.Fprintf(&b, "\nEscribe *quiero comprar* seguido de la opción.\nEjemplo: \"quiero comprar %s\"", example)
	return b.String()
}

func categorySuggestion(c catalog.Category) string {
	var b strings.Builder
	fmt.Fprintf(&b, "No has especificado qué producto de *%s* deseas comprar.\n\n", c.Name)
	if len(c.Products) > 0 {
		b.WriteString("Algunos productos de esta categoría:\n\n")
		b.WriteString(catalog.ProductLines(c.Products))
	}
	example := "un producto específico"
	if len(c.Products) > 0 {
		example = c.Products[0].Name
	}
	b.WriteString("\nPor favor, escribe *quiero comprar* seguido del nombre exacto del producto.\n")
	fmt.Fprintf(&b, "Ejemplo: \"Quiero comprar %s\"", example)
	return b.String()
}
