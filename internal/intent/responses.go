package intent

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Responses is a table of canned replies per category.
type Responses struct {
	table map[Category][]string
	pick  func(n int) int
}

type ResponsesOption func(*Responses)

// WithPicker replaces the uniform random choice.
func WithPicker(pick func(n int) int) ResponsesOption {
	return func(r *Responses) { r.pick = pick }
}

func NewResponses(table map[Category][]string, opts ...ResponsesOption) *Responses {
	r := &Responses{table: make(map[Category][]string, len(table)), pick: rand.IntN}
	for c, list := range table {
		var kept []string
		for _, s := range list {
			if strings.TrimSpace(s) != "" {
				kept = append(kept, s)
			}
		}
		if len(kept) > 0 {
			r.table[c] = kept
		}
	}
	if len(r.table[Default]) == 0 {
		r.table[Default] = DefaultTable()[Default]
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadResponses reads a YAML or JSON mapping of category to replies.
func LoadResponses(path string, opts ...ResponsesOption) (*Responses, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read responses %s: %w", path, err)
	}
	raw := map[string][]string{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("decode responses %s: %w", path, err)
	}

	table := make(map[Category][]string, len(raw))
	for k, v := range raw {
		table[Category(strings.ToLower(k))] = v
	}
	return NewResponses(table, opts...), nil
}

// Random draws a reply for category, falling back to the default replies.
func (r *Responses) Random(category Category) string {
	list, ok := r.table[category]
	if !ok {
		list = r.table[Default]
	}
	return list[r.pick(len(list))]
}

func DefaultTable() map[Category][]string {
	return map[Category][]string{
		Greeting: {
			"¡Hola! 👋 Bienvenido a la tienda del Monasterio. Escribe *ver productos* para conocer nuestro catálogo.",
			"¡Buenas! 🙏 ¿En qué podemos ayudarte hoy? Escribe *ayuda* para ver cómo comprar.",
		},
		Farewell: {
			"¡Hasta pronto! 🙏 Que tengas un buen día.",
			"¡Adiós! Gracias por visitarnos.",
		},
		Thanks: {
			"¡Con gusto! Si necesitas algo más, aquí estamos. 😊",
			"¡A ti! Que Dios te bendiga. 🙏",
		},
		Products: {
			"Estas son nuestras categorías. Elige una para ver sus productos:",
		},
		Purchase: {
			"Para comprar, escribe *quiero comprar* seguido del nombre del producto.",
		},
		Help: {
			"Escribe *ayuda* para ver los comandos disponibles.",
		},
		Default: {
			"No estoy seguro de haber entendido. Escribe *ayuda* para ver lo que puedo hacer.",
			"Disculpa, no comprendí tu mensaje. Escribe *ver productos* para ver el catálogo.",
		},
	}
}

// HelpMessage explains how to shop through the chat.
func HelpMessage() string {
	return "ℹ️ *¿Cómo comprar?*\n\n" +
		"📦 *ver productos* - Ver el catálogo completo\n" +
		"📷 *ver imágenes* - Ver productos por categoría\n" +
		"🛍️ *quiero comprar [producto]* - Pedir un producto\n" +
		"➕ *añadir [cantidad] [producto]* - Añadir al carrito\n" +
		"🛒 *carrito* - Ver tu carrito\n" +
		"➖ *quitar [número]* - Quitar un producto del carrito\n" +
		"✅ *finalizar compra* - Completar tu pedido\n" +
		"❌ *vaciar carrito* - Vaciar el carrito\n\n" +
		"Ejemplo: \"quiero comprar Frasco de 500 ml\""
}
