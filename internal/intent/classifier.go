// Package intent classifies free text into coarse conversation topics and
// picks canned replies for them.
package intent

import "strings"

type Category string

const (
	Help     Category = "ayuda"
	Purchase Category = "compra"
	Greeting Category = "saludos"
	Farewell Category = "despedidas"
	Thanks   Category = "agradecimientos"
	Products Category = "productos"
	Default  Category = "default"
)

type bucket struct {
	category Category
	keywords []string
}

// buckets are checked in order; the first bucket with a keyword contained in
// the text wins.
var buckets = []bucket{
	{Help, []string{"ayuda", "help", "cómo comprar", "como comprar", "instrucciones"}},
	{Purchase, []string{"quiero comprar", "comprar", "pedir"}},
	{Greeting, []string{"hola", "buenos días", "buenos dias", "buenas", "saludos", "hey"}},
	{Farewell, []string{"adiós", "adios", "chao", "hasta luego", "bye", "nos vemos"}},
	{Thanks, []string{"gracias", "te agradezco"}},
	{Products, []string{"productos", "catálogo", "catalogo", "precio", "qué venden", "que venden", "qué tienen", "que tienen"}},
}

func Classify(text string) Category {
	t := strings.ToLower(text)
	for _, b := range buckets {
		for _, kw := range b.keywords {
			if strings.Contains(t, kw) {
				return b.category
			}
		}
	}
	return Default
}

// IsPurchase reports whether text carries a purchase verb.
func IsPurchase(text string) bool {
	t := strings.ToLower(text)
	for _, kw := range buckets[1].keywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}
