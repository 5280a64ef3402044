package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/catalog/catalogtest"
)

func TestProductList(t *testing.T) {
	text := catalogtest.Index().ProductList()

	require.Contains(t, text, "🍯 *Miel de Abeja*\n- Frasco de 500 ml: $6,50\n")
	require.Contains(t, text, "🍰 *Cake*")
	require.Contains(t, text, "🌿 *Propóleo*")
	require.Contains(t, text, "- Cruz de Tagua:\n   • 12cm blanco: $5,00\n")
	require.Contains(t, text, "Para más ayuda, escribe: *ayuda*")
}

func TestCategoryMenu(t *testing.T) {
	text := catalogtest.Index().CategoryMenu()

	require.Contains(t, text, "1. Miel de Abeja\n2. Cake\n3. Cruces de Tagua\n4. Propóleo\n")
	require.Contains(t, text, "Ejemplo: 2 o Cake")
}

func TestCategoryProducts(t *testing.T) {
	c, _ := catalogtest.Index().Category(1)
	text := catalog.CategoryProducts(c)

	require.Contains(t, text, "🛒 *Productos de Cake:*")
	require.Contains(t, text, "- Cake de Chocolate: $12,00\n- Cake de Naranja: $11,00\n")
}

func TestEmoji(t *testing.T) {
	require.Equal(t, "🍯", catalog.Emoji("Miel de Abeja"))
	require.Equal(t, "📦", catalog.Emoji("Velas"))
}
