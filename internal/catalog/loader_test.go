package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/catalog"
)

const yamlCatalog = `
- category: Miel de Abeja
  products:
    - name: Frasco de 500 ml
      price: 6.5
      image: miel.jpg
- category: Cruces de Tagua
  products:
    - name: Cruz de Tagua
      variants:
        - name: 12cm blanco
          price: 5
          size: 12cm
          color: blanco
`

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "catalog.yaml")
		require.NoError(t, os.WriteFile(path, []byte(yamlCatalog), 0o600))

		cats, err := catalog.LoadFile(path)
		require.NoError(t, err)
		require.Len(t, cats, 2)
		require.Equal(t, "6.5", cats[0].Products[0].Price.String())
		require.Equal(t, "miel.jpg", cats[0].Products[0].ImageRef)
		require.Equal(t, "Miel de Abeja", cats[0].Products[0].Category)
		require.Equal(t, "12cm", cats[1].Products[0].Variants[0].Size)
	})

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "products.json")
		body := `[{"category":"Cake","products":[{"name":"Cake de Chocolate","price":12.005}]}]`
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

		cats, err := catalog.LoadFile(path)
		require.NoError(t, err)
		require.Equal(t, "12.01", cats[0].Products[0].Price.StringFixed(2))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := catalog.LoadFile(filepath.Join(dir, "nope.yaml"))
		require.Error(t, err)
	})
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"negative price": `[{"category":"Cake","products":[{"name":"a","price":-1}]}]`,
		"nameless":       `[{"category":"","products":[]}]`,
		"product name":   `[{"category":"Cake","products":[{"price":1}]}]`,
		"malformed":      `[{`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := catalog.ParseJSON([]byte(body))
			require.Error(t, err)
		})
	}
}
