// Package catalogtest provides a small catalog shared by tests of packages
// built on top of the catalog index.
package catalogtest

import (
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/shopbot-service-go/internal/catalog"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Categories returns a fresh copy of the fixture catalog.
func Categories() []catalog.Category {
	return []catalog.Category{
		{
			Name: "Miel de Abeja",
			Products: []catalog.Product{
				{Name: "Frasco de 500 ml", Price: price("6.50"), ImageRef: "miel.jpg"},
				{Name: "Frasco de 250 ml", Price: price("3.50")},
			},
		},
		{
			Name: "Cake",
			Products: []catalog.Product{
				{Name: "Cake de Chocolate", Price: price("12.00"), ImageRef: "cake.jpg"},
				{Name: "Cake de Naranja", Price: price("11.00")},
			},
		},
		{
			Name: "Cruces de Tagua",
			Products: []catalog.Product{
				{
					Name: "Cruz de Tagua",
					Variants: []catalog.Variant{
						{Name: "12cm blanco", Price: price("5.00"), Size: "12cm", Color: "blanco"},
						{Name: "12cm negro", Price: price("5.00"), Size: "12cm", Color: "negro"},
						{Name: "20cm blanco", Price: price("8.00"), Size: "20cm", Color: "blanco"},
					},
				},
			},
		},
		{
			Name: "Propóleo",
			Products: []catalog.Product{
				{Name: "Propóleo en gotas", Price: price("4.25")},
			},
		},
	}
}

func Index() *catalog.Index {
	return catalog.NewIndex(Categories())
}
