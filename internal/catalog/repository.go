package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// DBPool matches the methods from *pgxpool.Pool that the repository uses.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository loads the catalog snapshot from Postgres.
type Repository struct {
	pool DBPool
}

func NewRepository(pool DBPool) *Repository {
	return &Repository{pool: pool}
}

// LoadCatalog reads categories, products and variants in menu order. Products
// that reference an unknown category are skipped.
func (r *Repository) LoadCatalog(ctx context.Context) ([]Category, error) {
	categories, byID, err := r.loadCategories(ctx)
	if err != nil {
		return nil, err
	}

	type productRef struct {
		category int
		product  int
	}
	products := make(map[int64]productRef)

	rows, err := r.pool.Query(ctx, `
		SELECT id, category_id, name, price::text, COALESCE(image_ref, '')
		FROM catalog_products
		ORDER BY position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	for rows.Next() {
		var (
			id, categoryID int64
			name, price    string
			imageRef       string
		)
		if err := rows.Scan(&id, &categoryID, &name, &price, &imageRef); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan product: %w", err)
		}
		ci, ok := byID[categoryID]
		if !ok {
			continue
		}
		d, err := decimal.NewFromString(price)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("product %q price: %w", name, err)
		}
		c := &categories[ci]
		c.Products = append(c.Products, Product{Name: name, Price: d, Category: c.Name, ImageRef: imageRef})
		products[id] = productRef{category: ci, product: len(c.Products) - 1}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	rows, err = r.pool.Query(ctx, `
		SELECT product_id, name, price::text, COALESCE(size, ''), COALESCE(color, '')
		FROM catalog_variants
		ORDER BY position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query variants: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			productID                     int64
			name, price, size, colorValue string
		)
		if err := rows.Scan(&productID, &name, &price, &size, &colorValue); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		ref, ok := products[productID]
		if !ok {
			continue
		}
		d, err := decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("variant %q price: %w", name, err)
		}
		p := &categories[ref.category].Products[ref.product]
		p.Variants = append(p.Variants, Variant{Name: name, Price: d, Size: size, Color: colorValue})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variants: %w", err)
	}

	return categories, nil
}

func (r *Repository) loadCategories(ctx context.Context) ([]Category, map[int64]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM catalog_categories ORDER BY position, id`)
	if err != nil {
		return nil, nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	byID := make(map[int64]int)
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, nil, fmt.Errorf("scan category: %w", err)
		}
		byID[id] = len(categories)
		categories = append(categories, Category{Name: name})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, byID, nil
}
