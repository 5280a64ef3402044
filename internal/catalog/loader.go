package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type fileCategory struct {
	Category string        `yaml:"category" json:"category"`
	Products []fileProduct `yaml:"products" json:"products"`
}

type fileProduct struct {
	Name     string        `yaml:"name" json:"name"`
	Price    float64       `yaml:"price" json:"price"`
	Image    string        `yaml:"image" json:"image"`
	Variants []fileVariant `yaml:"variants" json:"variants"`
}

type fileVariant struct {
	Name  string  `yaml:"name" json:"name"`
	Price float64 `yaml:"price" json:"price"`
	Size  string  `yaml:"size" json:"size"`
	Color string  `yaml:"color" json:"color"`
}

// LoadFile reads a catalog document. Files ending in .yaml or .yml are parsed
// as YAML, everything else as JSON.
func LoadFile(path string) ([]Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

func ParseYAML(data []byte) ([]Category, error) {
	var raw []fileCategory
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog yaml: %w", err)
	}
	return convert(raw)
}

func ParseJSON(data []byte) ([]Category, error) {
	var raw []fileCategory
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog json: %w", err)
	}
	return convert(raw)
}

func convert(raw []fileCategory) ([]Category, error) {
	out := make([]Category, 0, len(raw))
	for i, rc := range raw {
		if strings.TrimSpace(rc.Category) == "" {
			return nil, fmt.Errorf("category %d: missing name", i+1)
		}
		c := Category{Name: rc.Category, Products: make([]Product, 0, len(rc.Products))}
		for _, rp := range rc.Products {
			if rp.Name == "" {
				return nil, fmt.Errorf("category %q: product without name", rc.Category)
			}
			price, err := toPrice(rp.Price)
			if err != nil {
				return nil, fmt.Errorf("product %q: %w", rp.Name, err)
			}
			p := Product{Name: rp.Name, Price: price, Category: rc.Category, ImageRef: rp.Image}
			for _, rv := range rp.Variants {
				vp, err := toPrice(rv.Price)
				if err != nil {
					return nil, fmt.Errorf("variant %q of %q: %w", rv.Name, rp.Name, err)
				}
				p.Variants = append(p.Variants, Variant{Name: rv.Name, Price: vp, Size: rv.Size, Color: rv.Color})
			}
			c.Products = append(c.Products, p)
		}
		out = append(out, c)
	}
	return out, nil
}

var errNegativePrice = errors.New("negative price")

func toPrice(f float64) (decimal.Decimal, error) {
	if f < 0 {
		return decimal.Zero, errNegativePrice
	}
	return decimal.NewFromFloat(f).Round(2), nil
}
