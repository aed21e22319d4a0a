package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/medilens/backend/internal/domain"
)

// DefaultSearchLimit caps the number of products returned by one search
const DefaultSearchLimit = 8

// MemoryCatalog is a static, in-memory product table
type MemoryCatalog struct {
	products []domain.Product
	byID     map[string]int
	limit    int
}

// seedFile is the on-disk YAML layout of a product seed file
type seedFile struct {
	Products []domain.Product `yaml:"products"`
}

// NewMemoryCatalog creates a catalog over products, preserving their order.
// Products with an empty or duplicate id are skipped.
func NewMemoryCatalog(products []domain.Product) *MemoryCatalog {
	c := &MemoryCatalog{
		byID:  make(map[string]int, len(products)),
		limit: DefaultSearchLimit,
	}
	for _, p := range products {
		if p.ID == "" {
			continue
		}
		if _, dup := c.byID[p.ID]; dup {
			continue
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c
}

// LoadSeedFile reads products from a YAML seed file
func LoadSeedFile(path string) ([]domain.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return file.Products, nil
}

// Search returns up to DefaultSearchLimit products whose name contains query,
// case-insensitively, in table order.
func (c *MemoryCatalog) Search(ctx context.Context, query string) ([]domain.Product, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []domain.Product{}, nil
	}

	results := []domain.Product{}
	for _, p := range c.products {
		if !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		results = append(results, p)
		if len(results) >= c.limit {
			break
		}
	}
	return results, nil
}

// GetByID returns the product with the given id
func (c *MemoryCatalog) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	idx, ok := c.byID[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	p := c.products[idx]
	return &p, nil
}

// Products returns a copy of all products in table order
func (c *MemoryCatalog) Products() []domain.Product {
	return append([]domain.Product{}, c.products...)
}
