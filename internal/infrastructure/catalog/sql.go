package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"

	"github.com/medilens/backend/internal/domain"
)

const productsTable = "products"

var productColumns = []string{"id", "name", "price", "original_price", "image", "category"}

const createProductsTable = `CREATE TABLE IF NOT EXISTS products (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	price          DOUBLE PRECISION NOT NULL DEFAULT 0,
	original_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	image          TEXT NOT NULL DEFAULT '',
	category       TEXT NOT NULL DEFAULT ''
)`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SQLCatalog is a ProductCatalog backed by a SQL products table
type SQLCatalog struct {
	db     *sqlx.DB
	flavor sqlbuilder.Flavor
	limit  int
}

// NewSQLCatalog creates a catalog over db. driver selects the SQL flavor
// ("postgres" or "sqlite").
func NewSQLCatalog(db *sqlx.DB, driver string) *SQLCatalog {
	return &SQLCatalog{
		db:     db,
		flavor: FlavorFor(driver),
		limit:  DefaultSearchLimit,
	}
}

// FlavorFor maps a database/sql driver name to a go-sqlbuilder flavor
func FlavorFor(driver string) sqlbuilder.Flavor {
	switch driver {
	case "sqlite", "sqlite3":
		return sqlbuilder.SQLite
	default:
		return sqlbuilder.PostgreSQL
	}
}

// EnsureSchema creates the products table if it does not exist
func (c *SQLCatalog) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, createProductsTable); err != nil {
		return fmt.Errorf("create products table: %w", err)
	}
	return nil
}

// Seed inserts products, leaving rows that already exist untouched
func (c *SQLCatalog) Seed(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	ib := sqlbuilder.NewInsertBuilder()
	ib.InsertInto(productsTable).Cols(productColumns...)
	for _, p := range products {
		ib.Values(p.ID, p.Name, p.Price, p.OriginalPrice, p.Image, p.Category)
	}
	ib.SQL("ON CONFLICT (id) DO NOTHING")

	query, args := ib.BuildWithFlavor(c.flavor)
	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	return nil
}

// Search returns up to DefaultSearchLimit products whose name contains query,
// case-insensitively, ordered by name.
func (c *SQLCatalog) Search(ctx context.Context, query string) ([]domain.Product, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []domain.Product{}, nil
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(productColumns...).From(productsTable)
	sb.Where(fmt.Sprintf(`LOWER(name) LIKE %s ESCAPE '\'`, sb.Var("%"+likeEscaper.Replace(q)+"%")))
	sb.OrderBy("name", "id").Limit(c.limit)

	stmt, args := sb.BuildWithFlavor(c.flavor)

	products := []domain.Product{}
	if err := c.db.SelectContext(ctx, &products, stmt, args...); err != nil {
		return nil, fmt.Errorf("%w: search products: %v", domain.ErrCatalogFailure, err)
	}
	return products, nil
}

// GetByID returns the product with the given id
func (c *SQLCatalog) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(productColumns...).From(productsTable).Where(sb.Equal("id", id))

	stmt, args := sb.BuildWithFlavor(c.flavor)

	var product domain.Product
	if err := c.db.GetContext(ctx, &product, stmt, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("%w: get product: %v", domain.ErrCatalogFailure, err)
	}
	return &product, nil
}
