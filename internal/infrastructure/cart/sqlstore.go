package cart

import (
	"context"
	"fmt"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"

	"github.com/medilens/backend/internal/domain"
)

const cartLinesTable = "cart_lines"

const createCartLinesTable = `CREATE TABLE IF NOT EXISTS cart_lines (
	session_id TEXT NOT NULL,
	position   INTEGER NOT NULL,
	name       TEXT NOT NULL,
	price      DOUBLE PRECISION NOT NULL DEFAULT 0,
	image      TEXT NOT NULL DEFAULT '',
	quantity   INTEGER NOT NULL,
	PRIMARY KEY (session_id, name)
)`

// SQLStore persists carts in a cart_lines table
type SQLStore struct {
	db     *sqlx.DB
	flavor sqlbuilder.Flavor
}

// NewSQLStore creates a cart store over db using the given SQL flavor
func NewSQLStore(db *sqlx.DB, flavor sqlbuilder.Flavor) *SQLStore {
	return &SQLStore{db: db, flavor: flavor}
}

// EnsureSchema creates the cart_lines table if it does not exist
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createCartLinesTable); err != nil {
		return fmt.Errorf("create cart_lines table: %w", err)
	}
	return nil
}

// Load returns the stored lines of sessionID in insertion order
func (s *SQLStore) Load(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("name", "price", "image", "quantity").
		From(cartLinesTable).
		Where(sb.Equal("session_id", sessionID)).
		OrderBy("position")

	query, args := sb.BuildWithFlavor(s.flavor)

	lines := []domain.CartLine{}
	if err := s.db.SelectContext(ctx, &lines, query, args...); err != nil {
		return nil, fmt.Errorf("load cart lines: %w", err)
	}
	return lines, nil
}

// Save replaces the stored lines of sessionID in a single transaction
func (s *SQLStore) Save(ctx context.Context, sessionID string, lines []domain.CartLine) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cart tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	del := sqlbuilder.NewDeleteBuilder()
	del.DeleteFrom(cartLinesTable).Where(del.Equal("session_id", sessionID))
	query, args := del.BuildWithFlavor(s.flavor)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear cart lines: %w", err)
	}

	if len(lines) > 0 {
		ib := sqlbuilder.NewInsertBuilder()
		ib.InsertInto(cartLinesTable).Cols("session_id", "position", "name", "price", "image", "quantity")
		for i, line := range lines {
			ib.Values(sessionID, i, line.Name, line.Price, line.Image, line.Quantity)
		}
		query, args = ib.BuildWithFlavor(s.flavor)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert cart lines: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cart tx: %w", err)
	}
	return nil
}
