package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// TextExtractor turns an image into recognized text
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// PatternCatalog is the read-only medicine pattern table
type PatternCatalog interface {
	VariationsOf(name string) []string
	Entries() []MedicinePattern
}

// ProductCatalog searches purchasable products
type ProductCatalog interface {
	// Search returns products whose name contains query, case-insensitively,
	// in catalog order.
	Search(ctx context.Context, query string) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
}

// Cart is a shopping cart owned by a single session
type Cart interface {
	AddOrIncrement(name string, price float64, image string, quantity int)
	// Withdraw takes back quantity units from the line named name, dropping
	// the line when nothing is left. Used to undo an addition that could not
	// be persisted.
	Withdraw(name string, quantity int)
	Persist(ctx context.Context) error
	BadgeCount() int
	Lines() []CartLine
}

// CartStore persists cart lines per session
type CartStore interface {
	Load(ctx context.Context, sessionID string) ([]CartLine, error)
	Save(ctx context.Context, sessionID string, lines []CartLine) error
}

// AnalysisObserver receives pipeline outcomes (metrics)
type AnalysisObserver interface {
	ObserveAnalysis(outcome string, candidates int, duration time.Duration)
	ObserveCartAdd(outcome string)
}
