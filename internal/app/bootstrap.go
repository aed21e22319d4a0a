// Package app wires configuration into infrastructure for the binaries.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/medilens/backend/config"
	"github.com/medilens/backend/internal/domain"
	"github.com/medilens/backend/internal/infrastructure/cache"
	"github.com/medilens/backend/internal/infrastructure/cart"
	"github.com/medilens/backend/internal/infrastructure/catalog"
	"github.com/medilens/backend/internal/infrastructure/imageprep"
	"github.com/medilens/backend/internal/infrastructure/ocr"
	"github.com/medilens/backend/internal/infrastructure/patterns"
)

// NewLogger returns a development logger outside production
func NewLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// Patterns loads the configured pattern file or falls back to the built-in table
func Patterns(cfg *config.Config) (*patterns.Catalog, error) {
	if cfg.Patterns.File == "" {
		return patterns.Default(), nil
	}
	return patterns.LoadFile(cfg.Patterns.File)
}

// Extractor returns the OCR engine, or one that always fails when OCR is disabled
func Extractor(cfg *config.Config, logger *zap.Logger) domain.TextExtractor {
	if !cfg.OCR.Enabled {
		return ocr.Unavailable{}
	}

	prep := imageprep.DefaultOptions()
	if cfg.OCR.MinHeight > 0 {
		prep.MinHeight = cfg.OCR.MinHeight
	}

	return ocr.NewTesseractExtractor(ocr.Config{
		Language:    cfg.OCR.Language,
		Whitelist:   cfg.OCR.Whitelist,
		PageSegMode: cfg.OCR.PageSegMode,
		Timeout:     cfg.OCR.Timeout,
		Preprocess:  prep,
	}, logger)
}

// Infrastructure holds the long-lived resources built from configuration
type Infrastructure struct {
	Catalog   domain.ProductCatalog
	CartStore domain.CartStore
	DB        *sqlx.DB

	closers []func() error
}

// Close releases database and cache connections
func (i *Infrastructure) Close() error {
	var firstErr error
	for n := len(i.closers) - 1; n >= 0; n-- {
		if err := i.closers[n](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Build opens the product catalog, its cache and the cart store
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Infrastructure, error) {
	infra := &Infrastructure{}

	seed, err := seedProducts(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Catalog.Type == "sql" || cfg.Cart.Store == "sql" {
		db, err := sqlx.ConnectContext(ctx, cfg.Catalog.SQLDriver, cfg.Catalog.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect %s: %w", cfg.Catalog.SQLDriver, err)
		}
		if cfg.Catalog.SQLDriver == "sqlite" {
			db.SetMaxOpenConns(1)
		}
		infra.DB = db
		infra.closers = append(infra.closers, db.Close)
	}

	var inner domain.ProductCatalog
	switch cfg.Catalog.Type {
	case "sql":
		sqlCatalog := catalog.NewSQLCatalog(infra.DB, cfg.Catalog.SQLDriver)
		if err := sqlCatalog.EnsureSchema(ctx); err != nil {
			infra.Close()
			return nil, err
		}
		if err := sqlCatalog.Seed(ctx, seed); err != nil {
			infra.Close()
			return nil, err
		}
		inner = sqlCatalog
	case "http":
		inner = catalog.NewHTTPCatalog(cfg.Catalog.BaseURL, cfg.Catalog.RateLimit, logger)
	default:
		inner = catalog.NewMemoryCatalog(seed)
	}

	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL, "medilens:")
		if err != nil {
			infra.Close()
			return nil, err
		}
		infra.closers = append(infra.closers, redisCache.Close)
		infra.Catalog = catalog.NewCachedCatalog(inner, redisCache, cfg.Cache.TTL, logger)
	case "memory":
		memoryCache := cache.NewMemoryCache()
		infra.closers = append(infra.closers, memoryCache.Close)
		infra.Catalog = catalog.NewCachedCatalog(inner, memoryCache, cfg.Cache.TTL, logger)
	default:
		infra.Catalog = inner
	}

	if cfg.Cart.Store == "sql" {
		store := cart.NewSQLStore(infra.DB, catalog.FlavorFor(cfg.Catalog.SQLDriver))
		if err := store.EnsureSchema(ctx); err != nil {
			infra.Close()
			return nil, err
		}
		infra.CartStore = store
	} else {
		infra.CartStore = cart.NewMemoryStore()
	}

	return infra, nil
}

func seedProducts(cfg *config.Config) ([]domain.Product, error) {
	if cfg.Catalog.SeedFile == "" {
		return catalog.DemoProducts(), nil
	}
	return catalog.LoadSeedFile(cfg.Catalog.SeedFile)
}
