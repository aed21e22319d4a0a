package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	OCR       OCRConfig       `mapstructure:"ocr"`
	Patterns  PatternsConfig  `mapstructure:"patterns"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Cart      CartConfig      `mapstructure:"cart"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxUploadBytes int64    `mapstructure:"max_upload_bytes"`
}

// OCRConfig holds OCR engine configuration, passed through to Tesseract
type OCRConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Language    string        `mapstructure:"language"`
	Whitelist   string        `mapstructure:"whitelist"`
	PageSegMode int           `mapstructure:"page_seg_mode"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MinHeight   int           `mapstructure:"min_height"`
}

// PatternsConfig holds medicine pattern catalog configuration
type PatternsConfig struct {
	File string `mapstructure:"file"` // empty uses the built-in table
}

// CatalogConfig holds product catalog configuration
type CatalogConfig struct {
	Type      string  `mapstructure:"type"` // "memory", "sql" or "http"
	SeedFile  string  `mapstructure:"seed_file"`
	SQLDriver string  `mapstructure:"sql_driver"` // "postgres" or "sqlite"
	DSN       string  `mapstructure:"dsn"`
	BaseURL   string  `mapstructure:"base_url"`
	RateLimit float64 `mapstructure:"rate_limit"` // requests per second, http catalog only
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory", "redis" or "none"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// CartConfig holds cart persistence configuration
type CartConfig struct {
	Store string `mapstructure:"store"` // "memory" or "sql"
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // analyze requests per minute per client IP
}

const defaultWhitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789 .-/()"

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/medilens/")

	// MEDILENS_CATALOG_BASE_URL -> catalog.base_url
	v.SetEnvPrefix("MEDILENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.max_upload_bytes", 10<<20)

	// OCR defaults
	v.SetDefault("ocr.enabled", true)
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.whitelist", defaultWhitelist)
	v.SetDefault("ocr.page_seg_mode", 6) // uniform block of text
	v.SetDefault("ocr.timeout", "30s")
	v.SetDefault("ocr.min_height", 1000)

	v.SetDefault("patterns.file", "")

	// Catalog defaults
	v.SetDefault("catalog.type", "memory")
	v.SetDefault("catalog.seed_file", "")
	v.SetDefault("catalog.sql_driver", "postgres")
	v.SetDefault("catalog.dsn", "")
	v.SetDefault("catalog.base_url", "")
	v.SetDefault("catalog.rate_limit", 5)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "10m")

	v.SetDefault("cart.store", "memory")

	v.SetDefault("ratelimit.per_ip", 30)
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Catalog.Type {
	case "memory":
	case "sql":
		if config.Catalog.DSN == "" {
			return fmt.Errorf("catalog DSN is required when catalog type is 'sql' (set MEDILENS_CATALOG_DSN)")
		}
	case "http":
		if config.Catalog.BaseURL == "" {
			return fmt.Errorf("catalog base URL is required when catalog type is 'http' (set MEDILENS_CATALOG_BASE_URL)")
		}
	default:
		return fmt.Errorf("catalog type must be 'memory', 'sql' or 'http', got: %s", config.Catalog.Type)
	}

	if config.Catalog.SQLDriver != "postgres" && config.Catalog.SQLDriver != "sqlite" {
		return fmt.Errorf("catalog sql driver must be 'postgres' or 'sqlite', got: %s", config.Catalog.SQLDriver)
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" && config.Cache.Type != "none" {
		return fmt.Errorf("cache type must be 'memory', 'redis' or 'none', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("redis URL is required when cache type is 'redis'")
	}

	switch config.Cart.Store {
	case "memory":
	case "sql":
		if config.Catalog.DSN == "" {
			return fmt.Errorf("catalog DSN is required when cart store is 'sql'")
		}
	default:
		return fmt.Errorf("cart store must be 'memory' or 'sql', got: %s", config.Cart.Store)
	}

	if config.OCR.PageSegMode < 0 || config.OCR.PageSegMode > 13 {
		return fmt.Errorf("ocr page segmentation mode must be between 0 and 13, got: %d", config.OCR.PageSegMode)
	}

	if config.RateLimit.PerIP <= 0 {
		return fmt.Errorf("ratelimit per_ip must be positive, got: %d", config.RateLimit.PerIP)
	}

	return nil
}
