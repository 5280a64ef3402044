package config

import (
	"os"
	"strings"
	"time"
)

const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
	StoreMemory    = "memory"
	StoreRedis     = "redis"
)

type Config struct {
	Port string

	// Catalog and canned responses
	CatalogSource string
	CatalogPath   string
	ResponsesPath string
	ImagesDir     string

	// Invoices
	InvoiceDir    string
	InvoiceMaxAge time.Duration

	// Storage backends
	CartStore      string
	SessionStore   string
	SessionIdleTTL time.Duration
	DBDSN          string
	RunMigrations  bool
	RedisURL       string

	// Events are published only when RabbitURL is set.
	RabbitURL string

	LogLevel string
}

func Load() Config {
	return Config{
		Port: getenv("PORT", "8090"),

		CatalogSource: strings.ToLower(getenv("CATALOG_SOURCE", SourceFile)),
		CatalogPath:   getenv("CATALOG_PATH", "data/catalog.yaml"),
		ResponsesPath: os.Getenv("RESPONSES_PATH"),
		ImagesDir:     getenv("IMAGES_DIR", "data/images"),

		InvoiceDir:    getenv("INVOICE_DIR", "facturas"),
		InvoiceMaxAge: parseDuration(getenv("INVOICE_MAX_AGE", "168h"), 7*24*time.Hour),

		CartStore:      strings.ToLower(getenv("CART_STORE", StoreMemory)),
		SessionStore:   strings.ToLower(getenv("SESSION_STORE", StoreMemory)),
		SessionIdleTTL: parseDuration(os.Getenv("SESSION_IDLE_TTL"), 0),
		DBDSN:          os.Getenv("SHOPBOT_DB_DSN"),
		RunMigrations:  envBool("RUN_MIGRATIONS", true),
		RedisURL:       getenv("REDIS_URL", "redis://localhost:6379/0"),

		RabbitURL: os.Getenv("RABBITMQ_URL"),

		LogLevel: getenv("LOG_LEVEL", "info"),
	}
}

// NeedsDatabase reports whether any backend was configured for Postgres.
func (c Config) NeedsDatabase() bool {
	return c.CatalogSource == SourcePostgres || c.CartStore == SourcePostgres
}

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	switch v {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
