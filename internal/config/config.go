package config

import (
	"fmt"
	"os"
	"strconv"
)

// DatabaseConfig PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN builds the lib/pq connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// FilestoreConfig document store service settings (URLs are opaque to us).
type FilestoreConfig struct {
	BaseURL string
	APIKey  string
}

// Config calsoft-assets (HTTP API) configuration.
type Config struct {
	HTTP struct {
		Addr string
	}
	Database DatabaseConfig
	Redis    struct {
		Addr     string
		Password string
		DB       int
	}
	Log struct {
		Level  string
		Format string
	}
	Filestore FilestoreConfig
	Identity  struct {
		// DefaultCompanyKey is the fallback namespace used when a
		// customer's company key cannot be resolved.
		DefaultCompanyKey int
		RetryAttempts     int
	}
	Status struct {
		// CacheTTL is the status projection cache lifetime in seconds.
		CacheTTL int
	}
	Audit struct {
		Stream string
	}
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "calsoft")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "25"), 25)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	cfg.Filestore.BaseURL = getEnv("FILESTORE_BASE_URL", "http://localhost:9000")
	cfg.Filestore.APIKey = getEnv("FILESTORE_API_KEY", "")

	cfg.Identity.DefaultCompanyKey = parseInt(getEnv("IDENTITY_DEFAULT_COMPANY_KEY", "1"), 1)
	cfg.Identity.RetryAttempts = parseInt(getEnv("IDENTITY_RETRY_ATTEMPTS", "3"), 3)

	cfg.Status.CacheTTL = parseInt(getEnv("STATUS_CACHE_TTL", "30"), 30)

	cfg.Audit.Stream = getEnv("AUDIT_STREAM", "calsoft:lineage:events")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
