package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/natserract/sfrest/pkg/postgres"
	sfrest "github.com/natserract/sfrest/pkg/salesforce/rest"
)

// Token store backends.
const (
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config is the process configuration of the sfrest command.
type Config struct {
	Salesforce *sfrest.Config

	TokenStore string
	// TokenPath is the directory of the file store or the SQLite database file.
	TokenPath string
	TokenName string

	LogLevel      string
	HTTPRetries   int
	HTTPTimeout   time.Duration
	QueryMaxPages int

	Database *postgres.Config
}

func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	sfCfg, err := sfrest.LoadConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Salesforce: sfCfg,
		TokenStore: getEnv("SF_TOKEN_STORE", StoreFile),
		TokenPath:  os.Getenv("SF_TOKEN_PATH"),
		TokenName:  getEnv("SF_TOKEN_NAME", "default"),
		LogLevel:   getEnv("SF_LOG_LEVEL", "info"),
		Database:   postgres.NewConfig(),
	}

	if cfg.HTTPRetries, err = getInt("SF_HTTP_RETRIES", 0); err != nil {
		return nil, err
	}
	if cfg.QueryMaxPages, err = getInt("SF_QUERY_MAX_PAGES", 0); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getDuration("SF_HTTP_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}

	if cfg.TokenPath == "" {
		switch cfg.TokenStore {
		case StoreSQLite:
			cfg.TokenPath = "sfrest.db"
		default:
			cfg.TokenPath = "."
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.TokenStore {
	case StoreFile, StoreSQLite, StorePostgres:
	default:
		return fmt.Errorf("SF_TOKEN_STORE must be one of file, sqlite, postgres, got %q", c.TokenStore)
	}
	if c.HTTPRetries < 0 {
		return fmt.Errorf("SF_HTTP_RETRIES must not be negative")
	}
	if c.QueryMaxPages < 0 {
		return fmt.Errorf("SF_QUERY_MAX_PAGES must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}
