package sfrest

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// DefaultAPIVersion is used when SF_API_VERSION is not set.
const DefaultAPIVersion = "v37.0"

// Config holds the connected-app settings needed to talk to a Salesforce org.
type Config struct {
	LoginURL     string
	ClientID     string
	ClientSecret string
	APIVersion   string
}

// LoadConfig reads the client configuration from the environment, loading a
// .env file first when one is present.
func LoadConfig() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		LoginURL:     os.Getenv("SF_LOGIN_URL"),
		ClientID:     os.Getenv("SF_CLIENT_ID"),
		ClientSecret: os.Getenv("SF_CLIENT_SECRET"),
		APIVersion:   os.Getenv("SF_API_VERSION"),
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.LoginURL == "" {
		return fmt.Errorf("SF_LOGIN_URL is required")
	}
	if c.ClientID == "" {
		return fmt.Errorf("SF_CLIENT_ID is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("SF_CLIENT_SECRET is required")
	}
	if c.APIVersion == "" {
		return fmt.Errorf("SF_API_VERSION is required")
	}
	return nil
}

// IsFullyConfigured reports whether none of the four settings is empty.
func (c *Config) IsFullyConfigured() bool {
	return c != nil && c.Validate() == nil
}
