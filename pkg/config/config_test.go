package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SF_LOGIN_URL", "https://login.example.com")
	t.Setenv("SF_CLIENT_ID", "client_id")
	t.Setenv("SF_CLIENT_SECRET", "client_secret")
	t.Setenv("SF_API_VERSION", "")
	for _, key := range []string{
		"SF_TOKEN_STORE", "SF_TOKEN_PATH", "SF_TOKEN_NAME", "SF_LOG_LEVEL",
		"SF_HTTP_RETRIES", "SF_HTTP_TIMEOUT", "SF_QUERY_MAX_PAGES",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "v37.0", cfg.Salesforce.APIVersion)
	assert.Equal(t, StoreFile, cfg.TokenStore)
	assert.Equal(t, ".", cfg.TokenPath)
	assert.Equal(t, "default", cfg.TokenName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 0, cfg.HTTPRetries)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 0, cfg.QueryMaxPages)
	assert.NotNil(t, cfg.Database)
}

func TestLoad_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SF_API_VERSION", "v58.0")
	t.Setenv("SF_TOKEN_STORE", "sqlite")
	t.Setenv("SF_TOKEN_NAME", "sandbox")
	t.Setenv("SF_HTTP_RETRIES", "3")
	t.Setenv("SF_HTTP_TIMEOUT", "5s")
	t.Setenv("SF_QUERY_MAX_PAGES", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "v58.0", cfg.Salesforce.APIVersion)
	assert.Equal(t, StoreSQLite, cfg.TokenStore)
	assert.Equal(t, "sfrest.db", cfg.TokenPath)
	assert.Equal(t, "sandbox", cfg.TokenName)
	assert.Equal(t, 3, cfg.HTTPRetries)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 10, cfg.QueryMaxPages)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"missing login url", "SF_LOGIN_URL", "", "SF_LOGIN_URL is required"},
		{"missing client secret", "SF_CLIENT_SECRET", "", "SF_CLIENT_SECRET is required"},
		{"unknown store", "SF_TOKEN_STORE", "redis", "SF_TOKEN_STORE must be one of"},
		{"bad retries", "SF_HTTP_RETRIES", "many", "SF_HTTP_RETRIES must be an integer"},
		{"negative pages", "SF_QUERY_MAX_PAGES", "-1", "SF_QUERY_MAX_PAGES must not be negative"},
		{"bad timeout", "SF_HTTP_TIMEOUT", "soon", "SF_HTTP_TIMEOUT must be a duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
