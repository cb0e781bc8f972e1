package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USER", "sf")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "tokens")
	t.Setenv("DB_SSLMODE", "require")

	cfg := NewConfig()
	assert.Equal(t, 6543, cfg.Port)
	assert.Equal(t, "host=db.internal port=6543 user=sf password=pw dbname=tokens sslmode=require", cfg.DSN())
}

func TestConfig_DSNPrefersURL(t *testing.T) {
	cfg := &Config{URL: "postgres://u:p@localhost:5432/x", Host: "ignored"}
	assert.Equal(t, "postgres://u:p@localhost:5432/x", cfg.DSN())
}

func TestNewConfig_BadPortFallsBack(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-port")
	assert.Equal(t, 5432, NewConfig().Port)
}

func TestApplyPoolLimits(t *testing.T) {
	poolCfg, err := pgxpool.ParseConfig("postgres://u:p@localhost:5432/x")
	require.NoError(t, err)
	defaultMax := poolCfg.MaxConns

	applyPoolLimits(poolCfg, &Config{MaxConnLifetime: time.Minute, MaxConnIdleTime: 2 * time.Minute})
	assert.Equal(t, defaultMax, poolCfg.MaxConns)
	assert.Equal(t, time.Minute, poolCfg.MaxConnLifetime)
	assert.Equal(t, 2*time.Minute, poolCfg.MaxConnIdleTime)

	applyPoolLimits(poolCfg, &Config{MaxConns: 4, MinConns: 1})
	assert.Equal(t, int32(4), poolCfg.MaxConns)
	assert.Equal(t, int32(1), poolCfg.MinConns)
}

func TestDB_CloseWithoutPool(t *testing.T) {
	var db *DB
	assert.NotPanics(t, db.Close)
	assert.NotPanics(t, (&DB{}).Close)
}
