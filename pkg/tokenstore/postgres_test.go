package tokenstore

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/natserract/sfrest/pkg/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Set SF_TEST_DATABASE_URL to run against a real database.
func TestPostgres_SaveAndFetch(t *testing.T) {
	dsn := os.Getenv("SF_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("SF_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	cfg := postgres.NewConfig()
	cfg.URL = dsn

	db, err := postgres.New(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	name := "test-" + uuid.NewString()
	store, err := NewPostgres(ctx, db, name, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = db.Pool().Exec(context.Background(), `DELETE FROM access_tokens WHERE name = $1`, name)
	})

	_, err = store.Fetch(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, []byte(`{"accessToken":"one"}`)))
	require.NoError(t, store.Save(ctx, []byte(`{"accessToken":"two"}`)))

	data, err := store.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"accessToken":"two"}`, string(data))
}
