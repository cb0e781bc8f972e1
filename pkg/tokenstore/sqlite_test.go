package tokenstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSQLite(t *testing.T, path, name string) *SQLite {
	t.Helper()
	store, err := NewSQLite(context.Background(), path, name, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLite_FetchMissing(t *testing.T) {
	store := newTestSQLite(t, filepath.Join(t.TempDir(), "tokens.db"), "")

	_, err := store.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_SaveOverwrites(t *testing.T) {
	store := newTestSQLite(t, filepath.Join(t.TempDir(), "tokens.db"), "prod")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []byte(`{"accessToken":"one"}`)))
	require.NoError(t, store.Save(ctx, []byte(`{"accessToken":"two"}`)))

	data, err := store.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"accessToken":"two"}`, string(data))
}

func TestSQLite_NamesAreIndependent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.db")
	ctx := context.Background()

	prod := newTestSQLite(t, path, "prod")
	require.NoError(t, prod.Save(ctx, []byte(`{"accessToken":"prod"}`)))

	sandbox := newTestSQLite(t, path, "sandbox")
	_, err := sandbox.Fetch(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, sandbox.Save(ctx, []byte(`{"accessToken":"sandbox"}`)))

	data, err := prod.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"accessToken":"prod"}`, string(data))
}
