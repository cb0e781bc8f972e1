package tokenstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver
)

// SQLite keeps tokens in an access_tokens table, one row per name.
type SQLite struct {
	db     *sql.DB
	name   string
	logger *zap.Logger
}

// NewSQLite opens (creating when needed) the database at path and prepares
// the schema.
func NewSQLite(ctx context.Context, path, name string, logger *zap.Logger) (*SQLite, error) {
	if name == "" {
		name = DefaultName
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Debug("SQLite token store opened", zap.String("path", path), zap.String("name", name))

	return &SQLite{db: db, name: name, logger: logger}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Fetch(ctx context.Context) ([]byte, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM access_tokens WHERE name = ?`, s.name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying access token: %w", err)
	}
	return []byte(payload), nil
}

func (s *SQLite) Save(ctx context.Context, token []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO access_tokens (name, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, s.name, string(token), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving access token: %w", err)
	}
	s.logger.Debug("Access token saved", zap.String("name", s.name))
	return nil
}
