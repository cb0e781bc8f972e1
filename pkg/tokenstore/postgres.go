package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/natserract/sfrest/pkg/postgres"
	"go.uber.org/zap"
)

// Postgres keeps tokens in an access_tokens table, one row per name.
type Postgres struct {
	db     *postgres.DB
	name   string
	logger *zap.Logger
}

// NewPostgres prepares the schema on db and returns a store for name.
func NewPostgres(ctx context.Context, db *postgres.DB, name string, logger *zap.Logger) (*Postgres, error) {
	if name == "" {
		name = DefaultName
	}
	if err := db.InitSchema(ctx, schemaSQL); err != nil {
		return nil, err
	}
	return &Postgres{db: db, name: name, logger: logger}, nil
}

func (p *Postgres) Fetch(ctx context.Context) ([]byte, error) {
	var payload string
	err := p.db.Pool().QueryRow(ctx,
		`SELECT payload FROM access_tokens WHERE name = $1`, p.name).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying access token: %w", err)
	}
	return []byte(payload), nil
}

func (p *Postgres) Save(ctx context.Context, token []byte) error {
	_, err := p.db.Pool().Exec(ctx, `
		INSERT INTO access_tokens (name, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`, p.name, string(token), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving access token: %w", err)
	}
	p.logger.Debug("Access token saved", zap.String("name", p.name))
	return nil
}
