package sfrest

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// TokenStore persists the serialized form of an access token.
// Fetch returns an error wrapping a not-found sentinel when nothing is stored.
type TokenStore interface {
	Fetch(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, token []byte) error
}

// RestoreToken loads a token from store and makes it the current token.
func (s *Salesforce) RestoreToken(ctx context.Context, store TokenStore) (*AccessToken, error) {
	text, err := store.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch access token: %w", err)
	}

	token, err := s.tokenGenerator.FromPersisted(text)
	if err != nil {
		return nil, err
	}
	s.SetAccessToken(token)

	s.logger.Debug("Restored access token",
		zap.String("api_base_url", token.APIBaseURL),
		zap.Time("expires_at", token.ExpiresAt))

	return token, nil
}

// SaveToken writes the current token to store.
func (s *Salesforce) SaveToken(ctx context.Context, store TokenStore) error {
	token, ok := s.state.current()
	if !ok {
		return fmt.Errorf("cannot save: %w", ErrNoAccessToken)
	}

	text, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to serialize access token: %w", err)
	}

	if err := store.Save(ctx, text); err != nil {
		return fmt.Errorf("failed to save access token: %w", err)
	}
	return nil
}
