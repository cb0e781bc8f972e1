package sfrest

import (
	"encoding/json"
	"strings"
	"time"
)

// TokenGenerator builds access tokens from OAuth responses and from their
// persisted form.
type TokenGenerator interface {
	FromOAuthResponse(resp TokenResponse) *AccessToken
	FromPersisted(text []byte) (*AccessToken, error)
}

// DefaultTokenGenerator is the TokenGenerator used by the client unless one
// is supplied with WithTokenGenerator.
type DefaultTokenGenerator struct{}

var _ TokenGenerator = DefaultTokenGenerator{}

// FromOAuthResponse never fails. IssuedAt is issued_at when it is an integer
// number of seconds and the current time otherwise. An empty scope yields a
// single empty scope entry.
func (DefaultTokenGenerator) FromOAuthResponse(resp TokenResponse) *AccessToken {
	issuedAt := timeNow().UTC()
	if sec, ok := resp.IssuedAt.Seconds(); ok {
		issuedAt = time.Unix(sec, 0).UTC()
	}

	return &AccessToken{
		ID:           resp.ID,
		IssuedAt:     issuedAt,
		ExpiresAt:    issuedAt.Add(tokenLifetime),
		Scopes:       strings.Split(resp.Scope, " "),
		RefreshToken: resp.RefreshToken,
		Signature:    resp.Signature,
		AccessToken:  resp.AccessToken,
		APIBaseURL:   resp.InstanceURL,
	}
}

// FromPersisted parses a token previously produced by AccessToken.MarshalJSON.
func (DefaultTokenGenerator) FromPersisted(text []byte) (*AccessToken, error) {
	var token AccessToken
	if err := json.Unmarshal(text, &token); err != nil {
		return nil, &ParseError{Err: err}
	}
	return &token, nil
}
