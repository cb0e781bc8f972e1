package sfrest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	httpclient "github.com/natserract/sfrest/pkg/http"
	"go.uber.org/zap"
)

const (
	grantPassword          = "password"
	grantAuthorizationCode = "authorization_code"
	grantRefreshToken      = "refresh_token"
)

func (s *Salesforce) oauthURL(endpoint string) string {
	return httpclient.JoinURL(s.config.LoginURL, "services/oauth2", endpoint)
}

// Login authenticates with the username-password flow and stores the
// resulting token. Use it only when the credentials are known up front.
func (s *Salesforce) Login(ctx context.Context, username, password string) (*AccessToken, error) {
	resp, err := s.requestToken(ctx, grantPassword, url.Values{
		"username": {username},
		"password": {password},
	})
	if err != nil {
		return nil, err
	}

	token := s.tokenGenerator.FromOAuthResponse(resp)
	s.SetAccessToken(token)

	s.logger.Info("Logged in to Salesforce",
		zap.String("api_base_url", token.APIBaseURL),
		zap.Time("expires_at", token.ExpiresAt))

	return token, nil
}

// LoginURL returns the authorize URL to redirect a user to when setting up a
// token with the authorization-code flow. state is sent only when non-empty;
// reauthorize forces the login and consent screens.
func (s *Salesforce) LoginURL(redirectURL, state string, reauthorize bool) string {
	params := [][2]string{
		{"client_id", s.config.ClientID},
		{"redirect_uri", redirectURL},
		{"response_type", "code"},
		{"grant_type", grantAuthorizationCode},
	}
	if state != "" {
		params = append(params, [2]string{"state", state})
	}
	if reauthorize {
		params = append(params, [2]string{"prompt", "login consent"})
	}

	query := make([]string, 0, len(params))
	for _, p := range params {
		query = append(query, httpclient.EscapeRFC3986(p[0])+"="+httpclient.EscapeRFC3986(p[1]))
	}

	return s.oauthURL("authorize") + "?" + strings.Join(query, "&")
}

// AuthorizeConfirm exchanges an authorization code for a token and stores it.
func (s *Salesforce) AuthorizeConfirm(ctx context.Context, code, redirectURL string) (*AccessToken, error) {
	resp, err := s.requestToken(ctx, grantAuthorizationCode, url.Values{
		"code":         {code},
		"redirect_uri": {redirectURL},
	})
	if err != nil {
		return nil, err
	}

	token := s.tokenGenerator.FromOAuthResponse(resp)
	s.SetAccessToken(token)

	s.logger.Info("Authorization code exchanged",
		zap.String("api_base_url", token.APIBaseURL),
		zap.Time("expires_at", token.ExpiresAt))

	return token, nil
}

// RefreshToken renews the current token with its refresh token. The token is
// updated in place. Calling it before a token is set is a programming error
// and returns ErrNoAccessToken.
func (s *Salesforce) RefreshToken(ctx context.Context) (*AccessToken, error) {
	token, ok := s.state.current()
	if !ok {
		return nil, fmt.Errorf("cannot refresh: %w", ErrNoAccessToken)
	}

	resp, err := s.requestToken(ctx, grantRefreshToken, url.Values{
		"refresh_token": {token.RefreshToken},
	})
	if err != nil {
		return nil, err
	}

	s.SetAccessToken(token.Refresh(resp))

	s.logger.Info("Access token refreshed", zap.Time("expires_at", token.ExpiresAt))

	return token, nil
}

// EnsureFreshToken refreshes the current token when it has expired.
func (s *Salesforce) EnsureFreshToken(ctx context.Context) (*AccessToken, error) {
	token, ok := s.state.current()
	if !ok {
		return nil, fmt.Errorf("cannot refresh: %w", ErrNoAccessToken)
	}
	if !token.NeedsRefresh() {
		s.logger.Debug("Using current access token", zap.Time("expires_at", token.ExpiresAt))
		return token, nil
	}
	s.logger.Info("Access token expired, refreshing", zap.Time("expired_at", token.ExpiresAt))
	return s.RefreshToken(ctx)
}

// requestToken posts a grant to the token endpoint. Client credentials are
// always included.
func (s *Salesforce) requestToken(ctx context.Context, grantType string, form url.Values) (TokenResponse, error) {
	endpoint := s.oauthURL("token")
	s.logger.Info("Authenticating with Salesforce",
		zap.String("url", endpoint),
		zap.String("grant_type", grantType))

	form.Set("grant_type", grantType)
	form.Set("client_id", s.config.ClientID)
	form.Set("client_secret", s.config.ClientSecret)

	var resp TokenResponse
	err := s.makeRequest(ctx, httpclient.RequestOptions{
		Method: http.MethodPost,
		URL:    endpoint,
		Headers: map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
		},
		Body: form,
	}, &resp)
	if err != nil {
		return TokenResponse{}, err
	}

	return resp, nil
}
