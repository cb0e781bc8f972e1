// Package sfrest is a client for the Salesforce platform REST API.
//
// It covers the OAuth2 flows a server-side integration needs (username and
// password, authorization code, refresh token), keeps the resulting access
// token and its expiry, and exposes record operations against sobjects:
// fetch by id, SOQL queries with automatic pagination, create, update and
// delete.
//
// A Salesforce value is meant to be used by one caller at a time. Nothing is
// retried or refreshed in the background; callers check AccessToken.NeedsRefresh
// or use EnsureFreshToken before a batch of calls.
package sfrest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	httpclient "github.com/natserract/sfrest/pkg/http"
	"go.uber.org/zap"
)

// Transport sends a single HTTP request. It returns an error only when no
// response could be obtained; error statuses come back as a Response.
type Transport interface {
	Do(opts httpclient.RequestOptions) (*httpclient.Response, error)
}

// Salesforce is the main client for interacting with the Salesforce REST API
type Salesforce struct {
	config         *Config
	httpClient     Transport
	tokenGenerator TokenGenerator
	state          tokenState
	baseURL        string
	maxQueryPages  int
	logger         *zap.Logger
}

// Option customises a Salesforce client.
type Option func(*Salesforce)

// WithTransport replaces the default HTTP transport.
func WithTransport(t Transport) Option {
	return func(s *Salesforce) {
		s.httpClient = t
	}
}

// WithTokenGenerator replaces DefaultTokenGenerator.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(s *Salesforce) {
		s.tokenGenerator = g
	}
}

// WithMaxQueryPages caps the number of pages Search follows. Zero means no cap.
func WithMaxQueryPages(n int) Option {
	return func(s *Salesforce) {
		s.maxQueryPages = n
	}
}

// tokenState is either unauthenticated or authenticated.
type tokenState interface {
	current() (*AccessToken, bool)
}

type unauthenticated struct{}

func (unauthenticated) current() (*AccessToken, bool) { return nil, false }

type authenticated struct {
	token *AccessToken
}

func (a authenticated) current() (*AccessToken, bool) { return a.token, true }

// NewSalesforce creates a new Salesforce client with default production logger
func NewSalesforce(cfg *Config, opts ...Option) *Salesforce {
	logger, _ := zap.NewProduction()
	return NewSalesforceWithLogger(cfg, logger, opts...)
}

// NewSalesforceWithLogger creates a new Salesforce client with a custom logger
func NewSalesforceWithLogger(cfg *Config, logger *zap.Logger, opts ...Option) *Salesforce {
	s := &Salesforce{
		config:         cfg,
		tokenGenerator: DefaultTokenGenerator{},
		state:          unauthenticated{},
		logger:         logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.httpClient == nil {
		s.httpClient = httpclient.NewClientWithLogger(logger)
	}
	return s
}

// IsConfigured reports whether the client configuration is complete.
func (s *Salesforce) IsConfigured() bool {
	return s.config.IsFullyConfigured()
}

// AccessToken returns the current token, if any.
func (s *Salesforce) AccessToken() (*AccessToken, bool) {
	return s.state.current()
}

// SetAccessToken installs token as the current token and derives the API base
// URL from it. A nil token returns the client to the unauthenticated state.
func (s *Salesforce) SetAccessToken(token *AccessToken) {
	if token == nil {
		s.state = unauthenticated{}
		s.baseURL = ""
		return
	}
	s.state = authenticated{token: token}
	s.baseURL = strings.TrimRight(token.APIBaseURL, "/")
}

func (s *Salesforce) authHeader() (string, error) {
	token, ok := s.state.current()
	if !ok {
		return "", &AuthenticationError{Message: "Access token not set", Err: ErrNoAccessToken}
	}
	return "Bearer " + token.AccessToken, nil
}

// dataURL resolves path against {apiBaseUrl}/services/data/{version}.
func (s *Salesforce) dataURL(path string) string {
	return httpclient.JoinURL(s.baseURL, "services/data", s.config.APIVersion, path)
}

// authorizedRequest issues an authenticated call and decodes the response
// into out when out is non-nil.
func (s *Salesforce) authorizedRequest(ctx context.Context, method, endpoint string, body interface{}, out interface{}) error {
	authHeader, err := s.authHeader()
	if err != nil {
		return err
	}

	return s.makeRequest(ctx, httpclient.RequestOptions{
		Method: method,
		URL:    endpoint,
		Headers: map[string]string{
			"Authorization": authHeader,
		},
		Body: body,
	}, out)
}

// makeRequest hands a request to the transport and maps failures onto
// AuthenticationError and RequestError. A 204 or an empty body leaves out
// untouched.
func (s *Salesforce) makeRequest(ctx context.Context, opts httpclient.RequestOptions, out interface{}) error {
	opts.Context = ctx

	resp, err := s.httpClient.Do(opts)
	if err != nil {
		s.logger.Error("Salesforce request failed without a response",
			zap.String("method", opts.Method),
			zap.String("url", opts.URL),
			zap.Error(err))
		return newTransportError(err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		authErr := newAuthenticationError(resp.Body)
		s.logger.Warn("Salesforce rejected credentials",
			zap.String("method", opts.Method),
			zap.String("url", opts.URL),
			zap.String("error_code", authErr.Code),
			zap.String("message", authErr.Message))
		return authErr
	}

	if resp.StatusCode >= 400 {
		reqErr := newResponseError(resp.StatusCode, resp.Body)
		s.logger.Error("Salesforce request failed",
			zap.String("method", opts.Method),
			zap.String("url", opts.URL),
			zap.Int("status_code", resp.StatusCode),
			zap.String("error_code", reqErr.Code),
			zap.String("message", reqErr.Message))
		return reqErr
	}

	if resp.StatusCode == http.StatusNoContent || out == nil || len(resp.Body) == 0 {
		return nil
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		s.logger.Error("Failed to parse Salesforce response",
			zap.String("url", opts.URL),
			zap.Error(err))
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}
