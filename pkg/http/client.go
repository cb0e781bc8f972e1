package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// Client executes HTTP requests on behalf of the Salesforce clients.
// A non-nil error from Do means no response was obtained; every status code,
// including 4xx and 5xx, is handed back to the caller as a Response.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
	maxRetries int
}

// ClientOptions tunes the transport. The zero value means no retries and a
// 30 second timeout.
type ClientOptions struct {
	Timeout    time.Duration
	MaxRetries int
}

type RequestOptions struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    interface{}
	Context context.Context
	// MaxRetries overrides the client default when greater than zero.
	MaxRetries      int
	MaxElapsed      time.Duration
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

func NewClient() *Client {
	logger, _ := zap.NewProduction()
	return NewClientWithLogger(logger)
}

// NewClientWithLogger creates a new HTTP client with a custom logger
func NewClientWithLogger(logger *zap.Logger) *Client {
	return NewClientWithOptions(logger, ClientOptions{})
}

// NewClientWithOptions creates a new HTTP client with a custom logger, timeout and retry budget
func NewClientWithOptions(logger *zap.Logger, opts ClientOptions) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		logger:     logger,
		maxRetries: opts.MaxRetries,
	}
}

func (c *Client) Do(opts RequestOptions) (*Response, error) {
	if opts.MaxElapsed == 0 {
		opts.MaxElapsed = 2 * time.Minute
	}
	if opts.InitialInterval == 0 {
		opts.InitialInterval = 100 * time.Millisecond
	}
	if opts.MaxInterval == 0 {
		opts.MaxInterval = 10 * time.Second
	}
	maxRetries := c.maxRetries
	if opts.MaxRetries > 0 {
		maxRetries = opts.MaxRetries
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = opts.InitialInterval
	expBackoff.MaxInterval = opts.MaxInterval
	expBackoff.Reset()

	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	logger := c.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("method", opts.Method),
		zap.String("url", opts.URL))

	// serverErr keeps the 5xx response of the latest attempt so it can be
	// returned once the retry budget is spent.
	var serverErr *Response

	operation := func() (*Response, error) {
		serverErr = nil

		req, err := c.buildRequest(ctx, opts)
		if err != nil {
			logger.Error("Failed to build request", zap.Error(err))
			return nil, backoff.Permanent(err)
		}

		logger.Debug("Making HTTP request")

		httpResp, err := c.httpClient.Do(req)
		if err != nil {
			logger.Warn("HTTP request failed", zap.Error(err))
			return nil, err
		}
		defer httpResp.Body.Close()

		body, err := io.ReadAll(httpResp.Body)
		if err != nil {
			logger.Error("Failed to read response body", zap.Error(err))
			return nil, backoff.Permanent(fmt.Errorf("failed to read response body: %w", err))
		}

		resp := &Response{
			StatusCode: httpResp.StatusCode,
			Headers:    httpResp.Header,
			Body:       body,
		}

		if httpResp.StatusCode >= 500 && maxRetries > 0 {
			logger.Warn("Server error", zap.Int("status_code", httpResp.StatusCode))
			serverErr = resp
			return nil, fmt.Errorf("server error: %d", httpResp.StatusCode)
		}

		return resp, nil
	}

	retryOpts := []backoff.RetryOption{
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxElapsedTime(opts.MaxElapsed),
		backoff.WithMaxTries(uint(maxRetries) + 1),
	}

	resp, err := backoff.Retry(ctx, operation, retryOpts...)
	if err != nil {
		if serverErr != nil {
			return serverErr, nil
		}
		logger.Error("HTTP request failed without a response", zap.Error(err))
		return nil, err
	}

	logger.Debug("HTTP request completed", zap.Int("status_code", resp.StatusCode))

	return resp, nil
}

func (c *Client) buildRequest(ctx context.Context, opts RequestOptions) (*http.Request, error) {
	contentType := opts.Headers["Content-Type"]
	if contentType == "" {
		contentType = opts.Headers["content-type"]
	}

	var bodyReader io.Reader
	if opts.Body != nil {
		switch v := opts.Body.(type) {
		case []byte:
			bodyReader = bytes.NewReader(v)
		case url.Values:
			bodyReader = strings.NewReader(v.Encode())
			if contentType == "" {
				contentType = "application/x-www-form-urlencoded"
			}
		default:
			if strings.HasPrefix(strings.ToLower(contentType), "application/x-www-form-urlencoded") {
				form, err := toForm(opts.Body)
				if err != nil {
					return nil, err
				}
				bodyReader = strings.NewReader(form.Encode())
			} else {
				bodyJSON, err := json.Marshal(opts.Body)
				if err != nil {
					return nil, fmt.Errorf("failed to marshal request body: %w", err)
				}
				bodyReader = bytes.NewReader(bodyJSON)
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, opts.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if opts.Body != nil {
		if contentType == "" {
			contentType = "application/json"
		}
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	return req, nil
}

func toForm(body interface{}) (url.Values, error) {
	form := url.Values{}
	switch v := body.(type) {
	case map[string]string:
		for k, val := range v {
			form.Set(k, val)
		}
	case map[string]interface{}:
		for k, val := range v {
			if val == nil {
				continue
			}
			form.Set(k, fmt.Sprint(val))
		}
	default:
		// Structs and other JSON-marshalable values go through a map first.
		bodyJSON, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		var m map[string]interface{}
		if err := json.Unmarshal(bodyJSON, &m); err != nil {
			return nil, fmt.Errorf("failed to unmarshal request body: %w", err)
		}
		for k, val := range m {
			if val == nil {
				continue
			}
			form.Set(k, fmt.Sprint(val))
		}
	}
	return form, nil
}
