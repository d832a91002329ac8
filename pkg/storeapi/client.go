package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ikkim/restaurant-ops-backend/internal/wizard"
	"github.com/ikkim/restaurant-ops-backend/pkg/logger"
)

// IdempotencyHeader carries the wizard session's idempotency key.
const IdempotencyHeader = "Idempotency-Key"

type tokenKey struct{}

// WithBearerToken makes the client forward token instead of the configured one.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// Client calls the store registration endpoint of a remote restaurant-ops server.
// It implements wizard.Gateway.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new store api client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// CreateStore posts the wizard payload to POST {BaseURL}/stores. A response
// envelope with success=false is returned as a result, not as an error.
func (c *Client) CreateStore(ctx context.Context, req wizard.SubmissionRequest) (wizard.SubmissionResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return wizard.SubmissionResult{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := c.config.BaseURL + "/stores"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return wizard.SubmissionResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.IdempotencyKey != "" {
		httpReq.Header.Set(IdempotencyHeader, req.IdempotencyKey)
	}
	if token := c.token(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	logger.Debug("Calling store api", map[string]interface{}{
		"url":             url,
		"idempotency_key": req.IdempotencyKey,
	})

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return wizard.SubmissionResult{}, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return wizard.SubmissionResult{}, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return wizard.SubmissionResult{}, ErrUnauthorized
	}

	var result wizard.SubmissionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return wizard.SubmissionResult{}, fmt.Errorf("%w: status %d", ErrUnexpectedResponse, resp.StatusCode)
	}
	if resp.StatusCode >= 300 && result.Success {
		return wizard.SubmissionResult{}, fmt.Errorf("%w: status %d with success body", ErrUnexpectedResponse, resp.StatusCode)
	}

	if !result.Success {
		logger.Warn("Store api rejected registration", map[string]interface{}{
			"status_code": resp.StatusCode,
			"error":       result.Error,
		})
	}
	return result, nil
}

func (c *Client) token(ctx context.Context) string {
	if t, ok := ctx.Value(tokenKey{}).(string); ok && t != "" {
		return t
	}
	return c.config.Token
}
