package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/kbukum/carmarket/logger"
)

const defaultTimeout = 30 * time.Second

// Config configures the API client.
type Config struct {
	// BaseURL is prepended to every request path.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout bounds each attempt. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Token is sent as a bearer token when set.
	Token string `yaml:"-" mapstructure:"-"`

	// Retry applies to idempotent methods only. The zero value disables it.
	Retry RetryConfig `yaml:"-" mapstructure:"-"`

	// Breaker enables a circuit breaker around every attempt when set.
	Breaker *BreakerConfig `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("client: base_url is required")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("client: base_url must be an http(s) URL (got: %s)", c.BaseURL)
	}
	return nil
}

// Client calls the carmarket API and returns error responses as *APIError.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	config     Config
	log        *logger.Logger
}

// New creates a client. A nil log uses the global logger.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	log = log.WithComponent("client")
	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		config:     cfg,
		log:        log,
	}
	if cfg.Breaker != nil {
		c.breaker = newBreaker(*cfg.Breaker, log)
	}
	return c, nil
}

// Do sends in as the JSON body (when non-nil) and decodes a 2xx JSON body
// into out (when non-nil). Failures are logged with their classification
// and returned unchanged so callers can use IsAuth, IsNetwork and Message.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("client: encode body: %w", err)
		}
	}

	call := func() error { return c.guarded(ctx, method, path, payload, out) }

	var err error
	if idempotent(method) && c.config.Retry.MaxAttempts > 1 {
		err = Retry(ctx, c.config.Retry, call)
	} else {
		err = call()
	}
	if err != nil {
		c.report(ctx, method, path, err)
	}
	return err
}

// guarded runs one attempt through the circuit breaker when configured.
func (c *Client) guarded(ctx context.Context, method, path string, payload []byte, out any) error {
	if c.breaker == nil {
		return c.once(ctx, method, path, payload, out)
	}
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.once(ctx, method, path, payload, out)
	})
	return err
}

func (c *Client) once(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}
	if id := logger.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-Id", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr, derr := Decode(resp)
		if derr != nil {
			return derr
		}
		return apiErr
	}

	defer resp.Body.Close()
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

// report logs a failed call. Network failures and 5xx log at error, other
// API errors at warn.
func (c *Client) report(ctx context.Context, method, path string, err error) {
	fields := logger.Fields(
		logger.FieldMethod, method,
		logger.FieldPath, path,
		logger.FieldError, err.Error(),
		"network", IsNetwork(err),
		"circuit_open", IsCircuitOpen(err),
	)
	apiErr, ok := AsAPIError(err)
	if ok {
		fields[logger.FieldStatus] = apiErr.StatusCode
		fields[logger.FieldErrorCode] = string(apiErr.Code())
		fields[logger.FieldErrorID] = apiErr.Envelope.ID
		fields["malformed"] = apiErr.Malformed
	}

	log := c.log.WithContext(ctx)
	if ok && apiErr.StatusCode < 500 {
		log.Warn("API call failed", fields)
		return
	}
	log.Error("API call failed", fields)
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}
