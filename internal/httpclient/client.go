package httpclient

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// userAgent is sent with every request unless the caller set one.
const userAgent = "moviescout/0.1"

// Config holds timeout configuration. Requests are made exactly once.
type Config struct {
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout: 10 * time.Second,
	}
}

// Client wraps http.Client with a fixed timeout and request logging.
type Client struct {
	http   *http.Client
	config Config
	logger *slog.Logger
}

// New creates a new Client with a default http.Client.
func New(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Client{
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logger,
	}
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.http.Timeout
}

// Do executes an HTTP request once. A non-2xx status is not an error here;
// callers decide how to interpret the body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Debug("request failed",
			slog.String("host", req.URL.Host),
			slog.String("elapsed", elapsed.String()),
			slog.String("error", err.Error()),
		)
		if IsTimeout(err) {
			return nil, fmt.Errorf("request timed out after %s: %w", c.http.Timeout, err)
		}
		return nil, err
	}

	c.logger.Debug("request completed",
		slog.String("host", req.URL.Host),
		slog.Int("status", resp.StatusCode),
		slog.String("elapsed", elapsed.String()),
	)
	return resp, nil
}

// IsTimeout reports whether err was caused by a client or network timeout.
func IsTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
