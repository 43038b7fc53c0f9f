package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/vadimtrunov/moviescout/internal/core"
	"github.com/vadimtrunov/moviescout/internal/httpclient"
)

const (
	// DefaultBaseURL is the public OMDb endpoint.
	DefaultBaseURL = "https://www.omdbapi.com/"
	maxBodyBytes   = 1 << 20
)

// Client is an OMDb API client. It makes a single attempt per call and keeps no state
// between calls.
type Client struct {
	baseURL string
	apiKey  string
	http    *httpclient.Client
	logger  *slog.Logger
}

// compile-time check.
var _ core.MovieService = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the OMDb endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPConfig overrides the HTTP timeout configuration.
func WithHTTPConfig(cfg httpclient.Config) Option {
	return func(c *Client) {
		c.http = httpclient.New(cfg, c.logger)
	}
}

// New creates a new OMDb client. An empty apiKey is sent as-is; OMDb rejects it on first use.
func New(apiKey string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		logger:  logger,
	}
	c.http = httpclient.New(httpclient.DefaultConfig(), logger)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewForTest creates an OMDb client with a fixed key that talks to baseURL.
func NewForTest(baseURL string, logger *slog.Logger) *Client {
	return New("test-key", logger, WithBaseURL(baseURL))
}

// SearchMovies searches titles by name and returns the requested page.
func (c *Client) SearchMovies(ctx context.Context, query string, page int) (*core.SearchPage, error) {
	params := url.Values{
		"s":    {query},
		"page": {strconv.Itoa(page)},
	}

	var resp searchResponse
	if err := c.get(ctx, "search movies", params, &resp); err != nil {
		c.logger.Warn("omdb search failed",
			slog.String("query", query),
			slog.Int("page", page),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	total, err := strconv.Atoi(strings.TrimSpace(resp.TotalResults))
	if err != nil {
		return nil, &core.TransportError{
			Op:  "search movies",
			Err: fmt.Errorf("invalid totalResults %q: %w", resp.TotalResults, err),
		}
	}

	results := make([]core.MovieSummary, 0, len(resp.Search))
	for _, r := range resp.Search {
		results = append(results, core.MovieSummary{
			ID:    strings.TrimSpace(r.IMDbID),
			Title: strings.TrimSpace(r.Title),
			Year:  clean(r.Year),
			Type:  clean(r.Type),
		})
	}

	c.logger.Debug("omdb search",
		slog.String("query", query),
		slog.Int("page", page),
		slog.Int("results", len(results)),
		slog.Int("total", total),
	)
	return &core.SearchPage{Results: results, TotalResults: total}, nil
}

// GetMovie retrieves details for a title by IMDb ID.
func (c *Client) GetMovie(ctx context.Context, id string) (*core.MovieDetail, error) {
	var resp detailResponse
	if err := c.get(ctx, "get movie", url.Values{"i": {id}}, &resp); err != nil {
		c.logger.Warn("omdb details failed",
			slog.String("imdb_id", id),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	detailID := strings.TrimSpace(resp.IMDbID)
	if detailID == "" {
		detailID = id
	}
	return &core.MovieDetail{
		ID:       detailID,
		Title:    clean(resp.Title),
		Year:     clean(resp.Year),
		Genre:    clean(resp.Genre),
		Director: clean(resp.Director),
		Plot:     clean(resp.Plot),
		Poster:   clean(resp.Poster),
	}, nil
}

// get performs an authenticated GET against the OMDb endpoint and decodes the JSON payload
// into result. A "Response":"False" body becomes a RemoteQueryError regardless of status;
// everything else that prevents decoding becomes a TransportError.
func (c *Client) get(ctx context.Context, op string, params url.Values, result any) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return &core.TransportError{Op: op, Err: fmt.Errorf("invalid URL: %w", err)}
	}

	q := u.Query()
	q.Set("apikey", c.apiKey)
	for k, vs := range params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return &core.TransportError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &core.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &core.TransportError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if resp.StatusCode != http.StatusOK {
			return &core.TransportError{Op: op, Err: fmt.Errorf("omdb API error %d", resp.StatusCode)}
		}
		return &core.TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}

	switch {
	case strings.EqualFold(env.Response, "False"):
		return &core.RemoteQueryError{Message: env.Error}
	case resp.StatusCode != http.StatusOK:
		return &core.TransportError{Op: op, Err: fmt.Errorf("omdb API error %d", resp.StatusCode)}
	case !strings.EqualFold(env.Response, "True"):
		return &core.TransportError{Op: op, Err: fmt.Errorf("unexpected Response field %q", env.Response)}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return &core.TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
