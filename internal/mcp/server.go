package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vadimtrunov/moviescout/internal/core"
	"github.com/vadimtrunov/moviescout/internal/search"
)

// Server wraps an MCP SDK server with MovieScout tool handlers.
type Server struct {
	server *mcpsdk.Server
	svc    core.MovieService
	logger *slog.Logger
}

// NewServer creates an MCP server with the movie tools registered.
func NewServer(svc core.MovieService, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "moviescout",
			Version: version,
		},
		&mcpsdk.ServerOptions{Logger: logger},
	)

	srv := &Server{server: s, svc: svc, logger: logger}
	srv.registerTools()
	return srv
}

// ServeStdio runs the MCP server over stdin/stdout.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.server.Run(ctx, &mcpsdk.StdioTransport{})
}

// MCPServer returns the underlying MCP SDK server (for testing).
func (s *Server) MCPServer() *mcpsdk.Server {
	return s.server
}

func (s *Server) registerTools() {
	s.server.AddTool(searchMoviesTool(), s.handleSearchMovies)
	s.server.AddTool(getMovieDetailsTool(), s.handleGetMovieDetails)
}

func searchMoviesTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name: "search_movies",
		Description: "Search OMDb for movies by title. Returns one page of up to 10 results " +
			"with IMDb IDs, titles, years and types, plus the total result count.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The movie title to search for (at least 3 characters)",
				},
				"page": map[string]any{
					"type":        "integer",
					"description": "Results page, starting at 1",
				},
			},
			"required": []any{"query"},
		},
	}
}

func getMovieDetailsTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "get_movie_details",
		Description: "Get details for a movie by its IMDb ID: year, genre, director, plot and poster URL.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"imdb_id": map[string]any{
					"type":        "string",
					"description": "The IMDb ID of the movie, e.g. tt0372784",
				},
			},
			"required": []any{"imdb_id"},
		},
	}
}

// searchResult is the search_movies payload.
type searchResult struct {
	Query        string              `json:"query"`
	Page         int                 `json:"page"`
	TotalPages   int                 `json:"total_pages"`
	TotalResults int                 `json:"total_results"`
	Results      []core.MovieSummary `json:"results"`
}

func (s *Server) handleSearchMovies(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	query, err := extractStringFromArgs(req.Params.Arguments, "query")
	if err != nil {
		return toolError(err.Error()), nil
	}
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < search.MinQueryLength {
		return toolError(fmt.Sprintf("query must be at least %d characters", search.MinQueryLength)), nil
	}

	page, err := optionalIntFromArgs(req.Params.Arguments, "page", 1)
	if err != nil {
		return toolError(err.Error()), nil
	}
	if page < 1 {
		return toolError("page must be at least 1"), nil
	}

	res, err := s.svc.SearchMovies(ctx, query, page)
	if err != nil {
		return s.failure("search_movies", search.MsgFetchFailed, err), nil
	}

	results := res.Results
	if results == nil {
		results = []core.MovieSummary{}
	}
	return toolJSON(searchResult{
		Query:        query,
		Page:         page,
		TotalPages:   res.TotalPages(),
		TotalResults: res.TotalResults,
		Results:      results,
	})
}

func (s *Server) handleGetMovieDetails(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	id, err := extractStringFromArgs(req.Params.Arguments, "imdb_id")
	if err != nil {
		return toolError(err.Error()), nil
	}

	details, err := s.svc.GetMovie(ctx, strings.TrimSpace(id))
	if err != nil {
		return s.failure("get_movie_details", search.MsgDetailFailed, err), nil
	}
	return toolJSON(details)
}

// failure logs err and returns OMDb's reason for a rejected query, or msg otherwise.
func (s *Server) failure(tool, msg string, err error) *mcpsdk.CallToolResult {
	s.logger.Info("tool call failed",
		slog.String("tool", tool),
		slog.String("error", err.Error()),
	)
	if remote, ok := core.RemoteMessage(err); ok {
		return toolError(remote)
	}
	return toolError(msg)
}

// Helper functions.

// toolJSON marshals v to JSON and returns it as text content.
func toolJSON(v any) (*mcpsdk.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return toolError(fmt.Sprintf("marshal result: %v", err)), nil
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, nil
}

// toolError returns a tool result indicating an error.
func toolError(msg string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: msg}},
		IsError: true,
	}
}

// optionalIntFromArgs extracts an integer argument, returning def when it is absent.
func optionalIntFromArgs(raw json.RawMessage, key string, def int) (int, error) {
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return 0, fmt.Errorf("invalid arguments: %w", err)
	}

	val, ok := args[key]
	if !ok || val == nil {
		return def, nil
	}

	switch v := val.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%s must be a whole number", key)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", key, val)
	}
}

// extractStringFromArgs extracts a string argument from raw JSON arguments.
func extractStringFromArgs(raw json.RawMessage, key string) (string, error) {
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	val, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%s is required", key)
	}

	s, ok := val.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%s must be a non-empty string", key)
	}
	return s, nil
}
