package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/charmbracelet/lipgloss"

	"github.com/vadimtrunov/moviescout/internal/config"
	"github.com/vadimtrunov/moviescout/internal/core"
	"github.com/vadimtrunov/moviescout/internal/httpclient"
	"github.com/vadimtrunov/moviescout/internal/metadata/omdb"
)

// Lipgloss styles used across commands.
var (
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	styleInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // blue
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray

	styleTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true) // white bold
	styleSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true) // cyan bold
	styleLabel    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Width(10)

	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("5")).
			MarginBottom(1)
)

// loadConfig loads and validates the configuration file.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

// interactiveLogger sets up logging for commands that own the terminal. Logs go to
// app.log_file or nowhere. The returned closer must be called on exit.
func interactiveLogger(cfg *config.Config) (*slog.Logger, func() error, error) {
	w, closeFn, err := config.OpenLogOutput(cfg.App.LogFile)
	if err != nil {
		return nil, nil, err
	}
	return config.SetupLogger(cfg.App.LogLevel, w), closeFn, nil
}

// newMovieService creates the OMDb client from configuration.
func newMovieService(cfg *config.Config, logger *slog.Logger) core.MovieService {
	logger.Debug("OMDb client initialized", slog.String("url", sanitizeURL(cfg.OMDb.BaseURL)))
	return omdb.New(cfg.OMDb.APIKey, logger,
		omdb.WithBaseURL(cfg.OMDb.BaseURL),
		omdb.WithHTTPConfig(httpclient.Config{Timeout: cfg.OMDb.Timeout}),
	)
}

// userError turns a failed request into the error a one-shot command exits with: the
// static message, plus the service's reason when OMDb rejected the query.
func userError(msg string, err error) error {
	if remote, ok := core.RemoteMessage(err); ok {
		return fmt.Errorf("%s (%s)", msg, remote)
	}
	return errors.New(msg)
}

// sanitizeURL strips credentials, query params, and fragment from a URL for safe logging.
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || u.Scheme == "" {
		return "<redacted>"
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
