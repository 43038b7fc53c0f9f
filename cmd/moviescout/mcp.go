package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/moviescout/internal/config"
	mcpserver "github.com/vadimtrunov/moviescout/internal/mcp"
)

// newMCPServeCmd returns the "mcp-serve" subcommand. It exposes movie search and
// details as MCP tools over stdin/stdout; logs go to stderr.
func newMCPServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-serve",
		Short: "Start MCP server over stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			logger := config.SetupLogger(cfg.App.LogLevel, os.Stderr)

			srv := mcpserver.NewServer(newMovieService(cfg, logger), version, logger)
			return srv.ServeStdio(cmd.Context())
		},
	}
}
