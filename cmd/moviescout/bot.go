package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/moviescout/internal/config"
	"github.com/vadimtrunov/moviescout/internal/core"
	"github.com/vadimtrunov/moviescout/internal/frontend/telegram"
)

// newBotCmd returns the "bot" subcommand for running the Telegram bot.
func newBotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Start the Telegram bot",
		Long:  "Start the MovieScout Telegram bot. Every chat gets its own search session.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runBot()
		},
	}
}

// runBot starts the Telegram bot and blocks until interrupted.
func runBot() error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if cfg.Telegram == nil {
		return errors.New(
			"telegram configuration is required: set telegram.bot_token in config or MOVIESCOUT_TELEGRAM_BOT_TOKEN env var",
		)
	}

	logger := config.SetupLogger(cfg.App.LogLevel, os.Stderr)

	var frontend core.Frontend
	frontend, err = telegram.New(
		cfg.Telegram.BotToken,
		cfg.Telegram.AllowedUserIDs,
		newMovieService(cfg, logger),
		logger,
	)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	defer func() {
		if err := frontend.Stop(context.Background()); err != nil {
			logger.Warn("frontend stop failed", slog.String("frontend", frontend.Name()), slog.Any("error", err))
		}
	}()

	logger.Info("frontend starting",
		slog.String("frontend", frontend.Name()),
		slog.Int("allowed_users", len(cfg.Telegram.AllowedUserIDs)),
	)
	return frontend.Start(ctx)
}
