package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/moviescout/internal/core"
	"github.com/vadimtrunov/moviescout/internal/search"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show [imdb-id]",
		Short:   "Show details for one movie",
		Long:    "Fetch and print the details of a single movie by its IMDb identifier.",
		Example: `  moviescout show tt0372784`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runShow(args[0])
		},
	}
}

func runShow(id string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger, closeLog, err := interactiveLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	detail, err := newMovieService(cfg, logger).GetMovie(ctx, id)
	if err != nil {
		return userError(search.MsgDetailFailed, err)
	}

	printDetail(os.Stdout, detail)
	return nil
}

// printDetail writes a movie's fields; empty values print as N/A.
func printDetail(w io.Writer, d *core.MovieDetail) {
	fmt.Fprintln(w, styleHeader.Render(d.Title))
	for _, row := range [][2]string{
		{"ID", d.ID},
		{"Year", d.Year},
		{"Genre", d.Genre},
		{"Director", d.Director},
		{"Plot", d.Plot},
		{"Poster", d.Poster},
	} {
		v := row[1]
		if v == "" {
			v = search.MsgNotAvailable
		}
		fmt.Fprintf(w, "%s%s\n", styleLabel.Render(row[0]), v)
	}
}
