package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render(err.Error()))
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Running without a subcommand opens the search TUI.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "moviescout [query]",
		Short: "Search OMDb for movies from the terminal",
		Long: "MovieScout searches the OMDb movie directory as you type.\n" +
			"Results load page by page; expand any title for its details.",
		Args: cobra.ArbitraryArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			return runSearch(strings.Join(args, " "))
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/moviescout.yaml", "path to configuration file")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(
		newVersionCmd(),
		newSearchCmd(),
		newQueryCmd(),
		newShowCmd(),
		newBotCmd(),
		newMCPServeCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "MovieScout v%s\n", version)
		},
	}
}
