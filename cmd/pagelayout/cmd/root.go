// Package cmd implements the pagelayout CLI commands.
//
// Subcommands register themselves with the root command from init, one file
// per command (render, serve, init, version).
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-drift/pagelayout/cmd/pagelayout/internal/config"
	pageerrors "github.com/go-drift/pagelayout/pkg/errors"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Global flags.
var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "pagelayout",
	Short: "pagelayout - article page layouts rendered in Go",
	Long: `pagelayout renders the article page shell: header, article head,
body content on the responsive grid, ad slots and footer.

Configuration is read from pagelayout.yaml in the project root, or from
--config or $PAGELAYOUT_CONFIG. A .env file in the project root is loaded
first.

Use "pagelayout <command> --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(verbose)
		root, err := config.FindProjectRoot()
		if err != nil {
			return err
		}
		return config.LoadEnv(root)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: pagelayout.yaml in the project root)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging with stack traces")
}

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return rootCmd.Execute()
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	pageerrors.SetHandler(&pageerrors.LogHandler{
		Logger:  logger,
		Verbose: verbose,
		Quiet:   pageerrors.TestMode(),
	})
}

// resolve loads the configuration for the current project.
func resolve() (*config.Resolved, error) {
	root, err := config.FindProjectRoot()
	if err != nil {
		return nil, err
	}
	return config.Resolve(root, configPath)
}
