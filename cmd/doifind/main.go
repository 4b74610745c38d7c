// Package main provides the doifind CLI entry point.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/matsen/doifind/internal/config"
	"github.com/matsen/doifind/internal/logging"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	configPath  string
	logLevel    string
	logFormat   string
	sourceFlag  string
)

// Loaded in PersistentPreRunE.
var (
	cfg    config.Config
	logger *slog.Logger
)

func main() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
		fang.WithErrorHandler(handleError),
	); err != nil {
		os.Exit(exitCode(err))
	}
}

// handleError renders command errors as JSON unless --human is set.
func handleError(w io.Writer, styles fang.Styles, err error) {
	if humanOutput {
		fang.DefaultErrorHandler(w, styles, err)
		return
	}
	_ = outputJSON(w, ErrorResponse{Error: err.Error(), Code: exitCode(err)})
}

var rootCmd = &cobra.Command{
	Use:   "doifind",
	Short: "Find DOIs for free-text publication lists",
	Long: `doifind parses free-text citation lists, searches a bibliographic
source for each entry and accepts a DOI only when title, authors and year
all agree closely enough.

Citations look like:
  2019 - Smith J, Doe A. "Deep learning for X." Nature 12(3)

Lookups are cached in a local SQLite database. All commands output JSON by
default; use --human for readable output.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadRuntime,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/doifind/config.yml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatText, "Log format: text, logfmt, json")
	rootCmd.PersistentFlags().StringVar(&sourceFlag, "source", "", "Search source: crossref or s2 (overrides config)")
	rootCmd.Version = Version
}

// loadRuntime reads .env, the config file and the environment, applies
// global flags and builds the logger. Validation happens when a searcher
// is needed, so parse works without credentials.
func loadRuntime(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return withExitCode(ExitConfigError, err)
	}

	loaded, err := config.Load(configPath)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}
	if sourceFlag != "" {
		loaded.Source = sourceFlag
	}
	cfg = loaded

	l, err := logging.New(logLevel, logFormat, cmd.ErrOrStderr())
	if err != nil {
		return withExitCode(ExitConfigError, fmt.Errorf("%w: %w", config.ErrInvalid, err))
	}
	logger = l
	return nil
}
