package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/nao1215/linetable/internal/config"
	"github.com/nao1215/linetable/internal/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Run with a line id it crawls that
// line; the subcommands manage configuration and history.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linetable <line-id>",
		Short: "Extract every train of a railway line with its stops",
		Long: `linetable reads the timetable pages of one railway line and writes every
train running on it, with its stops and times, to <line-id>.json.

The line page lists one timetable per station and direction. Every timetable
is read, each train is kept once even when it departs from several stations,
and finally the page of each train is read for its stops.

Every downloaded page is stored in ./timetable_cache.json. A page found in the
cache is never requested again, so an interrupted run can simply be restarted.

Examples:
  # Crawl line 1234 and write 1234.json
  linetable 1234

  # Also print a Markdown summary
  linetable -m 1234

  # Keep the result in the history database and export metrics
  linetable --history --metrics-file /var/lib/node_exporter/linetable.prom 1234`,
		Version:       getVersion(),
		Args:          cobra.ExactArgs(1),
		RunE:          runCrawlCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	// Configuration
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .linetable in current or home directory)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"HTTP timeout for each request")
	cmd.Flags().String("cache-file", config.DefaultCacheFile,
		"Response cache file")
	cmd.Flags().StringP("output-dir", "o", config.DefaultOutputDir,
		"Directory receiving <line-id>.json")

	// Outputs
	cmd.Flags().BoolP("markdown", "m", false,
		"Print a Markdown summary of the crawl")
	cmd.Flags().Bool("pretty", false,
		"Indent the JSON document")
	cmd.Flags().String("metrics-file", "",
		"Write crawl metrics in Prometheus text format to this file")
	cmd.Flags().Bool("history", false,
		"Store the crawl in the history database")

	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the sanitizing logger for a command.
func setupLogger(cmd *cobra.Command, w io.Writer) *slog.Logger {
	verbose := getVerboseFlag(cmd)

	jsonLog, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		jsonLog, _ = cmd.Root().PersistentFlags().GetBool("log-json") //nolint:errcheck // defined on root
	}

	if jsonLog {
		return log.NewSecureJSONLogger(w, verbose)
	}
	return log.NewSecureLogger(w, verbose)
}
