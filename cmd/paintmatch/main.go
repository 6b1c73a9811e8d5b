// paintmatch scores paintings against reference images.
//
// Usage:
//
//	paintmatch score              - Score one attempt against one reference
//	paintmatch run                - Play a session from a session file
//	paintmatch history            - Show recorded rounds
//	paintmatch config             - Print the effective session configuration
//
// Global flags:
//
//	--config <path> - Session file (default: ~/.paintmatch/session.yaml, ./configs/session.yaml)
//	--db <path>     - Round history database (default: from the session file)
//	--verbose       - Debug logging
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/gogpu/paintmatch"
)

var (
	// Global flags
	flagConfig  string
	flagDBPath  string
	flagVerbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "paintmatch",
	Short: "Score paintings against reference images",
	Long: `paintmatch compares a painted color and height canvas against a
reference and reports a similarity score from 0 to 100.

Available commands:
  score    - Score one attempt against one reference
  run      - Play a session from a session file
  history  - View recorded rounds
  config   - Print the effective session configuration

Examples:
  paintmatch score --player-color me_color.png --player-height me_height.png \
      --target-color ref_color.png --target-height ref_height.png
  paintmatch run --config session.yaml --attempts attempts/
  paintmatch history --limit 10`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		setupLogging(os.Stderr, flagVerbose)
	},
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to session file")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to round history database (overrides the session file)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
}

// setupLogging routes library logs through a charmbracelet/log handler.
func setupLogging(w *os.File, verbose bool) {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "paintmatch",
		Level:           level,
	})
	paintmatch.SetLogger(slog.New(logger))
}
