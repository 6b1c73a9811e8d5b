package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gogpu/paintmatch/internal/config"
	"github.com/gogpu/paintmatch/internal/history"
)

var (
	flagLimit int
	flagBest  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded rounds",
	Long: `Display the most recent recorded rounds, or the best score per reference.

Examples:
  paintmatch history
  paintmatch history --limit 50
  paintmatch history --best`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := flagDBPath
		if path == "" {
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			path = cfg.History.Path
		}
		store, err := history.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()
		if flagBest {
			return printBest(cmd.OutOrStdout(), store)
		}
		return printRecent(cmd.OutOrStdout(), store, flagLimit)
	},
}

func init() {
	historyCmd.Flags().IntVar(&flagLimit, "limit", 20, "Number of rounds to show")
	historyCmd.Flags().BoolVar(&flagBest, "best", false, "Show the best score per reference")
}

func printRecent(w io.Writer, store *history.Store, limit int) error {
	entries, err := store.Recent(limit)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, titleStyle.Render("Recent rounds"))
	fmt.Fprintln(w)
	if len(entries) == 0 {
		fmt.Fprintln(w, "No rounds recorded yet.")
		return nil
	}

	// Print header
	fmt.Fprintf(w, "  %-16s  %-5s  %-20s  %-6s  %s\n", "Date", "Round", "Reference", "Score", "Advanced")
	fmt.Fprintf(w, "  %-16s  %-5s  %-20s  %-6s  %s\n", "----", "-----", "---------", "-----", "--------")
	for _, e := range entries {
		advanced := "no"
		if e.Advanced {
			advanced = "yes"
		}
		fmt.Fprintf(w, "  %-16s  %-5d  %-20s  %-6s  %s\n",
			e.CreatedAt.Format("2006-01-02 15:04"), e.Round, e.Reference, formatScore(e.Score), advanced)
	}
	return nil
}

func printBest(w io.Writer, store *history.Store) error {
	best, err := store.BestScores()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, titleStyle.Render("Best scores"))
	fmt.Fprintln(w)
	if len(best) == 0 {
		fmt.Fprintln(w, "No rounds recorded yet.")
		return nil
	}
	fmt.Fprintf(w, "  %-20s  %-6s  %s\n", "Reference", "Best", "Attempts")
	fmt.Fprintf(w, "  %-20s  %-6s  %s\n", "---------", "----", "--------")
	for _, b := range best {
		fmt.Fprintf(w, "  %-20s  %-6s  %d\n", b.Reference, formatScore(b.Score), b.Attempts)
	}
	return nil
}
