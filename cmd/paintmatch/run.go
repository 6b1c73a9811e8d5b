package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/paintmatch"
	"github.com/gogpu/paintmatch/internal/config"
	"github.com/gogpu/paintmatch/internal/history"
)

var (
	flagAttempts  string
	flagMaxRounds int
	flagNoHistory bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Play a session from a session file",
	Long: `Load the reference pool from the session file and score one attempt per
round. The attempt for a reference named "Ocean Wave" is read from
<attempts>/ocean_wave_color.png and <attempts>/ocean_wave_height.png.

The session stops when the pool is completed, when an attempt is missing,
when a score stays below the threshold, or after --rounds rounds.

Examples:
  paintmatch run --config session.yaml --attempts attempts/
  paintmatch run --attempts attempts/ --rounds 3 --no-history`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		if flagDBPath != "" {
			cfg.History.Path = flagDBPath
		}
		if flagNoHistory {
			cfg.History.Enabled = false
		}
		return runSession(cmd.Context(), cmd.OutOrStdout(), cfg, flagAttempts, flagMaxRounds)
	},
}

func init() {
	runCmd.Flags().StringVar(&flagAttempts, "attempts", ".", "Directory with attempt images")
	runCmd.Flags().IntVar(&flagMaxRounds, "rounds", 0, "Maximum rounds (0 = pool size)")
	runCmd.Flags().BoolVar(&flagNoHistory, "no-history", false, "Do not record rounds")
}

// attemptFiles returns the attempt image paths for a reference.
func attemptFiles(dir, reference string) (colorPath, heightPath string) {
	slug := strings.ToLower(strings.Join(strings.Fields(reference), "_"))
	return filepath.Join(dir, slug+"_color.png"), filepath.Join(dir, slug+"_height.png")
}

func runSession(ctx context.Context, w io.Writer, cfg config.Session, attemptsDir string, maxRounds int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	refs, err := cfg.LoadReferences()
	if err != nil {
		return err
	}

	kernel, release, err := selectKernel(cfg.Kernel, cfg.Workers)
	if err != nil {
		return err
	}
	defer release()

	sink := terminalSink{w: w}
	engine := paintmatch.NewEngine(
		paintmatch.WithKernel(kernel),
		paintmatch.WithSink(sink),
		paintmatch.WithThreshold(cfg.Threshold),
		paintmatch.WithDifficulty(cfg.Difficulty),
	)
	defer engine.Close()

	ctrlOpts := []paintmatch.ControllerOption{
		paintmatch.WithMode(cfg.ParsedMode()),
		paintmatch.WithControllerSink(sink),
	}
	if cfg.Seed != 0 {
		ctrlOpts = append(ctrlOpts, paintmatch.WithSeed(cfg.Seed))
	}
	ctrl := paintmatch.NewController(refs,
		paintmatch.NewColorSurface(cfg.Resolution), paintmatch.NewHeightSurface(cfg.Resolution),
		ctrlOpts...)

	sessOpts := []paintmatch.SessionOption{paintmatch.WithAutoAdvance(cfg.AutoAdvance)}
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		sessOpts = append(sessOpts, paintmatch.WithRecorder(store))
	}
	session := paintmatch.NewSession(engine, ctrl, sessOpts...)

	if err := session.Start(); err != nil {
		return err
	}
	if maxRounds <= 0 {
		maxRounds = ctrl.Len()
	}

	for played := 0; played < maxRounds && !session.Completed(); played++ {
		ref, err := ctrl.Current()
		if err != nil {
			return err
		}
		colorPath, heightPath := attemptFiles(attemptsDir, ref.Name)
		attempt, err := paintmatch.LoadReference(colorPath, heightPath, cfg.Resolution)
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(w, "%s\n", dimStyle.Render("no attempt for "+ref.Name+", stopping"))
			return nil
		}
		if err != nil {
			return fmt.Errorf("load attempt for %s: %w", ref.Name, err)
		}
		ctrl.PlayerColor().CopyFrom(attempt.Color)
		ctrl.PlayerHeight().CopyFrom(attempt.Height)

		ev, err := session.Evaluate(ctx)
		if err != nil {
			return err
		}
		if !ev.AdvanceWorthy {
			fmt.Fprintln(w, dimStyle.Render("below threshold, stopping"))
			return nil
		}
		if !cfg.AutoAdvance {
			if err := session.Next(); err != nil {
				return err
			}
		}
	}
	return nil
}
