package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gogpu/paintmatch"
	"github.com/gogpu/paintmatch/internal/config"
)

var (
	flagPlayerColor  string
	flagPlayerHeight string
	flagTargetColor  string
	flagTargetHeight string
	flagResolution   int
	flagDifficulty   float32
	flagThreshold    int
	flagKernel       string
	flagWorkers      int
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score one attempt against one reference",
	Long: `Resample the four images to the given resolution, run the difference
kernel and print the similarity score.

Examples:
  paintmatch score --player-color me_color.png --player-height me_height.png \
      --target-color ref_color.png --target-height ref_height.png --resolution 128`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runScore(cmd.Context(), cmd.OutOrStdout(), scoreRequest{
			PlayerColor:  flagPlayerColor,
			PlayerHeight: flagPlayerHeight,
			TargetColor:  flagTargetColor,
			TargetHeight: flagTargetHeight,
			Resolution:   flagResolution,
			Difficulty:   flagDifficulty,
			Threshold:    flagThreshold,
			Kernel:       flagKernel,
			Workers:      flagWorkers,
		})
	},
}

func init() {
	f := scoreCmd.Flags()
	f.StringVar(&flagPlayerColor, "player-color", "", "Player color image")
	f.StringVar(&flagPlayerHeight, "player-height", "", "Player height image")
	f.StringVar(&flagTargetColor, "target-color", "", "Reference color image")
	f.StringVar(&flagTargetHeight, "target-height", "", "Reference height image")
	f.IntVar(&flagResolution, "resolution", 64, "Comparison resolution (pixels per edge)")
	f.Float32Var(&flagDifficulty, "difficulty", 1, "Difficulty weight")
	f.IntVar(&flagThreshold, "threshold", paintmatch.DefaultThreshold, "Advance threshold")
	f.StringVar(&flagKernel, "kernel", config.KernelAuto, "Difference kernel: auto, software or gpu")
	f.IntVar(&flagWorkers, "workers", 0, "Software kernel workers (0 = GOMAXPROCS)")
	for _, name := range []string{"player-color", "player-height", "target-color", "target-height"} {
		_ = scoreCmd.MarkFlagRequired(name)
	}
}

type scoreRequest struct {
	PlayerColor, PlayerHeight string
	TargetColor, TargetHeight string
	Resolution                int
	Difficulty                float32
	Threshold                 int
	Kernel                    string
	Workers                   int
}

func runScore(ctx context.Context, w io.Writer, req scoreRequest) error {
	if ctx == nil {
		ctx = context.Background()
	}
	player, err := paintmatch.LoadReference(req.PlayerColor, req.PlayerHeight, req.Resolution)
	if err != nil {
		return fmt.Errorf("load attempt: %w", err)
	}
	target, err := paintmatch.LoadReference(req.TargetColor, req.TargetHeight, req.Resolution)
	if err != nil {
		return fmt.Errorf("load reference: %w", err)
	}

	kernel, release, err := selectKernel(req.Kernel, req.Workers)
	if err != nil {
		return err
	}
	defer release()

	engine := paintmatch.NewEngine(
		paintmatch.WithKernel(kernel),
		paintmatch.WithThreshold(req.Threshold),
	)
	defer engine.Close()

	if err := engine.ConfigureReference(player.Color, player.Height, target, req.Difficulty); err != nil {
		return err
	}
	if err := engine.Dispatch(); err != nil {
		return err
	}
	score, err := engine.ComputeScore(ctx)
	if err != nil {
		return err
	}

	verdict := "no"
	if engine.AdvanceWorthy() {
		verdict = "yes"
	}
	fmt.Fprintf(w, "%s vs %s\n", titleStyle.Render(player.Name), titleStyle.Render(target.Name))
	fmt.Fprintf(w, "Score:   %s\n", formatScore(score))
	fmt.Fprintf(w, "Advance: %s (threshold %d%%, %s kernel)\n", verdict, engine.Threshold(), kernel.Name())
	return nil
}
