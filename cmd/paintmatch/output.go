package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/gogpu/paintmatch"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)

	tierStyles = map[paintmatch.Tier]lipgloss.Style{
		paintmatch.TierLow:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(paintmatch.TierLow.Hex())),
		paintmatch.TierMedium: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(paintmatch.TierMedium.Hex())),
		paintmatch.TierHigh:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(paintmatch.TierHigh.Hex())),
	}
)

// formatScore renders "NN%" in the color of the score's tier.
func formatScore(score int) string {
	return tierStyles[paintmatch.ScoreTier(score)].Render(fmt.Sprintf("%d%%", score))
}

// terminalSink prints score and round events.
type terminalSink struct {
	w io.Writer
}

var _ paintmatch.Sink = terminalSink{}

func (s terminalSink) ScoreChanged(e paintmatch.ScoreEvent) {
	verdict := dimStyle.Render(fmt.Sprintf("needs %d%%", e.Threshold))
	if e.AdvanceWorthy {
		verdict = "advance"
	}
	fmt.Fprintf(s.w, "  score %s  %s\n", formatScore(e.Score), verdict)
}

func (s terminalSink) RoundAdvanced(e paintmatch.RoundEvent) {
	fmt.Fprintf(s.w, "%s %s\n", titleStyle.Render(fmt.Sprintf("Round %d:", e.Round)), e.Reference)
}

func (s terminalSink) Completed() {
	fmt.Fprintln(s.w, titleStyle.Render("All references completed."))
}
