package components

import (
	"fmt"
	"strings"

	"github.com/j-veylop/openai-cost-tui/internal/services/refresh"
	"github.com/j-veylop/openai-cost-tui/internal/ui/styles"
)

// Retry hints shown in the failed tooltip, depending on the surface.
const (
	RetryHintTUI = "Press r to retry or m for details."
	RetryHintCLI = "Run 'oct status' to retry."
)

// StatusLabel is the one-line cost status and its hover text. The JSON shape
// matches what waybar custom modules expect.
type StatusLabel struct {
	Text    string `json:"text"`
	Tooltip string `json:"tooltip"`
	Class   string `json:"class"`
	Alt     string `json:"alt"`
}

// FormatDollars renders v with two decimals.
func FormatDollars(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// FormatStatus builds the label for a refresh snapshot. mixed appends a
// currency warning to the ready tooltip.
func FormatStatus(st refresh.State, mixed bool, retryHint string) StatusLabel {
	switch st.Phase {
	case refresh.PhaseReady:
		tooltip := fmt.Sprintf("%s cost (OpenAI) · %s", st.Mode, st.Window)
		if mixed {
			tooltip += " (mixed currencies)"
		}
		return StatusLabel{
			Text:    fmt.Sprintf("✦ %s: %s", st.Mode, FormatDollars(st.Cost)),
			Tooltip: tooltip,
			Class:   refresh.PhaseReady.String(),
			Alt:     strings.ToLower(st.Mode.String()),
		}

	case refresh.PhaseFailed:
		return StatusLabel{
			Text:    "✖ Cost Info",
			Tooltip: "Error fetching cost. " + retryHint,
			Class:   refresh.PhaseFailed.String(),
			Alt:     "error",
		}

	default:
		text := "⟳ Checking..."
		if st.First || st.Phase == refresh.PhaseUninitialized {
			text = "⟳ Loading Cost..."
		}
		return StatusLabel{
			Text:    text,
			Tooltip: "Fetching OpenAI cost...",
			Class:   refresh.PhaseLoading.String(),
			Alt:     "loading",
		}
	}
}

// Render styles the label text by its class.
func (l StatusLabel) Render() string {
	return styles.GetStatusStyle(l.Class).Render(l.Text)
}
