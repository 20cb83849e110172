package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/j-veylop/openai-cost-tui/internal/models"
	"github.com/j-veylop/openai-cost-tui/internal/services"
	"github.com/j-veylop/openai-cost-tui/internal/services/refresh"
	"github.com/j-veylop/openai-cost-tui/internal/ui/components"
)

func newStatusCmd(opts *options) *cobra.Command {
	var (
		mode       string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the current cost as a one-line status",
		Long: `Fetches the cost once and prints the status label.

With --json the output is a waybar custom module object:
  {"text": "...", "tooltip": "...", "class": "ready|loading|failed", "alt": "..."}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withManager(opts, func(mgr *services.Manager) error {
				st, err := fetchStatus(mgr, mode)
				if err != nil {
					return err
				}

				label := components.FormatStatus(st, false, components.RetryHintCLI)
				if jsonOutput {
					return PrintJSON(cmd.OutOrStdout(), label)
				}

				fmt.Fprintln(cmd.OutOrStdout(), label.Text)
				fmt.Fprintln(cmd.OutOrStdout(), label.Tooltip)
				if st.Phase == refresh.PhaseFailed {
					return st.Err
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "today or month (default from config)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as waybar JSON")

	return cmd
}

// fetchStatus runs one refresh, switching mode first when one is given.
func fetchStatus(mgr *services.Manager, mode string) (refresh.State, error) {
	if mode == "" {
		return mgr.Refresh(), nil
	}
	m, err := models.ParseDisplayMode(mode)
	if err != nil {
		return refresh.State{}, err
	}
	return mgr.SetMode(m), nil
}
