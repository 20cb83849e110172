package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/j-veylop/openai-cost-tui/internal/models"
	"github.com/j-veylop/openai-cost-tui/internal/services"
)

func newStatsCmd(opts *options) *cobra.Command {
	var (
		mode       string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the per-day cost breakdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := models.ParseDisplayMode(mode)
			if err != nil {
				return err
			}

			return withManager(opts, func(mgr *services.Manager) error {
				ctx := cmd.Context()
				if timeout := mgr.Config().RequestTimeout; timeout > 0 {
					var cancel context.CancelFunc
					ctx, cancel = context.WithTimeout(ctx, timeout)
					defer cancel()
				}

				report, err := mgr.FetchReport(ctx, models.WindowFor(m, time.Now()))
				if err != nil {
					return err
				}

				if jsonOutput {
					return PrintJSON(cmd.OutOrStdout(), report)
				}
				PrintReport(cmd.OutOrStdout(), report)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "month", "today or month")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}
