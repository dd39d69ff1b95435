package cmd

import (
	"github.com/spf13/cobra"

	"github.com/netviva/fleetrec/cmd/fleetrec/app"
	"github.com/netviva/fleetrec/internal/report"
)

func newStateCmd(a *app.App) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show the fleet state summary of the latest run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := a.Latest(cmd.Context())
			if err != nil {
				return err
			}
			latest, err := f.Latest()
			if err != nil {
				return err
			}
			if month != "" {
				return report.WriteMonth(cmd.OutOrStdout(), latest, month)
			}
			return report.WriteSummary(cmd.OutOrStdout(), latest)
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "activation view for one month (2006-01)")
	return cmd
}
