package cmd

import (
	"github.com/spf13/cobra"

	"github.com/netviva/fleetrec/cmd/fleetrec/app"
	"github.com/netviva/fleetrec/internal/report"
	"github.com/netviva/fleetrec/internal/scheduler"
)

func newRunCmd(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one reconciliation pass",
		Long: `Run loads the source workbook, executes a full reconciliation pass,
and prints the run summary. With --schedule the command stays up and
reconciles on the given cron expression until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := a.Fleet()
			if err != nil {
				return err
			}

			schedule, err := cmd.Flags().GetString("schedule")
			if err != nil {
				return err
			}

			result, err := f.Reconcile(cmd.Context())
			if err != nil {
				return err
			}
			if err := report.WriteSummary(cmd.OutOrStdout(), result); err != nil {
				return err
			}

			if schedule == "" {
				return nil
			}

			s := scheduler.New(f)
			if err := s.Start(schedule); err != nil {
				return err
			}
			<-cmd.Context().Done()
			s.Stop()
			return nil
		},
	}

	cmd.Flags().String("schedule", "", "cron expression for repeated runs (e.g. \"0 6 1 * *\")")
	return cmd
}
