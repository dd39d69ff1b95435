package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netviva/fleetrec/cmd/fleetrec/app"
	"github.com/netviva/fleetrec/internal/report"
)

func newAuditCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Show the audit findings of the latest run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := a.Latest(cmd.Context())
			if err != nil {
				return err
			}
			latest, err := f.Latest()
			if err != nil {
				return err
			}

			if latest.Audit.HasWarnings() {
				fmt.Fprintln(cmd.OutOrStdout(), "DATA QUALITY WARNING: some findings below need attention")
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return report.WriteFindings(cmd.OutOrStdout(), latest.Audit)
		},
	}
}
