package cmd

import (
	"github.com/spf13/cobra"

	"github.com/netviva/fleetrec/cmd/fleetrec/app"
	"github.com/netviva/fleetrec/internal/report"
)

func newInvoicesCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "invoices",
		Short: "Show per-invoice composition of the latest run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := a.Latest(cmd.Context())
			if err != nil {
				return err
			}
			rollups, err := f.ByInvoice()
			if err != nil {
				return err
			}
			return report.WriteInvoices(cmd.OutOrStdout(), rollups)
		},
	}
}
