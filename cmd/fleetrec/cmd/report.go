package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/netviva/fleetrec/cmd/fleetrec/app"
	"github.com/netviva/fleetrec/internal/report"
	"github.com/netviva/fleetrec/pkg/errors"
)

func newReportCmd(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the latest run as a markdown report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := a.Latest(cmd.Context())
			if err != nil {
				return err
			}
			latest, err := f.Latest()
			if err != nil {
				return err
			}
			rollups, err := f.ByInvoice()
			if err != nil {
				return err
			}

			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			if out == "" {
				return report.WriteMarkdown(cmd.OutOrStdout(), latest, rollups)
			}

			file, err := os.Create(out)
			if err != nil {
				return errors.WrapIO("create", out, err)
			}
			defer func() { _ = file.Close() }()
			return report.WriteMarkdown(file, latest, rollups)
		},
	}

	cmd.Flags().String("out", "", "write the report to a file instead of stdout")
	return cmd
}
