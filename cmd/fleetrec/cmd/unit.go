package cmd

import (
	"github.com/spf13/cobra"

	"github.com/netviva/fleetrec/cmd/fleetrec/app"
	"github.com/netviva/fleetrec/internal/report"
	"github.com/netviva/fleetrec/pkg/fleet"
)

func newUnitCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "unit <id>",
		Short: "Show one unit's state and service history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.Latest(cmd.Context())
			if err != nil {
				return err
			}

			id := fleet.UnitID(args[0])
			state, err := f.State(id)
			if err != nil {
				return err
			}
			history, err := f.History(id)
			if err != nil {
				return err
			}
			return report.WriteUnit(cmd.OutOrStdout(), state, history)
		},
	}
}
