package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/netviva/fleetrec/cmd/fleetrec/app"
)

func newVersionCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fleetrec %s\n", a.Version())
			fmt.Fprintf(cmd.OutOrStdout(), "  commit:  %s\n", a.Commit())
			fmt.Fprintf(cmd.OutOrStdout(), "  built:   %s\n", a.Date())
			fmt.Fprintf(cmd.OutOrStdout(), "  go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
