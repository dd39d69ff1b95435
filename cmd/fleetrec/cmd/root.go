// Package cmd defines the fleetrec CLI commands.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/netviva/fleetrec/cmd/fleetrec/app"
)

// NewRootCmd builds the root command and its subcommands.
func NewRootCmd(a *app.App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fleetrec",
		Short: "Leased equipment lifecycle reconciliation",
		Long: `Fleetrec reconciles the lifecycle of leased network equipment across
four independently maintained sources: the purchase invoice registry,
the field-service event log, the contract registry, and the curated
model classification table.

Each run recomputes the full per-unit state table, audits the sources
against each other, and persists the result as an atomic snapshot.`,
		Version:           a.Version(),
		PersistentPreRunE: setup(a),
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	rootCmd.SetVersionTemplate("fleetrec {{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.Config().Workbook, "workbook", "w", a.Config().Workbook, "path to the source workbook (.xlsx)")
	flags.StringVar(&a.Config().Store, "store", a.Config().Store, "snapshot directory (optional)")
	flags.BoolVarP(&a.Config().Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolVarP(&a.Config().Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.BoolVar(&a.Config().NoColor, "no-color", false, "disable colored output")
	flags.String("log-level", "", "log level: debug, info, warn, error (overrides -v/-q)")

	rootCmd.AddCommand(
		newRunCmd(a),
		newAuditCmd(a),
		newStateCmd(a),
		newInvoicesCmd(a),
		newUnitCmd(a),
		newReportCmd(a),
		newVersionCmd(a),
	)

	return rootCmd
}

// setup applies parsed global flags before any command runs.
func setup(a *app.App) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		logLevel, err := cmd.Flags().GetString("log-level")
		if err != nil {
			return err
		}
		cfg := a.Config()
		cfg.UpdateFromFlags(cfg.Verbose, cfg.Quiet, cfg.NoColor, logLevel)
		a.ConfigureLogging()
		return nil
	}
}
