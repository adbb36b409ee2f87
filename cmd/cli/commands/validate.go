package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/deskrota/pkg/core/scoring"
	"github.com/jakechorley/deskrota/pkg/export"
	"github.com/jakechorley/deskrota/pkg/instance"
)

// ValidateCmd creates the validate command
func ValidateCmd(app *AppContext) *cobra.Command {
	var report bool

	cmd := &cobra.Command{
		Use:   "validate <instance.json> [solution.json]",
		Short: "Check an instance and, optionally, a solution for it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := instance.Load(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n✓ Instance %s is valid\n", args[0])
			fmt.Fprintf(out, "  %d employees, %d desks, %d days, %d groups, %d zones\n",
				len(inst.Employees), len(inst.Desks), len(inst.Days), len(inst.Groups), len(inst.Zones))

			if len(args) == 1 {
				fmt.Fprintln(out)
				return nil
			}

			a, err := export.ReadSolutionJSON(args[1])
			if err != nil {
				return err
			}

			if err := a.Validate(inst); err != nil {
				app.Logger.Warn("Solution is invalid", zap.String("path", args[1]), zap.Error(err))
				return fmt.Errorf("solution %s is invalid: %w", args[1], err)
			}

			fmt.Fprintf(out, "✓ Solution %s is valid\n", args[1])
			fmt.Fprintf(out, "  score %s\n", scoring.Evaluate(inst, a))
			if report {
				printReport(out, inst, a)
			}
			fmt.Fprintln(out)

			return nil
		},
	}

	cmd.Flags().BoolVar(&report, "report", false, "Print the per-day score report for the solution")

	return cmd
}
