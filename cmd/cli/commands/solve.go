package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/deskrota/pkg/core/genetic"
	"github.com/jakechorley/deskrota/pkg/core/model"
	"github.com/jakechorley/deskrota/pkg/core/scoring"
	"github.com/jakechorley/deskrota/pkg/core/services"
	"github.com/jakechorley/deskrota/pkg/db"
	"github.com/jakechorley/deskrota/pkg/export"
	"github.com/jakechorley/deskrota/pkg/instance"
)

// SolveCmd creates the solve command
func SolveCmd(app *AppContext) *cobra.Command {
	var (
		method   string
		seed     int64
		outPath  string
		csvDir   string
		xlsxPath string
		report   bool
		noStore  bool
	)

	cmd := &cobra.Command{
		Use:   "solve <instance.json>",
		Short: "Build and improve a desk assignment for an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := instance.Load(args[0])
			if err != nil {
				return err
			}

			var store db.RunStore
			if !noStore {
				store, err = app.Store()
				if err != nil {
					return err
				}
			}

			result, err := services.Solve(app.Ctx, store, inst, app.Cfg, app.Logger, services.SolveRequest{
				InstanceName: services.InstanceName(args[0]),
				Method:       method,
				Seed:         seed,
			}, services.Hooks{Metrics: app.Metrics})
			if err != nil {
				return err
			}

			// Write requested outputs
			if outPath != "" {
				if err := export.WriteSolutionJSON(outPath, inst, result.Assignment); err != nil {
					return err
				}
				app.Logger.Info("Solution written", zap.String("path", outPath))
			}
			if csvDir != "" {
				if err := export.WriteCSV(csvDir, inst, result.Assignment); err != nil {
					return err
				}
				app.Logger.Info("CSV files written", zap.String("dir", csvDir))
			}
			if xlsxPath != "" {
				if err := export.WriteWorkbook(xlsxPath, inst, result.Assignment); err != nil {
					return err
				}
				app.Logger.Info("Workbook written", zap.String("path", xlsxPath))
			}
			if err := app.writeMetrics(); err != nil {
				return err
			}

			// Display results
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n✓ %s finished\n\n", result.Run.Method)
			fmt.Fprintf(out, "Initial score: %s\n", result.Initial)
			fmt.Fprintf(out, "Final score:   %s\n", result.Score)
			fmt.Fprintf(out, "Evaluations:   %d\n", result.Stats.Evaluations)
			fmt.Fprintf(out, "Runtime:       %.3fs\n", result.Run.RuntimeSec)
			if len(result.History) > 0 {
				printHistory(out, result.History)
			}
			if report {
				printReport(out, inst, result.Assignment)
			}
			fmt.Fprintln(out)

			return nil
		},
	}

	cmd.Flags().StringVarP(&method, "method", "m", "sa", "Method: hc, sa, ils, ga (or local, no_local)")
	cmd.Flags().Int64VarP(&seed, "seed", "s", 1, "Random seed")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the solution JSON to this path")
	cmd.Flags().StringVar(&csvDir, "csv", "", "Write the CSV exports to this directory")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write an XLSX workbook to this path")
	cmd.Flags().BoolVar(&report, "report", false, "Print the per-day score report")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "Do not record the run in the run store")

	return cmd
}

// printReport prints the per-day breakdown and the totals
func printReport(w io.Writer, inst *model.Instance, a model.Assignment) {
	fmt.Fprintf(w, "\n%-12s %8s %6s %6s %6s\n", "Day", "Assigned", "C1", "C2", "C3")
	for _, day := range scoring.PerDay(inst, a) {
		fmt.Fprintf(w, "%-12s %8d %6d %6d %6d\n", day.Day, day.Assigned, day.Score.C1, day.Score.C2, day.Score.C3)
	}

	total := scoring.Evaluate(inst, a)
	isolated, _ := scoring.IsolatedEmployees(inst, a)
	fmt.Fprintf(w, "%-12s %8d %6d %6d %6d\n", "Total", scoring.ValidAssignments(inst, a), total.C1, total.C2, total.C3)
	fmt.Fprintf(w, "\nIsolated employees: %d\n", isolated)
}

// printHistory prints the per-generation statistics of a genetic run
func printHistory(w io.Writer, history []genetic.GenerationStats) {
	fmt.Fprintf(w, "\n%-4s %-16s %-16s %s\n", "Gen", "Best", "Worst", "Average")
	for _, g := range history {
		fmt.Fprintf(w, "%-4d %-16s %-16s (%.2f, %.2f, %.2f)\n",
			g.Generation, g.Max, g.Min, g.Avg[0], g.Avg[1], g.Avg[2])
	}
}
