package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/deskrota/pkg/core/services"
)

// ExperimentCmd creates the experiment command
func ExperimentCmd(app *AppContext) *cobra.Command {
	var (
		pattern string
		methods []string
		seeds   []int64
		workers int
	)

	cmd := &cobra.Command{
		Use:   "experiment",
		Short: "Run every method on every instance for every seed and record the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Flags override the configured experiment
			cfg := *app.Cfg
			if cmd.Flags().Changed("instances") {
				cfg.Experiments.Instances = pattern
			}
			if cmd.Flags().Changed("methods") {
				cfg.Experiments.Methods = methods
			}
			if cmd.Flags().Changed("seeds") {
				cfg.Experiments.Seeds = seeds
			}
			if cmd.Flags().Changed("workers") {
				if workers < 1 {
					return fmt.Errorf("workers must be at least 1, got %d", workers)
				}
				cfg.Experiments.Workers = workers
			}

			instances, err := services.LoadInstances(cfg.Experiments.Instances, app.Logger)
			if err != nil {
				return err
			}

			store, err := app.Store()
			if err != nil {
				return err
			}

			result, err := services.RunExperiments(app.Ctx, store, instances, &cfg, app.Logger, services.Hooks{Metrics: app.Metrics})
			if err != nil {
				return err
			}

			if err := app.writeMetrics(); err != nil {
				return err
			}

			// Display results
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n✓ %d runs recorded\n\n", len(result.Runs))
			fmt.Fprintf(out, "%-16s %-6s %6s %6s %6s %6s %10s\n", "Instance", "Method", "Seed", "C1", "C2", "C3", "Runtime")
			for _, r := range result.Runs {
				fmt.Fprintf(out, "%-16s %-6s %6d %6d %6d %6d %9.3fs\n", r.Instance, r.Method, r.Seed, r.C1, r.C2, r.C3, r.RuntimeSec)
			}
			fmt.Fprintln(out)

			return nil
		},
	}

	cmd.Flags().StringVar(&pattern, "instances", "", "Glob of instance files")
	cmd.Flags().StringSliceVar(&methods, "methods", nil, "Methods to run")
	cmd.Flags().Int64SliceVar(&seeds, "seeds", nil, "Seeds to run")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of runs in parallel")

	return cmd
}
