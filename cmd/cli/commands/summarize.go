package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/deskrota/pkg/core/services"
	"github.com/jakechorley/deskrota/pkg/export"
)

const (
	summaryCSVFile      = "summary.csv"
	summaryMarkdownFile = "summary.md"
)

// SummarizeCmd creates the summarize command
func SummarizeCmd(app *AppContext) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Aggregate recorded runs per instance and method",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir == "" {
				outDir = app.Cfg.Experiments.OutputDir
			}

			store, err := app.Store()
			if err != nil {
				return err
			}

			summaries, err := services.Summarize(app.Ctx, store, app.Logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(summaries) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}

			csvPath := filepath.Join(outDir, summaryCSVFile)
			if err := export.WriteSummaryCSV(csvPath, summaries); err != nil {
				return err
			}
			mdPath := filepath.Join(outDir, summaryMarkdownFile)
			if err := export.WriteSummaryMarkdown(mdPath, summaries); err != nil {
				return err
			}
			app.Logger.Info("Summary written", zap.String("csv", csvPath), zap.String("markdown", mdPath))

			// Display results
			fmt.Fprintf(out, "\n%-16s %-6s %4s %8s %8s %8s %-16s %10s %6s\n",
				"Instance", "Method", "Runs", "Avg C1", "Avg C2", "Avg C3", "Best", "Runtime", "Seed")
			for _, s := range summaries {
				fmt.Fprintf(out, "%-16s %-6s %4d %8.3f %8.3f %8.3f %-16s %9.3fs %6d\n",
					s.Instance, s.Method, s.Runs, s.AvgC1, s.AvgC2, s.AvgC3,
					fmt.Sprintf("(%d, %d, %d)", s.BestC1, s.BestC2, s.BestC3), s.AvgRuntime, s.BestSeed)
			}
			fmt.Fprintln(out)

			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "Directory for summary.csv and summary.md (default: experiments output dir)")

	return cmd
}
