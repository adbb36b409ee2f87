package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jakechorley/deskrota/pkg/core/model"
	"github.com/jakechorley/deskrota/pkg/db"
)

// WriteSummaryCSV writes one row per (instance, method) summary
func WriteSummaryCSV(path string, summaries []db.RunSummary) error {
	rows := [][]string{{
		"instance", "method", "runs", "avg_C1", "avg_C2", "avg_C3",
		"best_C1", "best_C2", "best_C3", "avg_runtime_sec", "best_seed",
	}}
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Instance,
			s.Method,
			strconv.Itoa(s.Runs),
			formatFloat(s.AvgC1, 3),
			formatFloat(s.AvgC2, 3),
			formatFloat(s.AvgC3, 3),
			strconv.Itoa(s.BestC1),
			strconv.Itoa(s.BestC2),
			strconv.Itoa(s.BestC3),
			formatFloat(s.AvgRuntime, 6),
			strconv.FormatInt(s.BestSeed, 10),
		})
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create summary directory: %w", err)
	}
	if err := writeCSVFile(path, rows); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// WriteSummaryMarkdown writes a per-instance overview naming the method with
// the lexicographically best average score
func WriteSummaryMarkdown(path string, summaries []db.RunSummary) error {
	byInstance := make(map[string][]db.RunSummary)
	for _, s := range summaries {
		byInstance[s.Instance] = append(byInstance[s.Instance], s)
	}
	instances := make([]string, 0, len(byInstance))
	for inst := range byInstance {
		instances = append(instances, inst)
	}
	sort.Strings(instances)

	var b strings.Builder
	b.WriteString("# Experiment summary\n\n")
	for _, inst := range instances {
		methods := byInstance[inst]
		sort.Slice(methods, func(i, j int) bool { return methods[i].Method < methods[j].Method })

		fmt.Fprintf(&b, "## %s\n\n", inst)
		fmt.Fprintf(&b, "| method | runs | avg (C1, C2, C3) | best | avg time (s) | best seed |\n")
		fmt.Fprintf(&b, "|---|---|---|---|---|---|\n")

		best := -1
		for i, s := range methods {
			fmt.Fprintf(&b, "| %s | %d | (%s, %s, %s) | %s | %s | %d |\n",
				s.Method, s.Runs,
				formatFloat(s.AvgC1, 3), formatFloat(s.AvgC2, 3), formatFloat(s.AvgC3, 3),
				model.Score{C1: s.BestC1, C2: s.BestC2, C3: s.BestC3},
				formatFloat(s.AvgRuntime, 6), s.BestSeed)
			if best < 0 || betterAverage(s, methods[best]) {
				best = i
			}
		}

		if best >= 0 {
			fmt.Fprintf(&b, "\nBest average (lexicographic): **%s**\n\n", methods[best].Method)
		} else {
			b.WriteString("\nNo runs.\n\n")
		}
	}

	if err := writeFile(path, []byte(b.String())); err != nil {
		return fmt.Errorf("failed to write summary markdown: %w", err)
	}
	return nil
}

// betterAverage compares average triples lexicographically
func betterAverage(a, b db.RunSummary) bool {
	if a.AvgC1 != b.AvgC1 {
		return a.AvgC1 > b.AvgC1
	}
	if a.AvgC2 != b.AvgC2 {
		return a.AvgC2 > b.AvgC2
	}
	return a.AvgC3 > b.AvgC3
}

func formatFloat(v float64, precision int) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}
