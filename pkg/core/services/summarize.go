package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/jakechorley/deskrota/pkg/core/model"
	"github.com/jakechorley/deskrota/pkg/db"
)

// Summarize aggregates stored runs per (instance, method).
// Method aliases are folded into their method. The best run is the
// lexicographically best (C1, C2, C3), earliest stored on ties.
func Summarize(ctx context.Context, store db.RunStore, logger *zap.Logger) ([]db.RunSummary, error) {
	runs, err := store.GetRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch runs: %w", err)
	}

	logger.Debug("Summarizing runs", zap.Int("count", len(runs)))

	return SummarizeRuns(runs), nil
}

// SummarizeRuns aggregates run records, sorted by instance then method
func SummarizeRuns(runs []db.RunRecord) []db.RunSummary {
	type key struct {
		instance string
		method   string
	}

	groups := make(map[key][]db.RunRecord)
	var keys []key
	for _, r := range runs {
		method := r.Method
		if resolved, err := ResolveMethod(r.Method); err == nil {
			method = resolved
		}
		k := key{instance: r.Instance, method: method}
		if _, exists := groups[k]; !exists {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], r)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].instance != keys[j].instance {
			return keys[i].instance < keys[j].instance
		}
		return keys[i].method < keys[j].method
	})

	summaries := make([]db.RunSummary, 0, len(keys))
	for _, k := range keys {
		group := groups[k]
		n := float64(len(group))

		var sumC1, sumC2, sumC3, sumRuntime float64
		best := group[0]
		for _, r := range group {
			sumC1 += float64(r.C1)
			sumC2 += float64(r.C2)
			sumC3 += float64(r.C3)
			sumRuntime += r.RuntimeSec
			if runScore(r).Better(runScore(best)) {
				best = r
			}
		}

		summaries = append(summaries, db.RunSummary{
			Instance:   k.instance,
			Method:     k.method,
			Runs:       len(group),
			AvgC1:      sumC1 / n,
			AvgC2:      sumC2 / n,
			AvgC3:      sumC3 / n,
			BestC1:     best.C1,
			BestC2:     best.C2,
			BestC3:     best.C3,
			AvgRuntime: sumRuntime / n,
			BestSeed:   best.Seed,
		})
	}

	return summaries
}

func runScore(r db.RunRecord) model.Score {
	return model.Score{C1: r.C1, C2: r.C2, C3: r.C3}
}
