package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/deskrota/internal/config"
	"github.com/jakechorley/deskrota/pkg/core/model"
	"github.com/jakechorley/deskrota/pkg/db"
	"github.com/jakechorley/deskrota/pkg/instance"
)

// NamedInstance is an instance with the label used in run records
type NamedInstance struct {
	Name     string
	Instance *model.Instance
}

// ExperimentResult contains every run of an experiment, in task order
type ExperimentResult struct {
	Runs []db.RunRecord
}

// LoadInstances loads every instance file matching the glob, sorted by path.
// Instances are named after their file name without extension.
func LoadInstances(pattern string, logger *zap.Logger) ([]NamedInstance, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid instances pattern: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no instance files match %q", pattern)
	}
	sort.Strings(paths)

	instances := make([]NamedInstance, 0, len(paths))
	for _, path := range paths {
		inst, err := instance.Load(path)
		if err != nil {
			return nil, err
		}
		name := InstanceName(path)
		logger.Debug("Loaded instance",
			zap.String("name", name),
			zap.Int("employees", len(inst.Employees)),
			zap.Int("desks", len(inst.Desks)),
			zap.Int("days", len(inst.Days)))
		instances = append(instances, NamedInstance{Name: name, Instance: inst})
	}
	return instances, nil
}

// InstanceName derives a run label from an instance path
func InstanceName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// RunExperiments runs every (instance, method, seed) combination on a bounded
// worker pool and stores all run records once every run has finished.
//
// Runs are independent: each owns its random source and assignments while the
// instances are shared read-only. Results are reported in task order, so the
// outcome does not depend on the number of workers.
func RunExperiments(
	ctx context.Context,
	store db.RunStore,
	instances []NamedInstance,
	cfg *config.Config,
	logger *zap.Logger,
	hooks Hooks,
) (*ExperimentResult, error) {
	methods, err := ResolveMethods(cfg.Experiments.Methods)
	if err != nil {
		return nil, err
	}

	// Collect all run tasks
	type runTask struct {
		instance NamedInstance
		method   string
		seed     int64
	}

	var tasks []runTask
	for _, inst := range instances {
		for _, method := range methods {
			for _, seed := range cfg.Experiments.Seeds {
				tasks = append(tasks, runTask{instance: inst, method: method, seed: seed})
			}
		}
	}

	logger.Info("Starting experiments",
		zap.Int("instances", len(instances)),
		zap.Strings("methods", methods),
		zap.Int("seeds", len(cfg.Experiments.Seeds)),
		zap.Int("runs", len(tasks)),
		zap.Int("workers", cfg.Experiments.Workers))

	// Fan out, one slot per task so no result ordering depends on scheduling
	runs := make([]db.RunRecord, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Experiments.Workers, 1))

	for i, task := range tasks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			result, err := run(task.instance.Instance, cfg, logger, SolveRequest{
				InstanceName: task.instance.Name,
				Method:       task.method,
				Seed:         task.seed,
			}, hooks)
			if err != nil {
				return fmt.Errorf("run %s/%s/seed %d: %w", task.instance.Name, task.method, task.seed, err)
			}

			runs[i] = result.Run
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if store != nil {
		if err := store.InsertRuns(ctx, runs); err != nil {
			return nil, fmt.Errorf("failed to store runs: %w", err)
		}
	}

	logger.Info("Experiments finished", zap.Int("runs", len(runs)))

	return &ExperimentResult{Runs: runs}, nil
}
