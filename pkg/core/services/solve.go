package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/deskrota/internal/config"
	"github.com/jakechorley/deskrota/pkg/core/construct"
	"github.com/jakechorley/deskrota/pkg/core/genetic"
	"github.com/jakechorley/deskrota/pkg/core/model"
	"github.com/jakechorley/deskrota/pkg/core/search"
	"github.com/jakechorley/deskrota/pkg/db"
	"github.com/jakechorley/deskrota/pkg/metrics"
)

// SolveRequest identifies a single run
type SolveRequest struct {
	// InstanceName labels the stored run record
	InstanceName string
	Method       string
	Seed         int64
}

// SolveResult contains the outcome of a single run
type SolveResult struct {
	Run        db.RunRecord
	Assignment model.Assignment
	Score      model.Score
	Initial    model.Score
	Stats      search.Stats

	// History is only set for the genetic algorithm
	History []genetic.GenerationStats
}

// Hooks are optional progress sinks for runs
type Hooks struct {
	Observer search.Observer
	Metrics  *metrics.Recorder
}

// observer combines the hooks into a single search observer, or nil
func (h Hooks) observer() search.Observer {
	switch {
	case h.Observer != nil && h.Metrics != nil:
		return search.ObserverFunc(func(e search.Event) {
			h.Observer.Observe(e)
			h.Metrics.Observe(e)
		})
	case h.Metrics != nil:
		return h.Metrics
	default:
		return h.Observer
	}
}

// Solve runs one method on one instance and stores the run record when a store is given
func Solve(
	ctx context.Context,
	store db.RunStore,
	inst *model.Instance,
	cfg *config.Config,
	logger *zap.Logger,
	req SolveRequest,
	hooks Hooks,
) (*SolveResult, error) {
	result, err := run(inst, cfg, logger, req, hooks)
	if err != nil {
		return nil, err
	}

	if store != nil {
		if err := store.InsertRuns(ctx, []db.RunRecord{result.Run}); err != nil {
			return nil, fmt.Errorf("failed to store run: %w", err)
		}
		logger.Debug("Run stored", zap.String("run_id", result.Run.ID))
	}

	return result, nil
}

// run executes a single run without storing it
func run(inst *model.Instance, cfg *config.Config, logger *zap.Logger, req SolveRequest, hooks Hooks) (*SolveResult, error) {
	method, err := ResolveMethod(req.Method)
	if err != nil {
		return nil, err
	}

	logger = logger.With(
		zap.String("instance", req.InstanceName),
		zap.String("method", method),
		zap.Int64("seed", req.Seed))
	logger.Debug("Starting run")

	if method == search.MethodAnneal {
		if err := cfg.Anneal.Weights.Safe(inst); err != nil {
			logger.Warn("Annealing weights may not preserve lexicographic order", zap.Error(err))
		}
	}

	begin := time.Now()
	result, iterations, err := runMethod(inst, cfg, method, req.Seed, hooks.observer())
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(begin)

	// Every method must hand back a feasible assignment
	if err := result.Assignment.Validate(inst); err != nil {
		return nil, fmt.Errorf("%s produced an invalid assignment: %w", method, err)
	}

	result.Run = db.RunRecord{
		ID:         uuid.New().String(),
		Instance:   req.InstanceName,
		Method:     method,
		Seed:       req.Seed,
		Iterations: iterations,
		TopK:       cfg.Construct.TopK,
		C1:         result.Score.C1,
		C2:         result.Score.C2,
		C3:         result.Score.C3,
		RuntimeSec: elapsed.Seconds(),
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	if hooks.Metrics != nil {
		hooks.Metrics.RecordRun(method, elapsed, result.Score)
	}

	logger.Info("Run finished",
		zap.String("initial", result.Initial.String()),
		zap.String("score", result.Score.String()),
		zap.Int("evaluations", result.Stats.Evaluations),
		zap.Duration("duration", elapsed))

	return result, nil
}

// runMethod dispatches to the search and returns the result and the iteration
// budget recorded for the run
func runMethod(inst *model.Instance, cfg *config.Config, method string, seed int64, observer search.Observer) (*SolveResult, int, error) {
	if method == search.MethodGenetic {
		res, err := genetic.Run(inst, genetic.Config{
			Generations:    cfg.Genetic.Generations,
			PopulationSize: cfg.Genetic.PopulationSize,
			CrossoverRate:  cfg.Genetic.CrossoverRate,
			MutationRate:   cfg.Genetic.MutationRate,
			TournamentSize: cfg.Genetic.TournamentSize,
			TopK:           cfg.Construct.TopK,
			Seed:           seed,
			Observer:       observer,
		})
		if err != nil {
			return nil, 0, fmt.Errorf("genetic algorithm failed: %w", err)
		}
		return &SolveResult{
			Assignment: res.Assignment,
			Score:      res.Score,
			Initial:    res.Initial,
			Stats:      res.Stats,
			History:    res.History,
		}, cfg.Genetic.Generations, nil
	}

	buildSeed, searchSeed := runSeeds(seed)
	start, err := construct.Build(inst, construct.Options{
		Seed:      buildSeed,
		Randomize: true,
		TopK:      cfg.Construct.TopK,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build initial assignment: %w", err)
	}

	var res *search.Result
	var iterations int
	switch method {
	case search.MethodHillClimb:
		iterations = cfg.HillClimb.Iterations
		res, err = search.HillClimb(inst, start, search.HillClimbConfig{
			Iterations: cfg.HillClimb.Iterations,
			Strict:     cfg.HillClimb.Strict,
			Seed:       searchSeed,
			Observer:   observer,
		})
	case search.MethodAnneal:
		iterations = cfg.Anneal.ItersPerTemp
		res, err = search.Anneal(inst, start, search.AnnealConfig{
			InitialTemp:  cfg.Anneal.InitialTemp,
			FinalTemp:    cfg.Anneal.FinalTemp,
			Alpha:        cfg.Anneal.Alpha,
			ItersPerTemp: cfg.Anneal.ItersPerTemp,
			Weights:      cfg.Anneal.Weights,
			Seed:         searchSeed,
			Observer:     observer,
		})
	case search.MethodILS:
		iterations = cfg.ILS.MaxIters
		res, err = search.IteratedLocalSearch(inst, start, search.ILSConfig{
			MaxIters: cfg.ILS.MaxIters,
			LSIters:  cfg.ILS.LSIters,
			PerturbK: cfg.ILS.PerturbK,
			Strict:   cfg.ILS.Strict,
			Seed:     searchSeed,
			Observer: observer,
		})
	default:
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("%s failed: %w", method, err)
	}

	return &SolveResult{
		Assignment: res.Assignment,
		Score:      res.Score,
		Initial:    res.Initial,
		Stats:      res.Stats,
	}, iterations, nil
}

// runSeeds derives the constructive and search seeds of a run from its seed.
// The two streams differ for every run seed.
func runSeeds(seed int64) (buildSeed, searchSeed int64) {
	rng := rand.New(rand.NewSource(seed))
	return rng.Int63(), rng.Int63()
}
