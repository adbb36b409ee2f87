package search

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/jakechorley/deskrota/pkg/core/model"
	"github.com/jakechorley/deskrota/pkg/core/scoring"
)

// ILSConfig configures an iterated local search run
type ILSConfig struct {
	// MaxIters is the number of perturb + intensify rounds
	MaxIters int

	// LSIters is the hill-climbing budget of each round
	LSIters int

	// PerturbK is the number of random swaps applied to the best solution at the start of a round
	PerturbK int

	// Strict is passed to the inner hill climb
	Strict bool

	Seed     int64
	Observer Observer
}

// DefaultILSConfig returns the budget used by the benchmark experiments
func DefaultILSConfig() ILSConfig {
	return ILSConfig{
		MaxIters: 20,
		LSIters:  500,
		PerturbK: 3,
	}
}

// Validate checks the configuration
func (c ILSConfig) Validate() error {
	if c.MaxIters < 0 {
		return fmt.Errorf("%w: max iterations must be >= 0 (got %d)", ErrInvalidConfig, c.MaxIters)
	}
	if c.LSIters < 0 {
		return fmt.Errorf("%w: local search iterations must be >= 0 (got %d)", ErrInvalidConfig, c.LSIters)
	}
	if c.PerturbK < 0 {
		return fmt.Errorf("%w: perturbation size must be >= 0 (got %d)", ErrInvalidConfig, c.PerturbK)
	}
	return nil
}

// IteratedLocalSearch alternates perturbation and hill climbing.
//
// Every round perturbs the best known solution with PerturbK swaps, climbs for
// LSIters steps and keeps the result if it scores at least as well as the best.
// Otherwise the next round starts again from the best, so the search never drifts
// along a worse branch. A single random source drives both phases.
func IteratedLocalSearch(inst *model.Instance, start model.Assignment, cfg ILSConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	begin := time.Now()
	rng := rand.New(rand.NewSource(cfg.Seed))

	best := start.Clone()
	bestScore := scoring.Evaluate(inst, best)

	result := &Result{Initial: bestScore}
	stats := &result.Stats
	stats.Evaluations++

	for round := 0; round < cfg.MaxIters; round++ {
		// Perturb a private copy of the best solution
		candidate := best.Clone()
		for k := 0; k < cfg.PerturbK; k++ {
			SwapInPlace(inst, candidate, rng)
		}
		candidateScore := scoring.Evaluate(inst, candidate)
		stats.Evaluations++

		// Intensify
		candidate, candidateScore = climb(inst, candidate, candidateScore, climbParams{
			iterations: cfg.LSIters,
			strict:     cfg.Strict,
			rng:        rng,
		}, stats)

		improved := candidateScore.Better(bestScore)
		accepted := candidateScore.AtLeast(bestScore)
		if accepted {
			best = candidate
			bestScore = candidateScore
		}

		notify(cfg.Observer, Event{
			Method:    MethodILS,
			Iteration: round + 1,
			Current:   bestScore,
			Best:      bestScore,
			Accepted:  accepted,
			Improved:  improved,
		})
	}

	result.Assignment = best
	result.Score = bestScore
	stats.Duration = time.Since(begin)
	return result, nil
}
