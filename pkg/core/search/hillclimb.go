package search

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/jakechorley/deskrota/pkg/core/model"
	"github.com/jakechorley/deskrota/pkg/core/scoring"
)

// HillClimbConfig configures a hill-climbing run
type HillClimbConfig struct {
	// Iterations is the number of neighbours proposed
	Iterations int

	// Strict only accepts strictly better neighbours. By default equal-scoring
	// neighbours are accepted too, which lets the search drift across plateaus.
	Strict bool

	Seed     int64
	Observer Observer
}

// DefaultHillClimbConfig returns the budget used by the benchmark experiments
func DefaultHillClimbConfig() HillClimbConfig {
	return HillClimbConfig{Iterations: 1000}
}

// Validate checks the configuration
func (c HillClimbConfig) Validate() error {
	if c.Iterations < 0 {
		return fmt.Errorf("%w: iterations must be >= 0 (got %d)", ErrInvalidConfig, c.Iterations)
	}
	return nil
}

// HillClimb repeatedly proposes swap neighbours and keeps those that do not worsen
// the score (or strictly improve it, in strict mode). Since only non-worsening
// moves are accepted the final state is also the best state observed.
func HillClimb(inst *model.Instance, start model.Assignment, cfg HillClimbConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	begin := time.Now()
	rng := rand.New(rand.NewSource(cfg.Seed))

	current := start.Clone()
	score := scoring.Evaluate(inst, current)
	result := &Result{Initial: score}
	result.Stats.Evaluations++

	current, score = climb(inst, current, score, climbParams{
		iterations: cfg.Iterations,
		strict:     cfg.Strict,
		rng:        rng,
		observer:   cfg.Observer,
	}, &result.Stats)

	result.Assignment = current
	result.Score = score
	result.Stats.Duration = time.Since(begin)
	return result, nil
}

type climbParams struct {
	iterations int
	strict     bool
	rng        *rand.Rand
	observer   Observer
}

// climb is the hill-climbing loop shared with iterated local search.
// It takes ownership of current and returns the final (and best) state.
func climb(inst *model.Instance, current model.Assignment, score model.Score, p climbParams, stats *Stats) (model.Assignment, model.Score) {
	for i := 0; i < p.iterations; i++ {
		neighbor := SwapNeighbor(inst, current, p.rng)
		neighborScore := scoring.Evaluate(inst, neighbor)
		stats.Iterations++
		stats.Evaluations++

		improved := neighborScore.Better(score)
		accepted := improved || (!p.strict && neighborScore.AtLeast(score))

		if accepted {
			current = neighbor
			score = neighborScore
			stats.Accepted++
		}
		if improved {
			stats.Improvements++
		}

		notify(p.observer, Event{
			Method:    MethodHillClimb,
			Iteration: i + 1,
			Current:   score,
			Best:      score,
			Accepted:  accepted,
			Improved:  improved,
		})
	}

	return current, score
}
