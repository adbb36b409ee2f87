package search

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/jakechorley/deskrota/pkg/core/model"
	"github.com/jakechorley/deskrota/pkg/core/scoring"
)

// AnnealConfig configures a simulated annealing run
type AnnealConfig struct {
	InitialTemp float64
	FinalTemp   float64

	// Alpha is the geometric cooling factor applied after every ItersPerTemp proposals
	Alpha float64

	ItersPerTemp int

	// Weights collapse scores for the acceptance test only; the incumbent is
	// always compared lexicographically
	Weights scoring.Weights

	Seed     int64
	Observer Observer
}

// DefaultAnnealConfig returns the schedule used by the benchmark experiments
func DefaultAnnealConfig() AnnealConfig {
	return AnnealConfig{
		InitialTemp:  200.0,
		FinalTemp:    1.0,
		Alpha:        0.95,
		ItersPerTemp: 1000,
		Weights:      scoring.DefaultWeights,
	}
}

// Validate checks the configuration
func (c AnnealConfig) Validate() error {
	if c.InitialTemp <= 0 {
		return fmt.Errorf("%w: initial temperature must be > 0 (got %f)", ErrInvalidConfig, c.InitialTemp)
	}
	if c.FinalTemp <= 0 {
		return fmt.Errorf("%w: final temperature must be > 0 (got %f)", ErrInvalidConfig, c.FinalTemp)
	}
	if c.FinalTemp >= c.InitialTemp {
		return fmt.Errorf("%w: final temperature must be < initial temperature (got %f >= %f)",
			ErrInvalidConfig, c.FinalTemp, c.InitialTemp)
	}
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return fmt.Errorf("%w: alpha must lie in (0,1) (got %f)", ErrInvalidConfig, c.Alpha)
	}
	if c.ItersPerTemp <= 0 {
		return fmt.Errorf("%w: iterations per temperature must be > 0 (got %d)", ErrInvalidConfig, c.ItersPerTemp)
	}
	if err := c.Weights.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Anneal runs simulated annealing from start.
//
// Each proposal is accepted if its scalarised score is higher than the current
// one, otherwise with probability exp(delta/T) (Metropolis criterion). The
// temperature starts at InitialTemp, is multiplied by Alpha after each block of
// ItersPerTemp proposals and the run stops once it reaches FinalTemp.
func Anneal(inst *model.Instance, start model.Assignment, cfg AnnealConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	begin := time.Now()
	rng := rand.New(rand.NewSource(cfg.Seed))

	// Accepted states are always fresh neighbours and never mutated afterwards,
	// so best can point at the same map as current.
	current := start.Clone()
	currentScore := scoring.Evaluate(inst, current)
	currentScalar := cfg.Weights.Scalar(currentScore)

	best := current
	bestScore := currentScore

	result := &Result{Initial: currentScore}
	stats := &result.Stats
	stats.Evaluations++

	iteration := 0
	for temp := cfg.InitialTemp; temp > cfg.FinalTemp; temp *= cfg.Alpha {
		for i := 0; i < cfg.ItersPerTemp; i++ {
			iteration++

			neighbor := SwapNeighbor(inst, current, rng)
			neighborScore := scoring.Evaluate(inst, neighbor)
			neighborScalar := cfg.Weights.Scalar(neighborScore)
			stats.Iterations++
			stats.Evaluations++

			delta := neighborScalar - currentScalar
			accepted := delta > 0 || rng.Float64() < math.Exp(delta/temp)

			improved := false
			if accepted {
				current = neighbor
				currentScore = neighborScore
				currentScalar = neighborScalar
				stats.Accepted++
				if delta < 0 {
					stats.AcceptedWorse++
				}

				// Incumbent uses the true lexicographic order
				if currentScore.Better(bestScore) {
					best = current
					bestScore = currentScore
					stats.Improvements++
					improved = true
				}
			}

			notify(cfg.Observer, Event{
				Method:      MethodAnneal,
				Iteration:   iteration,
				Current:     currentScore,
				Best:        bestScore,
				Accepted:    accepted,
				Improved:    improved,
				Temperature: temp,
			})
		}
	}

	result.Assignment = best
	result.Score = bestScore
	stats.Duration = time.Since(begin)
	return result, nil
}
