package genetic

import (
	"errors"
	"fmt"

	"github.com/jakechorley/deskrota/pkg/core/search"
)

// ErrInvalidConfig is returned when a GA configuration cannot be run
var ErrInvalidConfig = errors.New("invalid genetic algorithm configuration")

// Config configures a genetic algorithm run
type Config struct {
	Generations    int
	PopulationSize int

	// CrossoverRate is the probability that a pair of parents is recombined
	CrossoverRate float64

	// MutationRate is the probability, per offspring, of one swap mutation
	MutationRate float64

	TournamentSize int

	// TopK is passed to the constructive builder for the initial population
	TopK int

	Seed     int64
	Observer search.Observer
}

// DefaultConfig returns the parameters used by the benchmark experiments
func DefaultConfig() Config {
	return Config{
		Generations:    30,
		PopulationSize: 20,
		CrossoverRate:  0.7,
		MutationRate:   0.2,
		TournamentSize: 3,
		TopK:           3,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.PopulationSize <= 0 {
		return fmt.Errorf("%w: population size must be > 0 (got %d)", ErrInvalidConfig, c.PopulationSize)
	}
	if c.Generations < 0 {
		return fmt.Errorf("%w: generations must be >= 0 (got %d)", ErrInvalidConfig, c.Generations)
	}
	if c.CrossoverRate < 0 || c.CrossoverRate > 1 {
		return fmt.Errorf("%w: crossover rate must lie in [0,1] (got %f)", ErrInvalidConfig, c.CrossoverRate)
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return fmt.Errorf("%w: mutation rate must lie in [0,1] (got %f)", ErrInvalidConfig, c.MutationRate)
	}
	if c.TournamentSize <= 0 {
		return fmt.Errorf("%w: tournament size must be > 0 (got %d)", ErrInvalidConfig, c.TournamentSize)
	}
	if c.TopK < 1 {
		return fmt.Errorf("%w: top-k must be >= 1 (got %d)", ErrInvalidConfig, c.TopK)
	}
	return nil
}
