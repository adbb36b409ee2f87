// Package genetic implements a generational genetic algorithm over desk assignments.
package genetic

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/jakechorley/deskrota/pkg/core/construct"
	"github.com/jakechorley/deskrota/pkg/core/model"
	"github.com/jakechorley/deskrota/pkg/core/search"
)

// maxPopulationSeed bounds the seeds drawn for the initial population builds
const maxPopulationSeed = 1_000_000_000

// Result is the outcome of a GA run
type Result struct {
	// Assignment is the best individual seen in any generation
	Assignment model.Assignment
	Score      model.Score

	// Initial is the best fitness of the initial population
	Initial model.Score

	// History holds one entry per generation
	History []GenerationStats

	Stats search.Stats
}

// Run evolves a population of constructively built assignments.
//
// Each generation is fully replaced by offspring produced by tournament selection,
// day-segment crossover (probability CrossoverRate per pair) and swap mutation
// (probability MutationRate per child). The best individual ever seen is kept
// outside the population and returned even if it is lost from it.
func Run(inst *model.Instance, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	begin := time.Now()
	rng := rand.New(rand.NewSource(cfg.Seed))
	result := &Result{History: make([]GenerationStats, 0, cfg.Generations)}
	stats := &result.Stats

	// Initial population, each built from its own derived seed
	pop := make([]*Individual, cfg.PopulationSize)
	for i := range pop {
		a, err := construct.Build(inst, construct.Options{
			Seed:      rng.Int63n(maxPopulationSeed),
			Randomize: true,
			TopK:      cfg.TopK,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build initial individual %d: %w", i, err)
		}
		pop[i] = &Individual{Assignment: a}
		pop[i].Evaluate(inst)
		stats.Evaluations++
	}

	best := fittest(pop)
	bestScore := best.Fitness
	bestAssignment := best.Assignment.Clone()
	result.Initial = bestScore

	for gen := 1; gen <= cfg.Generations; gen++ {
		next := make([]*Individual, 0, cfg.PopulationSize)

		for len(next) < cfg.PopulationSize {
			p1 := tournament(pop, cfg.TournamentSize, rng)
			p2 := tournament(pop, cfg.TournamentSize, rng)

			var c1, c2 model.Assignment
			if rng.Float64() < cfg.CrossoverRate {
				c1, c2 = crossover(inst, p1.Assignment, p2.Assignment, rng)
			} else {
				c1, c2 = p1.Assignment.Clone(), p2.Assignment.Clone()
			}

			if rng.Float64() < cfg.MutationRate {
				mutate(inst, c1, rng)
			}
			if rng.Float64() < cfg.MutationRate {
				mutate(inst, c2, rng)
			}

			next = append(next, &Individual{Assignment: c1})
			if len(next) < cfg.PopulationSize {
				next = append(next, &Individual{Assignment: c2})
			}
		}

		// Generational replacement
		pop = next
		for _, ind := range pop {
			ind.Evaluate(inst)
			stats.Evaluations++
		}
		stats.Iterations++

		genBest := fittest(pop)
		improved := genBest.Fitness.Better(bestScore)
		if improved {
			bestScore = genBest.Fitness
			bestAssignment = genBest.Assignment.Clone()
			stats.Improvements++
		}

		genStats := populationStats(gen, pop)
		result.History = append(result.History, genStats)

		if cfg.Observer != nil {
			cfg.Observer.Observe(search.Event{
				Method:    search.MethodGenetic,
				Iteration: gen,
				Current:   genStats.Max,
				Best:      bestScore,
				Accepted:  true,
				Improved:  improved,
			})
		}
	}

	result.Assignment = bestAssignment
	result.Score = bestScore
	stats.Duration = time.Since(begin)
	return result, nil
}

// fittest returns the first individual with the highest fitness
func fittest(pop []*Individual) *Individual {
	best := pop[0]
	for _, ind := range pop[1:] {
		if ind.Fitness.Better(best.Fitness) {
			best = ind
		}
	}
	return best
}
