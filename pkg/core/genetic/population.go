package genetic

import (
	"math/rand"

	"github.com/jakechorley/deskrota/pkg/core/model"
	"github.com/jakechorley/deskrota/pkg/core/scoring"
	"github.com/jakechorley/deskrota/pkg/core/search"
)

// Individual is a population member: an assignment plus its cached fitness
type Individual struct {
	Assignment   model.Assignment
	Fitness      model.Score
	FitnessValid bool
}

// Evaluate returns the fitness, computing it on first use
func (ind *Individual) Evaluate(inst *model.Instance) model.Score {
	if !ind.FitnessValid {
		ind.Fitness = scoring.Evaluate(inst, ind.Assignment)
		ind.FitnessValid = true
	}
	return ind.Fitness
}

// GenerationStats summarises one generation's population
type GenerationStats struct {
	Generation int

	// Avg is the mean of C1, C2 and C3 over the population
	Avg [3]float64

	// Max and Min are the lexicographically best and worst fitness
	Max model.Score
	Min model.Score
}

// tournament draws size individuals with replacement and returns the fittest
func tournament(pop []*Individual, size int, rng *rand.Rand) *Individual {
	best := pop[rng.Intn(len(pop))]
	for i := 1; i < size; i++ {
		cand := pop[rng.Intn(len(pop))]
		if cand.Fitness.Better(best.Fitness) {
			best = cand
		}
	}
	return best
}

// crossover cuts the day sequence at a random point in [1, days-1] and swaps the tails.
// Each day is a self-contained desk mapping, so children need no repair.
// With fewer than two days the children are plain copies of the parents.
func crossover(inst *model.Instance, p1, p2 model.Assignment, rng *rand.Rand) (model.Assignment, model.Assignment) {
	days := inst.Days
	if len(days) < 2 {
		return p1.Clone(), p2.Clone()
	}

	cut := 1 + rng.Intn(len(days)-1)

	c1 := make(model.Assignment, len(days))
	c2 := make(model.Assignment, len(days))
	for i, day := range days {
		if i < cut {
			c1[day] = p1[day].Clone()
			c2[day] = p2[day].Clone()
		} else {
			c1[day] = p2[day].Clone()
			c2[day] = p1[day].Clone()
		}
	}
	return c1, c2
}

// mutate applies one swap to a child the caller owns
func mutate(inst *model.Instance, child model.Assignment, rng *rand.Rand) {
	search.SwapInPlace(inst, child, rng)
}

// populationStats computes the per-generation summary
func populationStats(generation int, pop []*Individual) GenerationStats {
	stats := GenerationStats{Generation: generation}
	if len(pop) == 0 {
		return stats
	}

	stats.Max = pop[0].Fitness
	stats.Min = pop[0].Fitness
	var sum [3]int
	for _, ind := range pop {
		sum[0] += ind.Fitness.C1
		sum[1] += ind.Fitness.C2
		sum[2] += ind.Fitness.C3
		if ind.Fitness.Better(stats.Max) {
			stats.Max = ind.Fitness
		}
		if stats.Min.Better(ind.Fitness) {
			stats.Min = ind.Fitness
		}
	}

	n := float64(len(pop))
	for i := range sum {
		stats.Avg[i] = float64(sum[i]) / n
	}
	return stats
}
