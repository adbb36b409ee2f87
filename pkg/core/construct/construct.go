// Package construct builds initial desk assignments with a randomized greedy heuristic.
package construct

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/jakechorley/deskrota/pkg/core/model"
)

// ErrInvalidOptions is returned when the builder options cannot be used
var ErrInvalidOptions = errors.New("invalid construction options")

// Options controls the constructive heuristic
type Options struct {
	// Seed drives every random decision of the build
	Seed int64

	// Randomize shuffles the greedy order each day and samples among the top candidates.
	// When false the build is fully deterministic and Seed is ignored.
	Randomize bool

	// TopK is the number of leading preferred desks sampled from in randomized mode
	TopK int
}

// Validate checks the options
func (o Options) Validate() error {
	if o.TopK < 1 {
		return fmt.Errorf("%w: top-k must be >= 1 (got %d)", ErrInvalidOptions, o.TopK)
	}
	return nil
}

// Build creates an assignment day by day.
//
// For each day the present employees are visited (shuffled in randomized mode) and
// each takes, in order of preference:
//  1. a free preferred desk in their group's target zone
//  2. any free preferred desk
//  3. any free desk, in the target zone if one is free
//
// A group's target zone is the zone most used by its members so far that day.
// Employees only end up without a desk when every desk is taken.
func Build(inst *model.Instance, opts Options) (model.Assignment, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	a := model.Empty(inst)

	for _, day := range inst.Days {
		b := newDayBuilder(inst, opts, rng)

		present := inst.PresentOn(day)
		if opts.Randomize {
			rng.Shuffle(len(present), func(i, j int) {
				present[i], present[j] = present[j], present[i]
			})
		}

		for _, employee := range present {
			desk := b.choose(employee)
			if desk == model.NoDesk {
				continue
			}
			a[day][employee] = desk
			b.take(employee, desk)
		}
	}

	return a, nil
}
