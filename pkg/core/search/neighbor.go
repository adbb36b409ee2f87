package search

import (
	"math/rand"

	"github.com/jakechorley/deskrota/pkg/core/model"
)

// SwapNeighbor returns a copy of the assignment where two employees seated on the
// same random day have exchanged desks.
//
// The input is never modified. If the chosen day has fewer than two seated
// employees (or there are no days) the copy is returned unchanged.
func SwapNeighbor(inst *model.Instance, a model.Assignment, rng *rand.Rand) model.Assignment {
	neighbor := a.Clone()
	SwapInPlace(inst, neighbor, rng)
	return neighbor
}

// SwapInPlace applies one random desk swap directly to a. Callers must own a.
// Returns false when no swap was possible.
func SwapInPlace(inst *model.Instance, a model.Assignment, rng *rand.Rand) bool {
	if len(inst.Days) == 0 {
		return false
	}

	day := inst.Days[rng.Intn(len(inst.Days))]
	seated := a.AssignedOn(inst, day)
	if len(seated) < 2 {
		return false
	}

	// Two distinct positions
	i := rng.Intn(len(seated))
	j := rng.Intn(len(seated) - 1)
	if j >= i {
		j++
	}

	seats := a[day]
	first, second := seated[i], seated[j]
	seats[first], seats[second] = seats[second], seats[first]

	return true
}
