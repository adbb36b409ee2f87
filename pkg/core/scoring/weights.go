package scoring

import (
	"fmt"

	"github.com/jakechorley/deskrota/pkg/core/model"
)

// Weights collapse a lexicographic score into a single real number:
//
//	scalar = C1*Weights.C1 + C2*Weights.C2 + C3
//
// This is an approximation of lexicographic order used where an additive delta
// is required (annealing acceptance). It only preserves the order when the C2 and
// C3 ranges of the instance stay below the weight gaps; see Safe.
type Weights struct {
	C1 float64 `yaml:"c1" validate:"gt=0"`
	C2 float64 `yaml:"c2" validate:"gt=0"`
}

// DefaultWeights are the weights used by the benchmark experiments
var DefaultWeights = Weights{C1: 10000, C2: 100}

// Scalar collapses a score using the weights
func (w Weights) Scalar(s model.Score) float64 {
	return float64(s.C1)*w.C1 + float64(s.C2)*w.C2 + float64(s.C3)
}

// Validate checks the weights are usable at all
func (w Weights) Validate() error {
	if w.C1 <= 0 || w.C2 <= 0 {
		return fmt.Errorf("weights must be positive (got c1=%g, c2=%g)", w.C1, w.C2)
	}
	if w.C2 >= w.C1 {
		return fmt.Errorf("weight c2 must be smaller than c1 (got c1=%g, c2=%g)", w.C1, w.C2)
	}
	return nil
}

// Safe checks the precondition under which the scalar order matches lexicographic
// order for every assignment of the instance.
//
// With n = days * min(employees, desks) seated employee-days, C2 lies in [0, n] and
// C3 in [-n, 0]. The order is preserved when n < C2 weight and n*C2 + n < C1 weight.
func (w Weights) Safe(inst *model.Instance) error {
	n := float64(len(inst.Days) * min(len(inst.Employees), len(inst.Desks)))

	if n >= w.C2 {
		return fmt.Errorf("c3 range %g can overturn a c2 difference (c2 weight %g)", n, w.C2)
	}
	if n*w.C2+n >= w.C1 {
		return fmt.Errorf("c2/c3 range %g can overturn a c1 difference (c1 weight %g)", n*w.C2+n, w.C1)
	}
	return nil
}
