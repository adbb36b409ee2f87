package model

import "fmt"

// Score is the lexicographic objective (C1, C2, C3). Higher is better and
// C1 dominates C2 which dominates C3.
//
//   - C1 counts employee-days seated at a preferred desk
//   - C2 sums, per day and group, the largest number of members sharing one zone
//   - C3 sums, per day, the negative spread between the most and least occupied zones
type Score struct {
	C1 int
	C2 int
	C3 int
}

// Compare returns -1, 0 or +1 depending on whether s is worse than, equal to or better than other
func (s Score) Compare(other Score) int {
	switch {
	case s.C1 != other.C1:
		return sign(s.C1 - other.C1)
	case s.C2 != other.C2:
		return sign(s.C2 - other.C2)
	default:
		return sign(s.C3 - other.C3)
	}
}

// Better reports whether s is strictly better than other
func (s Score) Better(other Score) bool {
	return s.Compare(other) > 0
}

// AtLeast reports whether s is better than or equal to other
func (s Score) AtLeast(other Score) bool {
	return s.Compare(other) >= 0
}

func (s Score) String() string {
	return fmt.Sprintf("(%d, %d, %d)", s.C1, s.C2, s.C3)
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
