// Package scoring evaluates desk assignments against the lexicographic objective.
package scoring

import "github.com/jakechorley/deskrota/pkg/core/model"

// Evaluate computes the (C1, C2, C3) score of an assignment.
//
// It is a pure function of its inputs. Days, employees, groups and zones are
// scanned in instance order, so equal inputs always produce equal scores.
// Employees without a desk, and desks without a zone, contribute nothing to the
// components they cannot take part in.
func Evaluate(inst *model.Instance, a model.Assignment) model.Score {
	var score model.Score

	zoneCounts := make([]int, len(inst.Zones))
	groupCounts := make([]int, len(inst.Zones))

	for _, day := range inst.Days {
		seats := a[day]
		c1, c2, c3 := evaluateDay(inst, seats, zoneCounts, groupCounts)
		score.C1 += c1
		score.C2 += c2
		score.C3 += c3
	}

	return score
}

// evaluateDay scores a single day. zoneCounts and groupCounts are scratch buffers
// sized to the number of zones.
func evaluateDay(inst *model.Instance, seats model.DayAssignment, zoneCounts, groupCounts []int) (c1, c2, c3 int) {
	clear(zoneCounts)

	// C1 and zone occupancy
	for _, employee := range inst.Employees {
		desk := seats[employee]
		if desk == model.NoDesk {
			continue
		}
		if inst.Prefers(employee, desk) {
			c1++
		}
		if z := inst.ZoneIndex(inst.ZoneOf(desk)); z >= 0 {
			zoneCounts[z]++
		}
	}

	// C2: largest single-zone cluster of each group
	for _, group := range inst.Groups {
		clear(groupCounts)
		best := 0
		for _, member := range group.Members {
			desk := seats[member]
			if desk == model.NoDesk {
				continue
			}
			z := inst.ZoneIndex(inst.ZoneOf(desk))
			if z < 0 {
				continue
			}
			groupCounts[z]++
			if groupCounts[z] > best {
				best = groupCounts[z]
			}
		}
		c2 += best
	}

	// C3: negative spread across occupied zones
	c3 = -spread(zoneCounts)

	return c1, c2, c3
}

// spread returns max - min over the non-zero counts, or 0 if all counts are zero
func spread(counts []int) int {
	lo, hi := 0, 0
	seen := false
	for _, c := range counts {
		if c == 0 {
			continue
		}
		if !seen {
			lo, hi = c, c
			seen = true
			continue
		}
		lo = min(lo, c)
		hi = max(hi, c)
	}
	return hi - lo
}
