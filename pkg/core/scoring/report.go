package scoring

import "github.com/jakechorley/deskrota/pkg/core/model"

// DayScore is the score contribution of a single day
type DayScore struct {
	Day      string
	Assigned int
	Score    model.Score
}

// PerDay breaks the score down by day, in instance order.
// The day scores sum to Evaluate(inst, a).
func PerDay(inst *model.Instance, a model.Assignment) []DayScore {
	zoneCounts := make([]int, len(inst.Zones))
	groupCounts := make([]int, len(inst.Zones))

	days := make([]DayScore, 0, len(inst.Days))
	for _, day := range inst.Days {
		seats := a[day]
		c1, c2, c3 := evaluateDay(inst, seats, zoneCounts, groupCounts)
		days = append(days, DayScore{
			Day:      day,
			Assigned: len(a.AssignedOn(inst, day)),
			Score:    model.Score{C1: c1, C2: c2, C3: c3},
		})
	}
	return days
}

// ValidAssignments counts employee-days holding a desk
func ValidAssignments(inst *model.Instance, a model.Assignment) int {
	total := 0
	for _, day := range inst.Days {
		total += len(a.AssignedOn(inst, day))
	}
	return total
}

// IsolatedEmployees counts group members seated in a zone where no other member
// of their group sits that day. Returns the total and the count per day.
func IsolatedEmployees(inst *model.Instance, a model.Assignment) (int, map[string]int) {
	total := 0
	perDay := make(map[string]int, len(inst.Days))

	for _, day := range inst.Days {
		seats := a[day]

		// Count members per (group, zone)
		counts := make(map[[2]string]int)
		for _, employee := range inst.Employees {
			desk := seats[employee]
			group := inst.GroupOf(employee)
			zone := inst.ZoneOf(desk)
			if desk == model.NoDesk || group == "" || zone == "" {
				continue
			}
			counts[[2]string{group, zone}]++
		}

		isolated := 0
		for _, employee := range inst.Employees {
			desk := seats[employee]
			group := inst.GroupOf(employee)
			zone := inst.ZoneOf(desk)
			if desk == model.NoDesk || group == "" || zone == "" {
				continue
			}
			if counts[[2]string{group, zone}] <= 1 {
				isolated++
			}
		}

		perDay[day] = isolated
		total += isolated
	}

	return total, perDay
}

// MeetingDays picks, for every group, the day on which most of its members hold a desk.
// Ties go to the earliest day. Groups are keyed by ID.
func MeetingDays(inst *model.Instance, a model.Assignment) map[string]string {
	result := make(map[string]string, len(inst.Groups))

	for _, group := range inst.Groups {
		bestDay := ""
		bestCount := -1
		for _, day := range inst.Days {
			count := 0
			for _, member := range group.Members {
				if a[day][member] != model.NoDesk {
					count++
				}
			}
			if count > bestCount {
				bestCount = count
				bestDay = day
			}
		}
		result[group.ID] = bestDay
	}

	return result
}
