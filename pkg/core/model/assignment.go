package model

import (
	"errors"
	"fmt"
)

// NoDesk marks an employee without a desk on a given day
const NoDesk = ""

// DayAssignment maps employee IDs to desk IDs for a single day
type DayAssignment map[string]string

// Assignment maps day IDs to that day's desk assignment.
//
// Assignments are values: every search step works on a Clone so that discarded
// candidates never share inner maps with retained ones.
type Assignment map[string]DayAssignment

// Empty returns an assignment where every employee has NoDesk on every day
func Empty(inst *Instance) Assignment {
	a := make(Assignment, len(inst.Days))
	for _, day := range inst.Days {
		seats := make(DayAssignment, len(inst.Employees))
		for _, employee := range inst.Employees {
			seats[employee] = NoDesk
		}
		a[day] = seats
	}
	return a
}

// Clone returns a deep copy of the assignment
func (a Assignment) Clone() Assignment {
	if a == nil {
		return nil
	}
	clone := make(Assignment, len(a))
	for day, seats := range a {
		clone[day] = seats.Clone()
	}
	return clone
}

// Clone returns a copy of the day's assignment
func (d DayAssignment) Clone() DayAssignment {
	if d == nil {
		return nil
	}
	clone := make(DayAssignment, len(d))
	for employee, desk := range d {
		clone[employee] = desk
	}
	return clone
}

// DeskOf returns the desk of an employee on a day, or NoDesk
func (a Assignment) DeskOf(day, employee string) string {
	return a[day][employee]
}

// AssignedOn returns the employees holding a desk on the given day, in Employees order
func (a Assignment) AssignedOn(inst *Instance, day string) []string {
	seats := a[day]
	assigned := make([]string, 0, len(seats))
	for _, employee := range inst.Employees {
		if seats[employee] != NoDesk {
			assigned = append(assigned, employee)
		}
	}
	return assigned
}

// Equal reports whether two assignments hold the same desks for the instance's days and employees
func (a Assignment) Equal(inst *Instance, other Assignment) bool {
	for _, day := range inst.Days {
		for _, employee := range inst.Employees {
			if a[day][employee] != other[day][employee] {
				return false
			}
		}
	}
	return true
}

// Validate checks the assignment against the instance:
//   - every day has an entry
//   - every employee has an entry on every day
//   - every assigned desk exists
//   - no desk is used twice on the same day
//
// All findings are joined into a single error; nil means the assignment is valid.
func (a Assignment) Validate(inst *Instance) error {
	var errs []error

	knownDesks := make(map[string]bool, len(inst.Desks))
	for _, desk := range inst.Desks {
		knownDesks[desk] = true
	}

	for _, day := range inst.Days {
		seats, ok := a[day]
		if !ok {
			errs = append(errs, fmt.Errorf("day %s: missing from assignment", day))
			continue
		}

		used := make(map[string]string, len(seats))
		for _, employee := range inst.Employees {
			desk, ok := seats[employee]
			if !ok {
				errs = append(errs, fmt.Errorf("day %s: missing employee %s", day, employee))
				continue
			}
			if desk == NoDesk {
				continue
			}
			if !knownDesks[desk] {
				errs = append(errs, fmt.Errorf("day %s: employee %s has unknown desk %s", day, employee, desk))
				continue
			}
			if holder, taken := used[desk]; taken {
				errs = append(errs, fmt.Errorf("day %s: desk %s assigned to both %s and %s", day, desk, holder, employee))
				continue
			}
			used[desk] = employee
		}
	}

	return errors.Join(errs...)
}
