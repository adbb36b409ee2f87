package model

import (
	"fmt"
	"slices"
)

// Group is a set of employees that should sit together
type Group struct {
	ID      string
	Members []string
}

// Zone is a named set of desks
type Zone struct {
	ID    string
	Desks []string
}

// Instance holds the static problem data for a planning horizon.
// It is read-only once built by NewInstance and can be shared between runs.
type Instance struct {
	Employees []string
	Desks     []string
	Days      []string

	// Groups and Zones are kept in declaration order so every scan over them is deterministic
	Groups []Group
	Zones  []Zone

	// Preferences maps an employee to their preferred desks, most preferred first
	Preferences map[string][]string

	// Attendance maps an employee to the days they are present.
	// Employees without an entry are present every day.
	Attendance map[string][]string

	deskZone      map[string]string
	employeeGroup map[string]string
	preferred     map[string]map[string]bool
	present       map[string]map[string]bool
	zoneIndex     map[string]int
}

// InstanceData is the raw input for NewInstance
type InstanceData struct {
	Employees   []string
	Desks       []string
	Days        []string
	Groups      []Group
	Zones       []Zone
	Preferences map[string][]string
	Attendance  map[string][]string
}

// NewInstance builds an Instance and its lookup tables.
// Only structural problems that would make lookups ambiguous are reported here;
// reference checks against the declared sets belong to the instance loader.
func NewInstance(data InstanceData) (*Instance, error) {
	inst := &Instance{
		Employees:     slices.Clone(data.Employees),
		Desks:         slices.Clone(data.Desks),
		Days:          slices.Clone(data.Days),
		Groups:        make([]Group, len(data.Groups)),
		Zones:         make([]Zone, len(data.Zones)),
		Preferences:   make(map[string][]string, len(data.Preferences)),
		Attendance:    make(map[string][]string, len(data.Attendance)),
		deskZone:      make(map[string]string),
		employeeGroup: make(map[string]string),
		preferred:     make(map[string]map[string]bool, len(data.Preferences)),
		present:       make(map[string]map[string]bool, len(data.Attendance)),
		zoneIndex:     make(map[string]int, len(data.Zones)),
	}

	for i, zone := range data.Zones {
		if _, exists := inst.zoneIndex[zone.ID]; exists {
			return nil, fmt.Errorf("zone %q declared more than once", zone.ID)
		}
		inst.zoneIndex[zone.ID] = i
		inst.Zones[i] = Zone{ID: zone.ID, Desks: slices.Clone(zone.Desks)}

		for _, desk := range zone.Desks {
			if other, exists := inst.deskZone[desk]; exists {
				return nil, fmt.Errorf("desk %q belongs to zones %q and %q", desk, other, zone.ID)
			}
			inst.deskZone[desk] = zone.ID
		}
	}

	for i, group := range data.Groups {
		inst.Groups[i] = Group{ID: group.ID, Members: slices.Clone(group.Members)}

		for _, member := range group.Members {
			if other, exists := inst.employeeGroup[member]; exists && other != group.ID {
				return nil, fmt.Errorf("employee %q belongs to groups %q and %q", member, other, group.ID)
			}
			inst.employeeGroup[member] = group.ID
		}
	}

	for employee, desks := range data.Preferences {
		inst.Preferences[employee] = slices.Clone(desks)
		set := make(map[string]bool, len(desks))
		for _, desk := range desks {
			set[desk] = true
		}
		inst.preferred[employee] = set
	}

	for employee, days := range data.Attendance {
		inst.Attendance[employee] = slices.Clone(days)
		set := make(map[string]bool, len(days))
		for _, day := range days {
			set[day] = true
		}
		inst.present[employee] = set
	}

	return inst, nil
}

// ZoneOf returns the zone of a desk, or "" if the desk has no zone
func (inst *Instance) ZoneOf(desk string) string {
	return inst.deskZone[desk]
}

// ZoneIndex returns the position of a zone in Zones, or -1 if unknown
func (inst *Instance) ZoneIndex(zone string) int {
	idx, ok := inst.zoneIndex[zone]
	if !ok {
		return -1
	}
	return idx
}

// GroupOf returns the group of an employee, or "" if the employee is in no group
func (inst *Instance) GroupOf(employee string) string {
	return inst.employeeGroup[employee]
}

// Prefers reports whether desk is in the employee's preference list
func (inst *Instance) Prefers(employee, desk string) bool {
	return inst.preferred[employee][desk]
}

// IsPresent reports whether the employee attends on the given day
func (inst *Instance) IsPresent(employee, day string) bool {
	days, ok := inst.present[employee]
	if !ok {
		return true
	}
	return days[day]
}

// PresentOn returns the employees attending on the given day, in Employees order
func (inst *Instance) PresentOn(day string) []string {
	present := make([]string, 0, len(inst.Employees))
	for _, employee := range inst.Employees {
		if inst.IsPresent(employee, day) {
			present = append(present, employee)
		}
	}
	return present
}
