// Package instance loads, validates and generates desk assignment instances.
//
// The JSON layout follows the benchmark instance files:
//
//	{
//	  "Employees":   ["E1", "E2"],
//	  "Desks":       ["D1", "D2"],
//	  "Days":        ["L", "Ma"],
//	  "Desks_E":     {"E1": ["D1"]},        // preferences, most preferred first
//	  "Employees_G": {"G1": ["E1", "E2"]},  // groups
//	  "Days_E":      {"E1": ["L"]},         // attendance
//	  "Desks_Z":     {"Z1": ["D1", "D2"]}   // zones
//	}
package instance

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/jakechorley/deskrota/pkg/core/model"
)

// Raw is the on-disk representation of an instance
type Raw struct {
	Employees   []string            `json:"Employees" validate:"unique,dive,required"`
	Desks       []string            `json:"Desks" validate:"unique,dive,required"`
	Days        []string            `json:"Days" validate:"unique,dive,required"`
	Preferences map[string][]string `json:"Desks_E,omitempty" validate:"dive,keys,required,endkeys,dive,required"`
	Groups      map[string][]string `json:"Employees_G,omitempty" validate:"dive,keys,required,endkeys,dive,required"`
	Attendance  map[string][]string `json:"Days_E,omitempty" validate:"dive,keys,required,endkeys,dive,required"`
	Zones       map[string][]string `json:"Desks_Z,omitempty" validate:"dive,keys,required,endkeys,dive,required"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load reads, validates and converts an instance file
func Load(path string) (*model.Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read instance file: %w", err)
	}

	inst, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("instance %s: %w", path, err)
	}
	return inst, nil
}

// Parse decodes, validates and converts instance JSON
func Parse(data []byte) (*model.Instance, error) {
	var raw Raw
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse instance: %w", err)
	}

	if err := Validate(&raw); err != nil {
		return nil, err
	}

	return ToModel(&raw)
}

// Validate checks the instance structure and that every reference points at a
// declared employee, desk or day
func Validate(raw *Raw) error {
	if err := validate.Struct(raw); err != nil {
		return fmt.Errorf("instance validation failed: %w", err)
	}

	employees := toSet(raw.Employees)
	desks := toSet(raw.Desks)
	days := toSet(raw.Days)

	for _, employee := range sortedKeys(raw.Preferences) {
		if !employees[employee] {
			return fmt.Errorf("preferences reference unknown employee %q", employee)
		}
		for _, desk := range raw.Preferences[employee] {
			if !desks[desk] {
				return fmt.Errorf("preferences of %q reference unknown desk %q", employee, desk)
			}
		}
	}

	memberOf := make(map[string]string)
	for _, group := range sortedKeys(raw.Groups) {
		for _, member := range raw.Groups[group] {
			if !employees[member] {
				return fmt.Errorf("group %q references unknown employee %q", group, member)
			}
			if other, exists := memberOf[member]; exists {
				return fmt.Errorf("employee %q belongs to groups %q and %q", member, other, group)
			}
			memberOf[member] = group
		}
	}

	for _, employee := range sortedKeys(raw.Attendance) {
		if !employees[employee] {
			return fmt.Errorf("attendance references unknown employee %q", employee)
		}
		for _, day := range raw.Attendance[employee] {
			if !days[day] {
				return fmt.Errorf("attendance of %q references unknown day %q", employee, day)
			}
		}
	}

	zoneOf := make(map[string]string)
	for _, zone := range sortedKeys(raw.Zones) {
		for _, desk := range raw.Zones[zone] {
			if !desks[desk] {
				return fmt.Errorf("zone %q references unknown desk %q", zone, desk)
			}
			if other, exists := zoneOf[desk]; exists {
				return fmt.Errorf("desk %q belongs to zones %q and %q", desk, other, zone)
			}
			zoneOf[desk] = zone
		}
	}

	return nil
}

// ToModel converts a validated Raw instance. Groups and zones are ordered by ID
// since JSON objects carry no order.
func ToModel(raw *Raw) (*model.Instance, error) {
	data := model.InstanceData{
		Employees:   raw.Employees,
		Desks:       raw.Desks,
		Days:        raw.Days,
		Preferences: raw.Preferences,
		Attendance:  raw.Attendance,
	}

	for _, id := range sortedKeys(raw.Groups) {
		data.Groups = append(data.Groups, model.Group{ID: id, Members: raw.Groups[id]})
	}
	for _, id := range sortedKeys(raw.Zones) {
		data.Zones = append(data.Zones, model.Zone{ID: id, Desks: raw.Zones[id]})
	}

	inst, err := model.NewInstance(data)
	if err != nil {
		return nil, fmt.Errorf("failed to build instance: %w", err)
	}
	return inst, nil
}

// FromModel converts an instance back to its on-disk representation
func FromModel(inst *model.Instance) *Raw {
	raw := &Raw{
		Employees:   inst.Employees,
		Desks:       inst.Desks,
		Days:        inst.Days,
		Preferences: inst.Preferences,
		Attendance:  inst.Attendance,
		Groups:      make(map[string][]string, len(inst.Groups)),
		Zones:       make(map[string][]string, len(inst.Zones)),
	}
	for _, group := range inst.Groups {
		raw.Groups[group.ID] = group.Members
	}
	for _, zone := range inst.Zones {
		raw.Zones[zone.ID] = zone.Desks
	}
	return raw
}

// Write stores an instance as indented JSON
func Write(path string, inst *model.Instance) error {
	data, err := json.MarshalIndent(FromModel(inst), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode instance: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write instance file: %w", err)
	}
	return nil
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
