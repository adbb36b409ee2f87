// Package export writes assignments and experiment summaries to files.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jakechorley/deskrota/pkg/core/model"
)

// solutionFile is the on-disk assignment: day -> employee -> desk, null for no desk
type solutionFile map[string]map[string]*string

// WriteSolutionJSON writes the assignment with every instance day and employee present
func WriteSolutionJSON(path string, inst *model.Instance, a model.Assignment) error {
	out := make(solutionFile, len(inst.Days))
	for _, day := range inst.Days {
		seats := make(map[string]*string, len(inst.Employees))
		for _, employee := range inst.Employees {
			if desk := a.DeskOf(day, employee); desk != model.NoDesk {
				seats[employee] = &desk
			} else {
				seats[employee] = nil
			}
		}
		out[day] = seats
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode solution: %w", err)
	}
	if err := writeFile(path, data); err != nil {
		return fmt.Errorf("failed to write solution: %w", err)
	}
	return nil
}

// ReadSolutionJSON reads an assignment written by WriteSolutionJSON.
// Null desks become model.NoDesk; missing entries are left out so that
// Assignment.Validate can report them.
func ReadSolutionJSON(path string) (model.Assignment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read solution file: %w", err)
	}

	var in solutionFile
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to parse solution file: %w", err)
	}

	a := make(model.Assignment, len(in))
	for day, seats := range in {
		dayAssignment := make(model.DayAssignment, len(seats))
		for employee, desk := range seats {
			if desk == nil {
				dayAssignment[employee] = model.NoDesk
				continue
			}
			dayAssignment[employee] = *desk
		}
		a[day] = dayAssignment
	}
	return a, nil
}

// writeFile writes data, creating parent directories as needed
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
