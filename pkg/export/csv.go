package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jakechorley/deskrota/pkg/core/model"
	"github.com/jakechorley/deskrota/pkg/core/scoring"
)

// File names written by WriteCSV
const (
	EmployeeAssignmentFile = "EmployeeAssignment.csv"
	MeetingDayFile         = "Groups_Meeting_day.csv"
	SummaryFile            = "Summary.csv"
)

// noDeskLabel marks unassigned cells in exported tables
const noDeskLabel = "none"

// WriteCSV writes the three assignment reports into dir:
//   - EmployeeAssignment.csv: one row per employee, one column per day
//   - Groups_Meeting_day.csv: the day each group has most members in
//   - Summary.csv: seated employee-days, preference hits, isolated employees, C2 and C3
func WriteCSV(dir string, inst *model.Instance, a model.Assignment) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	files := []struct {
		name string
		rows [][]string
	}{
		{EmployeeAssignmentFile, assignmentRows(inst, a)},
		{MeetingDayFile, meetingDayRows(inst, a)},
		{SummaryFile, summaryRows(inst, a)},
	}

	for _, file := range files {
		if err := writeCSVFile(filepath.Join(dir, file.name), file.rows); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.name, err)
		}
	}
	return nil
}

func assignmentRows(inst *model.Instance, a model.Assignment) [][]string {
	header := append([]string{"Employee"}, inst.Days...)
	rows := [][]string{header}

	for _, employee := range inst.Employees {
		row := []string{employee}
		for _, day := range inst.Days {
			desk := a.DeskOf(day, employee)
			if desk == model.NoDesk {
				desk = noDeskLabel
			}
			row = append(row, desk)
		}
		rows = append(rows, row)
	}
	return rows
}

func meetingDayRows(inst *model.Instance, a model.Assignment) [][]string {
	meeting := scoring.MeetingDays(inst, a)

	rows := [][]string{{"Group", "MeetingDay"}}
	for _, group := range inst.Groups {
		rows = append(rows, []string{group.ID, meeting[group.ID]})
	}
	return rows
}

func summaryRows(inst *model.Instance, a model.Assignment) [][]string {
	score := scoring.Evaluate(inst, a)
	isolated, _ := scoring.IsolatedEmployees(inst, a)

	return [][]string{
		{"Valid_assignments", "Employee_preferences", "Isolated_employees", "C2", "C3"},
		{
			strconv.Itoa(scoring.ValidAssignments(inst, a)),
			strconv.Itoa(score.C1),
			strconv.Itoa(isolated),
			strconv.Itoa(score.C2),
			strconv.Itoa(score.C3),
		},
	}
}

func writeCSVFile(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}
