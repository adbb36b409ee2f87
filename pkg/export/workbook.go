package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/jakechorley/deskrota/pkg/core/model"
	"github.com/jakechorley/deskrota/pkg/core/scoring"
)

// Sheet names of the assignment workbook
const (
	AssignmentSheet = "Assignment"
	DaysSheet       = "Days"
	GroupsSheet     = "Groups"
	SummarySheet    = "Summary"
)

// WriteWorkbook writes the assignment reports as an XLSX workbook with one sheet
// per report plus a per-day score breakdown
func WriteWorkbook(path string, inst *model.Instance, a model.Assignment) error {
	f := excelize.NewFile()
	defer f.Close()

	// The default sheet becomes the assignment sheet
	if err := f.SetSheetName("Sheet1", AssignmentSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := writeRows(f, AssignmentSheet, assignmentRows(inst, a)); err != nil {
		return err
	}

	if err := writeSheet(f, DaysSheet, dayRows(inst, a)); err != nil {
		return err
	}
	if err := writeSheet(f, GroupsSheet, meetingDayRows(inst, a)); err != nil {
		return err
	}
	if err := writeSheet(f, SummarySheet, summaryRows(inst, a)); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create workbook directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func dayRows(inst *model.Instance, a model.Assignment) [][]string {
	rows := [][]string{{"Day", "Assigned", "C1", "C2", "C3"}}
	for _, d := range scoring.PerDay(inst, a) {
		rows = append(rows, []string{
			d.Day,
			fmt.Sprint(d.Assigned),
			fmt.Sprint(d.Score.C1),
			fmt.Sprint(d.Score.C2),
			fmt.Sprint(d.Score.C3),
		})
	}
	return rows
}

func writeSheet(f *excelize.File, sheet string, rows [][]string) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	return writeRows(f, sheet, rows)
}

// writeRows writes string rows starting at A1
func writeRows(f *excelize.File, sheet string, rows [][]string) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
