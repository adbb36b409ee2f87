package db

import "context"

// RunStore defines the interface for run result storage.
// Both the CSV-backed db.CSVStore and postgres.DB implement this interface.
type RunStore interface {
	GetRuns(ctx context.Context) ([]RunRecord, error)
	InsertRuns(ctx context.Context, runs []RunRecord) error
}
