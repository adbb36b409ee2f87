package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/deskrota/pkg/db"
)

// GetRuns retrieves all run records, oldest first
func (d *DB) GetRuns(ctx context.Context) ([]db.RunRecord, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, instance, method, seed, iters, top_k, c1, c2, c3, runtime_sec, created_at
		FROM run
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []db.RunRecord
	for rows.Next() {
		var r db.RunRecord
		var createdAt time.Time
		if err := rows.Scan(&r.ID, &r.Instance, &r.Method, &r.Seed, &r.Iterations, &r.TopK,
			&r.C1, &r.C2, &r.C3, &r.RuntimeSec, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// InsertRuns inserts run records in a single batch
func (d *DB) InsertRuns(ctx context.Context, runs []db.RunRecord) error {
	if len(runs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range runs {
		createdAt := time.Now().UTC()
		if r.CreatedAt != "" {
			parsed, err := time.Parse(time.RFC3339, r.CreatedAt)
			if err != nil {
				return fmt.Errorf("invalid created_at for run %s: %w", r.ID, err)
			}
			createdAt = parsed
		}
		batch.Queue(`
			INSERT INTO run (id, instance, method, seed, iters, top_k, c1, c2, c3, runtime_sec, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, r.ID, r.Instance, r.Method, r.Seed, r.Iterations, r.TopK, r.C1, r.C2, r.C3, r.RuntimeSec, createdAt)
	}

	if err := d.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert runs: %w", err)
	}
	return nil
}
