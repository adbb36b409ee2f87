package db

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// runHeader is the experiments.csv column layout
var runHeader = []string{
	"instance", "method", "seed", "iters", "top_k", "C1", "C2", "C3", "runtime_sec", "id", "created_at",
}

// CSVStore keeps run records in a single CSV file, appending on insert
type CSVStore struct {
	path string
	mu   sync.Mutex
}

// NewCSVStore creates a store backed by the file at path.
// The file and its directory are created on first insert.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the backing file
func (s *CSVStore) Path() string {
	return s.path
}

// GetRuns reads every stored run. A missing file holds no runs.
func (s *CSVStore) GetRuns(ctx context.Context) ([]RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open runs file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read runs header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}

	var runs []RunRecord
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read runs file: %w", err)
		}

		run, err := parseRunRow(columns, row)
		if err != nil {
			return nil, fmt.Errorf("runs file line %d: %w", line, err)
		}
		runs = append(runs, run)
	}

	return runs, nil
}

// InsertRuns appends runs, writing the header if the file is new
func (s *CSVStore) InsertRuns(ctx context.Context, runs []RunRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create runs directory: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open runs file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat runs file: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(runHeader); err != nil {
			return fmt.Errorf("failed to write runs header: %w", err)
		}
	}
	for _, run := range runs {
		if err := w.Write(formatRunRow(run)); err != nil {
			return fmt.Errorf("failed to write run %s: %w", run.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush runs file: %w", err)
	}

	return nil
}

func formatRunRow(run RunRecord) []string {
	return []string{
		run.Instance,
		run.Method,
		strconv.FormatInt(run.Seed, 10),
		strconv.Itoa(run.Iterations),
		strconv.Itoa(run.TopK),
		strconv.Itoa(run.C1),
		strconv.Itoa(run.C2),
		strconv.Itoa(run.C3),
		strconv.FormatFloat(run.RuntimeSec, 'f', 6, 64),
		run.ID,
		run.CreatedAt,
	}
}

// parseRunRow reads a row by column name so files written by older tools
// (without id and created_at) still load
func parseRunRow(columns map[string]int, row []string) (RunRecord, error) {
	get := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var run RunRecord
	var err error

	run.Instance = get("instance")
	run.Method = get("method")
	run.ID = get("id")
	run.CreatedAt = get("created_at")

	if run.Seed, err = strconv.ParseInt(get("seed"), 10, 64); err != nil {
		return run, fmt.Errorf("invalid seed: %w", err)
	}
	if run.Iterations, err = strconv.Atoi(get("iters")); err != nil {
		return run, fmt.Errorf("invalid iters: %w", err)
	}
	if run.TopK, err = strconv.Atoi(get("top_k")); err != nil {
		return run, fmt.Errorf("invalid top_k: %w", err)
	}
	if run.C1, err = strconv.Atoi(get("C1")); err != nil {
		return run, fmt.Errorf("invalid C1: %w", err)
	}
	if run.C2, err = strconv.Atoi(get("C2")); err != nil {
		return run, fmt.Errorf("invalid C2: %w", err)
	}
	if run.C3, err = strconv.Atoi(get("C3")); err != nil {
		return run, fmt.Errorf("invalid C3: %w", err)
	}
	if run.RuntimeSec, err = strconv.ParseFloat(get("runtime_sec"), 64); err != nil {
		return run, fmt.Errorf("invalid runtime_sec: %w", err)
	}

	return run, nil
}
