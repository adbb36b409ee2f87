package db

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewCSVStore(filepath.Join(t.TempDir(), "results", "experiments.csv"))

	runs := []RunRecord{
		{
			ID:         "run-1",
			Instance:   "instance1",
			Method:     "sa",
			Seed:       1,
			Iterations: 1000,
			TopK:       3,
			C1:         40,
			C2:         25,
			C3:         -6,
			RuntimeSec: 0.125,
			CreatedAt:  "2025-01-06T09:00:00Z",
		},
		{
			ID:         "run-2",
			Instance:   "instance1",
			Method:     "ils",
			Seed:       2,
			Iterations: 500,
			TopK:       3,
			C1:         41,
			C2:         20,
			C3:         -2,
			RuntimeSec: 0.5,
			CreatedAt:  "2025-01-06T09:00:01Z",
		},
	}

	require.NoError(t, store.InsertRuns(ctx, runs[:1]))
	require.NoError(t, store.InsertRuns(ctx, runs[1:]))

	loaded, err := store.GetRuns(ctx)
	require.NoError(t, err)
	assert.Equal(t, runs, loaded)

	// Header is only written once
	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "instance,method,seed"))
}

func TestCSVStore_MissingFile(t *testing.T) {
	store := NewCSVStore(filepath.Join(t.TempDir(), "missing.csv"))

	runs, err := store.GetRuns(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestCSVStore_ReadsFilesWithoutIDColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "experiments.csv")
	content := "instance,method,seed,iters,top_k,C1,C2,C3,runtime_sec\n" +
		"instance2,local,3,1000,3,10,5,-1,0.25\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	runs, err := NewCSVStore(path).GetRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "local", runs[0].Method)
	assert.Equal(t, int64(3), runs[0].Seed)
	assert.Equal(t, -1, runs[0].C3)
	assert.Empty(t, runs[0].ID)
}

func TestCSVStore_InvalidNumber(t *testing.T) {
	path := filepath.Join(t.TempDir(), "experiments.csv")
	content := "instance,method,seed,iters,top_k,C1,C2,C3,runtime_sec\n" +
		"instance2,sa,x,1000,3,10,5,-1,0.25\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := NewCSVStore(path).GetRuns(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "invalid seed")
}

func TestCSVStore_ConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	store := NewCSVStore(filepath.Join(t.TempDir(), "experiments.csv"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			assert.NoError(t, store.InsertRuns(ctx, []RunRecord{{Instance: "i", Method: "hc", Seed: seed}}))
		}(int64(i))
	}
	wg.Wait()

	runs, err := store.GetRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 20)
}

func TestCSVStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewCSVStore(filepath.Join(t.TempDir(), "x.csv")).InsertRuns(ctx, []RunRecord{{}})
	assert.ErrorIs(t, err, context.Canceled)
}
