package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/deskrota/pkg/db"
)

// newTestDB connects to DESKROTA_TEST_DATABASE_URL or skips
func newTestDB(t *testing.T) *DB {
	t.Helper()
	connString := os.Getenv("DESKROTA_TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("DESKROTA_TEST_DATABASE_URL not set")
	}

	database, err := NewDB(context.Background(), connString)
	require.NoError(t, err)
	t.Cleanup(database.Close)
	return database
}

func TestMigrationFiles_Sorted(t *testing.T) {
	files, err := migrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "001_create_run.sql", files[0])
}

func TestRunMigrations_Idempotent(t *testing.T) {
	database := newTestDB(t)
	assert.NoError(t, database.RunMigrations(context.Background()))
}

func TestInsertRuns_RoundTrip(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	instance := "test-" + uuid.New().String()
	runs := []db.RunRecord{
		{ID: uuid.New().String(), Instance: instance, Method: "sa", Seed: 1, Iterations: 1000, TopK: 3, C1: 10, C2: 4, C3: -1, RuntimeSec: 0.5, CreatedAt: "2025-01-06T09:00:00Z"},
		{ID: uuid.New().String(), Instance: instance, Method: "ga", Seed: 2, Iterations: 30, TopK: 3, C1: 12, C2: 3, C3: 0, RuntimeSec: 1.5, CreatedAt: "2025-01-06T09:00:01Z"},
	}
	require.NoError(t, database.InsertRuns(ctx, runs))

	stored, err := database.GetRuns(ctx)
	require.NoError(t, err)

	var mine []db.RunRecord
	for _, r := range stored {
		if r.Instance == instance {
			mine = append(mine, r)
		}
	}
	assert.Equal(t, runs, mine)
}

func TestInsertRuns_Empty(t *testing.T) {
	// No connection is needed for an empty batch
	assert.NoError(t, (&DB{}).InsertRuns(context.Background(), nil))
}
