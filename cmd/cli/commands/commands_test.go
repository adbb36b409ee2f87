package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/deskrota/internal/config"
	"github.com/jakechorley/deskrota/pkg/core/model"
	"github.com/jakechorley/deskrota/pkg/db"
	"github.com/jakechorley/deskrota/pkg/export"
	"github.com/jakechorley/deskrota/pkg/instance"
	"github.com/jakechorley/deskrota/pkg/metrics"
)

func newTestApp(t *testing.T) *AppContext {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Anneal.InitialTemp = 10
	cfg.Anneal.Alpha = 0.5
	cfg.Anneal.ItersPerTemp = 20
	cfg.HillClimb.Iterations = 50
	cfg.ILS.MaxIters = 2
	cfg.ILS.LSIters = 20
	cfg.Genetic.Generations = 2
	cfg.Genetic.PopulationSize = 4
	cfg.Experiments.Seeds = []int64{1, 2}
	cfg.Experiments.Workers = 2
	cfg.Experiments.OutputDir = filepath.Join(dir, "results")
	cfg.Store.CSVPath = filepath.Join(dir, "results", "experiments.csv")
	cfg.Metrics.Textfile = filepath.Join(dir, "deskrota.prom")

	return &AppContext{
		Cfg:     cfg,
		Metrics: metrics.NewRecorder(false),
		Logger:  zap.NewNop(),
		Ctx:     context.Background(),
	}
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerateThenValidate(t *testing.T) {
	app := newTestApp(t)
	path := filepath.Join(t.TempDir(), "inst.json")

	out, err := execute(t, GenerateCmd(app), path, "--employees", "8", "--desks", "6", "--group-size", "2", "--seed", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Employees: 8")

	inst, err := instance.Load(path)
	require.NoError(t, err)
	assert.Len(t, inst.Employees, 8)
	assert.Len(t, inst.Desks, 6)

	out, err = execute(t, ValidateCmd(app), path)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
}

func TestGenerate_WithRRule(t *testing.T) {
	app := newTestApp(t)
	path := filepath.Join(t.TempDir(), "inst.json")

	_, err := execute(t, GenerateCmd(app), path, "--rrule", "FREQ=WEEKLY;BYDAY=MO,WE;COUNT=4", "--start", "2026-01-05")
	require.NoError(t, err)

	inst, err := instance.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-01-05", "2026-01-07", "2026-01-12", "2026-01-14"}, inst.Days)
}

func TestGenerate_InvalidStart(t *testing.T) {
	app := newTestApp(t)
	_, err := execute(t, GenerateCmd(app), filepath.Join(t.TempDir(), "inst.json"), "--rrule", "FREQ=DAILY;COUNT=2", "--start", "05/01/2026")
	assert.Error(t, err)
}

func TestSolve_WritesOutputsAndRecordsRun(t *testing.T) {
	app := newTestApp(t)
	dir := t.TempDir()
	instPath := filepath.Join(dir, "small.json")
	_, err := execute(t, GenerateCmd(app), instPath, "--employees", "8", "--desks", "6", "--group-size", "2")
	require.NoError(t, err)

	solutionPath := filepath.Join(dir, "solution.json")
	csvDir := filepath.Join(dir, "csv")
	xlsxPath := filepath.Join(dir, "solution.xlsx")

	out, err := execute(t, SolveCmd(app), instPath,
		"--method", "hc", "--seed", "3",
		"--out", solutionPath, "--csv", csvDir, "--xlsx", xlsxPath, "--report")
	require.NoError(t, err)
	assert.Contains(t, out, "Final score:")
	assert.Contains(t, out, "Total")

	assert.FileExists(t, solutionPath)
	assert.FileExists(t, filepath.Join(csvDir, export.EmployeeAssignmentFile))
	assert.FileExists(t, xlsxPath)
	assert.FileExists(t, app.Cfg.Metrics.Textfile)

	runs, err := db.NewCSVStore(app.Cfg.Store.CSVPath).GetRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "small", runs[0].Instance)
	assert.Equal(t, "hc", runs[0].Method)
	assert.Equal(t, int64(3), runs[0].Seed)

	// The written solution validates against its instance
	out, err = execute(t, ValidateCmd(app), instPath, solutionPath, "--report")
	require.NoError(t, err)
	assert.Contains(t, out, "Solution")
	assert.Contains(t, out, "is valid")
}

func TestSolve_NoStore(t *testing.T) {
	app := newTestApp(t)
	instPath := filepath.Join(t.TempDir(), "small.json")
	_, err := execute(t, GenerateCmd(app), instPath, "--employees", "6", "--desks", "6", "--group-size", "2")
	require.NoError(t, err)

	_, err = execute(t, SolveCmd(app), instPath, "--method", "ga", "--no-store")
	require.NoError(t, err)

	_, err = os.Stat(app.Cfg.Store.CSVPath)
	assert.True(t, os.IsNotExist(err))
}

func TestSolve_UnknownMethod(t *testing.T) {
	app := newTestApp(t)
	instPath := filepath.Join(t.TempDir(), "small.json")
	_, err := execute(t, GenerateCmd(app), instPath)
	require.NoError(t, err)

	_, err = execute(t, SolveCmd(app), instPath, "--method", "tabu")
	assert.Error(t, err)
}

func TestValidate_InvalidSolution(t *testing.T) {
	app := newTestApp(t)
	dir := t.TempDir()
	instPath := filepath.Join(dir, "inst.json")
	_, err := execute(t, GenerateCmd(app), instPath, "--employees", "4", "--desks", "4", "--group-size", "2", "--attendance", "1")
	require.NoError(t, err)

	inst, err := instance.Load(instPath)
	require.NoError(t, err)

	// Everyone on the same desk on the first day
	a := model.Empty(inst)
	for _, employee := range inst.Employees {
		a[inst.Days[0]][employee] = inst.Desks[0]
	}
	solutionPath := filepath.Join(dir, "bad.json")
	require.NoError(t, export.WriteSolutionJSON(solutionPath, inst, a))

	_, err = execute(t, ValidateCmd(app), instPath, solutionPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid")
}

func TestExperimentThenSummarize(t *testing.T) {
	app := newTestApp(t)
	dir := t.TempDir()
	for _, name := range []string{"a.json", "b.json"} {
		_, err := execute(t, GenerateCmd(app), filepath.Join(dir, name), "--employees", "6", "--desks", "5", "--group-size", "2")
		require.NoError(t, err)
	}

	out, err := execute(t, ExperimentCmd(app), "--instances", filepath.Join(dir, "*.json"), "--methods", "local,no_local")
	require.NoError(t, err)
	assert.Contains(t, out, "8 runs recorded")

	out, err = execute(t, SummarizeCmd(app))
	require.NoError(t, err)
	assert.Contains(t, out, "ils")
	assert.Contains(t, out, "sa")

	assert.FileExists(t, filepath.Join(app.Cfg.Experiments.OutputDir, summaryCSVFile))
	assert.FileExists(t, filepath.Join(app.Cfg.Experiments.OutputDir, summaryMarkdownFile))
}

func TestExperiment_InvalidWorkers(t *testing.T) {
	app := newTestApp(t)
	_, err := execute(t, ExperimentCmd(app), "--workers", "0")
	assert.Error(t, err)
}

func TestSummarize_NoRuns(t *testing.T) {
	app := newTestApp(t)
	out, err := execute(t, SummarizeCmd(app))
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded yet.")
}

func TestAppContext_SetStore(t *testing.T) {
	app := newTestApp(t)
	custom := db.NewCSVStore(filepath.Join(t.TempDir(), "other.csv"))
	app.SetStore(custom)

	store, err := app.Store()
	require.NoError(t, err)
	assert.Same(t, custom, store)
	app.Close()
}
