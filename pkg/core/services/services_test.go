package services

import (
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/deskrota/internal/config"
	"github.com/jakechorley/deskrota/pkg/core/model"
	"github.com/jakechorley/deskrota/pkg/core/search"
	"github.com/jakechorley/deskrota/pkg/db"
	"github.com/jakechorley/deskrota/pkg/instance"
	"github.com/jakechorley/deskrota/pkg/metrics"
)

// mockRunStore is an in-memory RunStore
type mockRunStore struct {
	mu        sync.Mutex
	runs      []db.RunRecord
	inserts   int
	getErr    error
	insertErr error
}

func (m *mockRunStore) GetRuns(ctx context.Context) ([]db.RunRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]db.RunRecord(nil), m.runs...), nil
}

func (m *mockRunStore) InsertRuns(ctx context.Context, runs []db.RunRecord) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	m.runs = append(m.runs, runs...)
	return nil
}

// fastConfig keeps every method cheap enough for unit tests
func fastConfig() *config.Config {
	cfg := config.Default()
	cfg.HillClimb.Iterations = 50
	cfg.Anneal.InitialTemp = 10
	cfg.Anneal.FinalTemp = 1
	cfg.Anneal.Alpha = 0.5
	cfg.Anneal.ItersPerTemp = 20
	cfg.ILS.MaxIters = 3
	cfg.ILS.LSIters = 20
	cfg.Genetic.Generations = 3
	cfg.Genetic.PopulationSize = 6
	cfg.Experiments.Seeds = []int64{1, 2}
	return cfg
}

func testInstance(t *testing.T, seed int64) *model.Instance {
	t.Helper()
	opts := instance.DefaultGenerateOptions()
	opts.Employees = 10
	opts.Desks = 8
	opts.GroupSize = 3
	inst, err := instance.Generate(opts, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return inst
}

func TestResolveMethod(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"hc", search.MethodHillClimb},
		{"SA", search.MethodAnneal},
		{" ils ", search.MethodILS},
		{"ga", search.MethodGenetic},
		{"local", search.MethodILS},
		{"no_local", search.MethodAnneal},
		{"ent1", search.MethodHillClimb},
		{"ENT1_LOCAL", search.MethodHillClimb},
		{"ent1_meta", search.MethodAnneal},
		{"ENT1_SA", search.MethodAnneal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveMethod(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveMethod_Unknown(t *testing.T) {
	_, err := ResolveMethod("tabu")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestResolveMethods_DropsDuplicates(t *testing.T) {
	methods, err := ResolveMethods([]string{"no_local", "sa", "local", "ga", "ils"})
	require.NoError(t, err)
	assert.Equal(t, []string{search.MethodAnneal, search.MethodILS, search.MethodGenetic}, methods)
}

func TestSolve_AllMethods(t *testing.T) {
	inst := testInstance(t, 1)
	cfg := fastConfig()

	for _, method := range []string{"hc", "sa", "ils", "ga"} {
		t.Run(method, func(t *testing.T) {
			store := &mockRunStore{}
			result, err := Solve(context.Background(), store, inst, cfg, zap.NewNop(), SolveRequest{
				InstanceName: "inst",
				Method:       method,
				Seed:         3,
			}, Hooks{})
			require.NoError(t, err)

			require.NoError(t, result.Assignment.Validate(inst))
			assert.False(t, result.Initial.Better(result.Score), "final score must not be worse than the start")

			require.Len(t, store.runs, 1)
			run := store.runs[0]
			assert.Equal(t, "inst", run.Instance)
			assert.Equal(t, method, run.Method)
			assert.Equal(t, int64(3), run.Seed)
			assert.Equal(t, result.Score.C1, run.C1)
			assert.Equal(t, result.Score.C2, run.C2)
			assert.Equal(t, result.Score.C3, run.C3)
			assert.NotEmpty(t, run.ID)
			assert.Equal(t, cfg.Construct.TopK, run.TopK)
		})
	}
}

func TestSolve_IterationsColumn(t *testing.T) {
	inst := testInstance(t, 1)
	cfg := fastConfig()

	tests := map[string]int{
		"hc":  cfg.HillClimb.Iterations,
		"sa":  cfg.Anneal.ItersPerTemp,
		"ils": cfg.ILS.MaxIters,
		"ga":  cfg.Genetic.Generations,
	}

	for method, want := range tests {
		result, err := Solve(context.Background(), nil, inst, cfg, zap.NewNop(), SolveRequest{Method: method, Seed: 1}, Hooks{})
		require.NoError(t, err)
		assert.Equal(t, want, result.Run.Iterations, method)
	}
}

func TestSolve_Reproducible(t *testing.T) {
	inst := testInstance(t, 2)
	cfg := fastConfig()

	a, err := Solve(context.Background(), nil, inst, cfg, zap.NewNop(), SolveRequest{Method: "ils", Seed: 9}, Hooks{})
	require.NoError(t, err)
	b, err := Solve(context.Background(), nil, inst, cfg, zap.NewNop(), SolveRequest{Method: "ils", Seed: 9}, Hooks{})
	require.NoError(t, err)

	assert.True(t, a.Assignment.Equal(inst, b.Assignment))
	assert.Equal(t, a.Score, b.Score)
}

func TestRunSeeds(t *testing.T) {
	for _, seed := range []int64{0, 1, 2, 42} {
		build, searchSeed := runSeeds(seed)
		assert.NotEqual(t, build, searchSeed, "seed %d", seed)
		assert.NotEqual(t, seed, searchSeed, "seed %d", seed)

		again, searchAgain := runSeeds(seed)
		assert.Equal(t, build, again)
		assert.Equal(t, searchSeed, searchAgain)
	}
}

func TestSummarizeRuns_FoldsLegacyLabels(t *testing.T) {
	summaries := SummarizeRuns([]db.RunRecord{
		{Instance: "a", Method: "ENT1_LOCAL", Seed: 1, C1: 2},
		{Instance: "a", Method: "hc", Seed: 2, C1: 1},
		{Instance: "a", Method: "ENT1_SA", Seed: 3, C1: 1},
	})

	require.Len(t, summaries, 2)
	assert.Equal(t, search.MethodHillClimb, summaries[0].Method)
	assert.Equal(t, 2, summaries[0].Runs)
	assert.Equal(t, int64(1), summaries[0].BestSeed)
	assert.Equal(t, search.MethodAnneal, summaries[1].Method)
	assert.Equal(t, 1, summaries[1].Runs)
}

func TestSolve_UnknownMethod(t *testing.T) {
	store := &mockRunStore{}
	_, err := Solve(context.Background(), store, testInstance(t, 1), fastConfig(), zap.NewNop(), SolveRequest{Method: "tabu"}, Hooks{})
	assert.ErrorIs(t, err, ErrUnknownMethod)
	assert.Empty(t, store.runs)
}

func TestSolve_StoreError(t *testing.T) {
	store := &mockRunStore{insertErr: errors.New("disk full")}
	_, err := Solve(context.Background(), store, testInstance(t, 1), fastConfig(), zap.NewNop(), SolveRequest{Method: "hc", Seed: 1}, Hooks{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestSolve_HooksReceiveEvents(t *testing.T) {
	var events []search.Event
	recorder := metrics.NewRecorder(false)
	hooks := Hooks{
		Observer: search.ObserverFunc(func(e search.Event) { events = append(events, e) }),
		Metrics:  recorder,
	}

	_, err := Solve(context.Background(), nil, testInstance(t, 1), fastConfig(), zap.NewNop(), SolveRequest{Method: "hc", Seed: 1}, hooks)
	require.NoError(t, err)

	require.NotEmpty(t, events)
	for _, e := range events {
		assert.Equal(t, search.MethodHillClimb, e.Method)
	}

	families, err := recorder.Registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestHooks_Observer(t *testing.T) {
	assert.Nil(t, Hooks{}.observer())

	recorder := metrics.NewRecorder(false)
	assert.Equal(t, search.Observer(recorder), Hooks{Metrics: recorder}.observer())

	calls := 0
	obs := search.ObserverFunc(func(search.Event) { calls++ })
	combined := Hooks{Observer: obs, Metrics: recorder}.observer()
	combined.Observe(search.Event{Method: search.MethodAnneal})
	assert.Equal(t, 1, calls)
}

func writeInstances(t *testing.T, dir string, n int) {
	t.Helper()
	for i := range n {
		path := filepath.Join(dir, "inst"+string(rune('a'+i))+".json")
		require.NoError(t, instance.Write(path, testInstance(t, int64(i+1))))
	}
}

func TestLoadInstances(t *testing.T) {
	dir := t.TempDir()
	writeInstances(t, dir, 2)

	instances, err := LoadInstances(filepath.Join(dir, "*.json"), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, instances, 2)
	assert.Equal(t, "insta", instances[0].Name)
	assert.Equal(t, "instb", instances[1].Name)
}

func TestLoadInstances_NoMatch(t *testing.T) {
	_, err := LoadInstances(filepath.Join(t.TempDir(), "*.json"), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no instance files")
}

func TestInstanceName(t *testing.T) {
	assert.Equal(t, "instance1", InstanceName("data/instance1.json"))
	assert.Equal(t, "plain", InstanceName("plain"))
}

func TestRunExperiments(t *testing.T) {
	dir := t.TempDir()
	writeInstances(t, dir, 2)
	instances, err := LoadInstances(filepath.Join(dir, "*.json"), zap.NewNop())
	require.NoError(t, err)

	cfg := fastConfig()
	cfg.Experiments.Methods = []string{"no_local", "local", "sa"}

	store := &mockRunStore{}
	result, err := RunExperiments(context.Background(), store, instances, cfg, zap.NewNop(), Hooks{})
	require.NoError(t, err)

	// 2 instances x 2 distinct methods x 2 seeds
	require.Len(t, result.Runs, 8)
	assert.Equal(t, 1, store.inserts, "runs are stored in a single batch")
	assert.Len(t, store.runs, 8)

	first := result.Runs[0]
	assert.Equal(t, "insta", first.Instance)
	assert.Equal(t, search.MethodAnneal, first.Method)
	assert.Equal(t, int64(1), first.Seed)

	last := result.Runs[7]
	assert.Equal(t, "instb", last.Instance)
	assert.Equal(t, search.MethodILS, last.Method)
	assert.Equal(t, int64(2), last.Seed)
}

func TestRunExperiments_IndependentOfWorkers(t *testing.T) {
	dir := t.TempDir()
	writeInstances(t, dir, 2)
	instances, err := LoadInstances(filepath.Join(dir, "*.json"), zap.NewNop())
	require.NoError(t, err)

	cfg := fastConfig()
	cfg.Experiments.Methods = []string{"hc", "ga"}

	cfg.Experiments.Workers = 1
	serial, err := RunExperiments(context.Background(), nil, instances, cfg, zap.NewNop(), Hooks{})
	require.NoError(t, err)

	cfg.Experiments.Workers = 8
	parallel, err := RunExperiments(context.Background(), nil, instances, cfg, zap.NewNop(), Hooks{})
	require.NoError(t, err)

	require.Len(t, parallel.Runs, len(serial.Runs))
	for i := range serial.Runs {
		s, p := serial.Runs[i], parallel.Runs[i]
		assert.Equal(t, s.Instance, p.Instance)
		assert.Equal(t, s.Method, p.Method)
		assert.Equal(t, s.Seed, p.Seed)
		assert.Equal(t, [3]int{s.C1, s.C2, s.C3}, [3]int{p.C1, p.C2, p.C3})
	}
}

func TestRunExperiments_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeInstances(t, dir, 1)
	instances, err := LoadInstances(filepath.Join(dir, "*.json"), zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := &mockRunStore{}
	_, err = RunExperiments(ctx, store, instances, fastConfig(), zap.NewNop(), Hooks{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.runs)
}

func TestRunExperiments_UnknownMethod(t *testing.T) {
	cfg := fastConfig()
	cfg.Experiments.Methods = []string{"sa", "tabu"}

	_, err := RunExperiments(context.Background(), nil, nil, cfg, zap.NewNop(), Hooks{})
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestSummarize(t *testing.T) {
	store := &mockRunStore{runs: []db.RunRecord{
		{Instance: "b", Method: "sa", Seed: 1, C1: 2, C2: 4, C3: 1, RuntimeSec: 1},
		{Instance: "a", Method: "no_local", Seed: 1, C1: 1, C2: 3, C3: 0, RuntimeSec: 2},
		{Instance: "a", Method: "sa", Seed: 2, C1: 1, C2: 5, C3: 2, RuntimeSec: 4},
		{Instance: "a", Method: "sa", Seed: 3, C1: 1, C2: 5, C3: 2, RuntimeSec: 6},
		{Instance: "a", Method: "custom", Seed: 7, C1: 0, C2: 0, C3: 0, RuntimeSec: 1},
	}}

	summaries, err := Summarize(context.Background(), store, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	// unknown method names are kept as they are
	assert.Equal(t, "a", summaries[0].Instance)
	assert.Equal(t, "custom", summaries[0].Method)
	assert.Equal(t, 1, summaries[0].Runs)

	sa := summaries[1]
	assert.Equal(t, "a", sa.Instance)
	assert.Equal(t, search.MethodAnneal, sa.Method)
	assert.Equal(t, 3, sa.Runs)
	assert.InDelta(t, 1.0, sa.AvgC1, 1e-9)
	assert.InDelta(t, 13.0/3, sa.AvgC2, 1e-9)
	assert.InDelta(t, 4.0/3, sa.AvgC3, 1e-9)
	assert.InDelta(t, 4.0, sa.AvgRuntime, 1e-9)
	assert.Equal(t, [3]int{1, 5, 2}, [3]int{sa.BestC1, sa.BestC2, sa.BestC3})
	// ties go to the first stored run
	assert.Equal(t, int64(2), sa.BestSeed)

	assert.Equal(t, "b", summaries[2].Instance)
	assert.Equal(t, int64(1), summaries[2].BestSeed)
}

func TestSummarize_Empty(t *testing.T) {
	summaries, err := Summarize(context.Background(), &mockRunStore{}, zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestSummarize_StoreError(t *testing.T) {
	_, err := Summarize(context.Background(), &mockRunStore{getErr: errors.New("boom")}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
