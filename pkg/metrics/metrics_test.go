package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/deskrota/pkg/core/model"
	"github.com/jakechorley/deskrota/pkg/core/search"
)

func TestRecorder_Observe(t *testing.T) {
	r := NewRecorder(false)

	r.Observe(search.Event{Method: "sa", Accepted: true, Improved: true, Best: model.Score{C1: 3, C2: 2, C3: -1}, Temperature: 100})
	r.Observe(search.Event{Method: "sa", Accepted: true, Best: model.Score{C1: 3, C2: 2, C3: -1}, Temperature: 95})
	r.Observe(search.Event{Method: "sa", Best: model.Score{C1: 3, C2: 2, C3: -1}, Temperature: 95})

	assert.Equal(t, 3.0, testutil.ToFloat64(r.proposals.WithLabelValues("sa")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.accepted.WithLabelValues("sa")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.improvements.WithLabelValues("sa")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.best.WithLabelValues("sa", "c1")))
	assert.Equal(t, -1.0, testutil.ToFloat64(r.best.WithLabelValues("sa", "c3")))
	assert.Equal(t, 95.0, testutil.ToFloat64(r.temperature.WithLabelValues("sa")))
}

func TestRecorder_RecordRun(t *testing.T) {
	r := NewRecorder(false)

	r.RecordRun("ga", 250*time.Millisecond, model.Score{C1: 7})
	r.RecordRun("ga", 50*time.Millisecond, model.Score{C1: 8})

	assert.Equal(t, 2.0, testutil.ToFloat64(r.runs.WithLabelValues("ga")))
	assert.Equal(t, 8.0, testutil.ToFloat64(r.best.WithLabelValues("ga", "c1")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.runDuration))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder(false)
	r.Observe(search.Event{Method: "hc", Accepted: true})

	path := filepath.Join(t.TempDir(), "deskrota.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `deskrota_search_steps_total{method="hc"} 1`)
}
