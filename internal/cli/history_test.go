package cli

// Test Plan for history command:
// - listRuns renders recorded runs with their status
// - listRuns on an empty ledger says so
// - listRuns with JSON encodes the records
// - showRun lists the run's points and their errors
// - showRun for an unknown ID returns history.ErrRunNotFound
// - checkLatest skips development builds

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shiangjun/LTspice-cli/internal/history"
	"github.com/Shiangjun/LTspice-cli/internal/sweep"
)

func seededStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	run := &sweep.Run{ID: "run-1", Param: "R", Values: []string{"1k", "2k"}, Schematic: "sim/a.asc", StartedAt: time.Now()}
	require.NoError(t, store.BeginRun(run))
	require.NoError(t, store.RecordPoint(run.ID, &sweep.Point{Index: 0, Param: "R", Value: "1k", OutputPath: "output/R=1k.txt", Rows: 1500}))
	require.NoError(t, store.RecordPoint(run.ID, &sweep.Point{Index: 1, Param: "R", Value: "2k", Err: errors.New("simulation failed")}))
	require.NoError(t, store.FinishRun(&sweep.Summary{RunID: run.ID, Param: "R", Total: 2, Succeeded: 1, Failed: 1}))
	return store
}

func TestListRuns(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, listRuns(&buf, seededStore(t), 10, false))

	out := buf.String()
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "1/2")
	assert.Contains(t, out, "failed")
}

func TestListRuns_Empty(t *testing.T) {
	t.Parallel()

	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	var buf bytes.Buffer
	require.NoError(t, listRuns(&buf, store, 10, false))
	assert.Contains(t, buf.String(), "No sweep history yet")
}

func TestListRuns_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, listRuns(&buf, seededStore(t), 10, true))

	var runs []history.RunRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].RunID)
}

func TestShowRun(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, showRun(&buf, seededStore(t), "run-1", false))

	out := buf.String()
	assert.Contains(t, out, "Run run-1")
	assert.Contains(t, out, "output/R=1k.txt")
	assert.Contains(t, out, "1,500 rows")
	assert.Contains(t, out, "simulation failed")
}

func TestShowRun_Unknown(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := showRun(&buf, seededStore(t), "nope", false)
	assert.ErrorIs(t, err, history.ErrRunNotFound)
}

func TestCheckLatest_DevBuild(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, checkLatest(&buf, nil, "dev"))
	assert.Contains(t, buf.String(), "Development build")
}
