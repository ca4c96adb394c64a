package cli

// Test Plan for sweep command helpers:
// - sweepValueList splits --values, trimming blanks
// - sweepValueList expands --range
// - sweepValueList requires exactly one source
// - sweepConfig maps configuration onto the sweep
// - CLIProgressReporter prints a summary listing failed points
// - CLIProgressReporter prints nothing when quiet

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shiangjun/LTspice-cli/internal/export"
	"github.com/Shiangjun/LTspice-cli/internal/sweep"
	"github.com/Shiangjun/LTspice-cli/internal/waveform"
)

func TestSweepValueList(t *testing.T) {
	t.Parallel()

	values, err := sweepValueList("1k, 2.2k,,4.7k", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"1k", "2.2k", "4.7k"}, values)

	values, err = sweepValueList("", "1:2:0.5")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "1.5", "2"}, values)

	_, err = sweepValueList("", "")
	assert.Error(t, err)

	_, err = sweepValueList("1", "1:2:1")
	assert.Error(t, err)

	_, err = sweepValueList(" , ", "")
	assert.ErrorIs(t, err, sweep.ErrNoValues)
}

func TestSweepConfig(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Output.Dir = "results"
	cfg.Output.Format = "xlsx"
	cfg.Extract.HeaderMode = "labeled"
	cfg.Simulator.Timeout = time.Minute

	scfg, err := sweepConfig(cfg, "sim/half_bridge.asc")
	require.NoError(t, err)
	assert.Equal(t, "sim/half_bridge", scfg.SchematicBase)
	assert.Equal(t, "results", scfg.OutputDir)
	assert.Equal(t, export.FormatXLSX, scfg.Format)
	assert.Equal(t, waveform.HeaderLabeled, scfg.HeaderMode)
	assert.Equal(t, time.Minute, scfg.Timeout)
	assert.Equal(t, 2, scfg.Catalog.Len())
	assert.Equal(t, waveform.ColumnOrder{1, 0}, scfg.Order)
}

func TestCLIProgressReporter_Summary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := NewCLIProgressReporter(&buf, false)

	r.OnSweepStart(&sweep.Run{ID: "run-1", Param: "R", Values: []string{"1k", "2k"}, Schematic: "a.asc"})
	r.OnPointStart(0, 2, "R", "1k")
	r.OnPointDone(&sweep.Point{Index: 0, Param: "R", Value: "1k"})
	r.OnPointStart(1, 2, "R", "2k")
	r.OnPointDone(&sweep.Point{Index: 1, Param: "R", Value: "2k", Err: errors.New("boom")})
	r.OnSweepComplete(&sweep.Summary{RunID: "run-1", Param: "R", Total: 2, Succeeded: 1, Failed: 1})

	out := buf.String()
	assert.Contains(t, out, "Sweeping")
	assert.Contains(t, out, "1/2 points")
	assert.Contains(t, out, "R=2k: boom")
	assert.Contains(t, out, "Run ID: run-1")
}

func TestCLIProgressReporter_Quiet(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := NewCLIProgressReporter(&buf, true)

	r.OnSweepStart(&sweep.Run{ID: "run-1", Param: "R", Values: []string{"1k"}})
	r.OnPointStart(0, 1, "R", "1k")
	r.OnPointDone(&sweep.Point{Param: "R", Value: "1k"})
	r.OnSweepComplete(&sweep.Summary{RunID: "run-1", Total: 1, Succeeded: 1})

	assert.Empty(t, buf.String())
}
