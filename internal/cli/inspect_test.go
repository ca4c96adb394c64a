package cli

// Test Plan for inspect:
// - inspectRaw reports counts and header fields
// - inspectRaw flags catalog entries that are missing or named differently
// - renderInspection prints the path, counts and catalog table
// - renderTable includes headers and cells

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shiangjun/LTspice-cli/internal/waveform"
)

func TestInspectRaw(t *testing.T) {
	t.Parallel()

	base := setupCircuit(t, 4)
	cat := waveform.MustCatalog(
		waveform.Variable{Name: "time", Index: 0},
		waveform.Variable{Name: "V(in)", Index: 1},
		waveform.Variable{Name: "I(L1)", Index: 5},
	)

	ins, err := inspectRaw(base+waveform.RawExt, cat, waveform.HeaderFixedOffset)
	require.NoError(t, err)

	assert.Equal(t, 2, ins.Header.NumVariables)
	assert.Equal(t, 4, ins.Header.NumPoints)
	title, ok := ins.Header.Field("Plotname")
	require.True(t, ok)
	assert.Equal(t, "Transient Analysis", title)

	require.Len(t, ins.Catalog, 3)
	assert.True(t, ins.Catalog[0].Match)
	assert.False(t, ins.Catalog[1].Match)
	assert.Equal(t, "V(out)", ins.Catalog[1].Declared)
	assert.False(t, ins.Catalog[2].Match)
	assert.Empty(t, ins.Catalog[2].Declared)
}

func TestInspectRaw_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := inspectRaw(t.TempDir()+"/none.raw", waveform.DefaultCatalog(), waveform.HeaderFixedOffset)
	assert.Error(t, err)
}

func TestRenderInspection(t *testing.T) {
	t.Parallel()

	base := setupCircuit(t, 2)
	cat := waveform.MustCatalog(waveform.Variable{Name: "time", Index: 0})
	ins, err := inspectRaw(base+waveform.RawExt, cat, waveform.HeaderFixedOffset)
	require.NoError(t, err)

	var buf bytes.Buffer
	renderInspection(&buf, ins)

	out := buf.String()
	assert.Contains(t, out, base+waveform.RawExt)
	assert.Contains(t, out, "Variables: 2")
	assert.Contains(t, out, "Plotname: Transient Analysis")
	assert.Contains(t, out, "Declared")
	assert.Contains(t, out, "ok")
}

func TestRenderTable(t *testing.T) {
	t.Parallel()

	out := renderTable([]string{"Name", "Value"}, [][]string{{"R", "1k"}, {"C", "10n"}})
	for _, s := range []string{"Name", "Value", "R", "1k", "C", "10n"} {
		assert.Contains(t, out, s)
	}
}
