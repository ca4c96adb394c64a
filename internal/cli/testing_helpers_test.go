package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Shiangjun/LTspice-cli/internal/config"
	"github.com/Shiangjun/LTspice-cli/internal/waveform"
)

const testSchematic = "Version 4\nSHEET 1 880 680\nTEXT -56 344 Left 2 !.param R=1k C=10n\nTEXT -56 376 Left 2 !.tran 1m\n"

// testRaw returns a two-variable ASCII raw file with the given number of points.
func testRaw(points int) string {
	lines := []string{
		"Title: * circuit.asc",
		"Date: Thu Jan  1 00:00:00 2026",
		"Plotname: Transient Analysis",
		"Flags: real forward",
		"No. Variables: 2",
		fmt.Sprintf("No. Points: %d", points),
		"Offset:   0.0000000000000000e+000",
		"Command: Linear Technology Corporation LTspice XVII",
		"Variables:",
		"\t0\ttime\ttime",
		"\t1\tV(out)\tvoltage",
		"Values:",
	}
	for p := 0; p < points; p++ {
		lines = append(lines,
			fmt.Sprintf("%d\t\t%d.0e-006", p, p),
			fmt.Sprintf("\t%d.5e+000", p))
	}
	return strings.Join(lines, "\n") + "\n"
}

// setupCircuit writes circuit.asc and circuit.raw to a temp dir and returns
// the base path.
func setupCircuit(t *testing.T, points int) string {
	t.Helper()
	dir := t.TempDir()
	base := filepath.Join(dir, "circuit")
	require.NoError(t, os.WriteFile(base+".asc", []byte(testSchematic), 0644))
	require.NoError(t, os.WriteFile(base+waveform.RawExt, []byte(testRaw(points)), 0644))
	return base
}

// testConfig returns defaults with a catalog matching testRaw.
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Extract.Variables = []waveform.Variable{{Name: "time", Index: 0}, {Name: "V(out)", Index: 1}}
	cfg.Extract.Order = []int{1, 0}
	return cfg
}
