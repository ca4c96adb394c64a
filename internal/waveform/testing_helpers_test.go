package waveform

import (
	"fmt"
	"strings"
)

// rawValue is the synthetic value written for point p, variable k.
func rawValue(p, k int) string {
	return fmt.Sprintf("%d.%03de-006", p+1, k)
}

// rawHeaderLines returns an LTspice-style header for nvars and npoints,
// ending with the Values: marker.
func rawHeaderLines(nvars, npoints int) []string {
	lines := []string{
		`Title: * C:\sim\half_bridge_new.asc`,
		"Date: Thu Jan  1 00:00:00 2026",
		"Plotname: Transient Analysis",
		"Flags: real forward",
		fmt.Sprintf("No. Variables: %d", nvars),
		fmt.Sprintf("No. Points:          %d", npoints),
		"Offset:   0.0000000000000000e+000",
		"Command: Linear Technology Corporation LTspice XVII",
		"Variables:",
	}
	for k := 0; k < nvars; k++ {
		name := fmt.Sprintf("V(n%03d)", k)
		kind := "voltage"
		if k == 0 {
			name, kind = "time", "time"
		}
		lines = append(lines, fmt.Sprintf("\t%d\t%s\t%s", k, name, kind))
	}
	return append(lines, "Values:")
}

// rawDataLines returns the data section for the given number of complete
// records, plus partial extra lines of a trailing record.
func rawDataLines(nvars, records, partial int) []string {
	var lines []string
	emit := func(p, k int) {
		if k == 0 {
			lines = append(lines, fmt.Sprintf("%d\t\t%s", p, rawValue(p, k)))
		} else {
			lines = append(lines, "\t"+rawValue(p, k))
		}
	}
	for p := 0; p < records; p++ {
		for k := 0; k < nvars; k++ {
			emit(p, k)
		}
	}
	for k := 0; k < partial; k++ {
		emit(records, k)
	}
	return lines
}

// buildRaw joins header and data lines into a newline-terminated raw file.
func buildRaw(nvars, records, partial int) string {
	lines := append(rawHeaderLines(nvars, records), rawDataLines(nvars, records, partial)...)
	return strings.Join(lines, "\n") + "\n"
}

// permutations returns every permutation of 0..n-1.
func permutations(n int) [][]int {
	var out [][]int
	var walk func(prefix []int, used []bool)
	walk = func(prefix []int, used []bool) {
		if len(prefix) == n {
			out = append(out, append([]int(nil), prefix...))
			return
		}
		for i := 0; i < n; i++ {
			if used[i] {
				continue
			}
			used[i] = true
			walk(append(prefix, i), used)
			used[i] = false
		}
	}
	walk(nil, make([]bool, n))
	return out
}
