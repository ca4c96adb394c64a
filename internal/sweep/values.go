package sweep

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxSteps bounds StepValues so a typo in the step cannot produce millions of points.
const maxSteps = 10000

// ErrInvalidRange indicates a start/stop/step triple that yields no values
var ErrInvalidRange = errors.New("invalid sweep range")

// StepValues returns start, start+step, ... up to and including stop,
// formatted the shortest way that survives 12 significant digits.
func StepValues(start, stop, step float64) ([]string, error) {
	if step == 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("%w: step must be a finite non-zero number", ErrInvalidRange)
	}
	if (stop-start)/step < 0 {
		return nil, fmt.Errorf("%w: step %g moves away from stop %g", ErrInvalidRange, step, stop)
	}

	// Bound the quotient before converting, a huge span overflows int
	q := math.Floor((stop-start)/step + 1e-9)
	if math.IsNaN(q) || q+1 > maxSteps {
		return nil, fmt.Errorf("%w: %g steps exceeds limit of %d", ErrInvalidRange, q+1, maxSteps)
	}
	n := int(q) + 1

	values := make([]string, n)
	for i := 0; i < n; i++ {
		values[i] = formatValue(start + float64(i)*step)
	}
	return values, nil
}

// ParseRange parses "start:stop:step" into sweep values.
func ParseRange(s string) ([]string, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: %q is not start:stop:step", ErrInvalidRange, s)
	}
	nums := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRange, p, err)
		}
		nums[i] = v
	}
	return StepValues(nums[0], nums[1], nums[2])
}

func formatValue(v float64) string {
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'g', 12, 64), 64)
	return strconv.FormatFloat(rounded, 'g', -1, 64)
}
