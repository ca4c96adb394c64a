package waveform

import (
	"errors"
	"fmt"
)

// ErrInvalidOrder indicates a column order that is not a permutation of the catalog positions
var ErrInvalidOrder = errors.New("invalid column order")

// ColumnOrder is a permutation over catalog positions. Output column i holds
// the catalog entry at position order[i] of Catalog.Sorted().
type ColumnOrder []int

// NewColumnOrder validates that positions is a permutation of 0..n-1.
func NewColumnOrder(positions []int, n int) (ColumnOrder, error) {
	if len(positions) != n {
		return nil, fmt.Errorf("%w: length %d does not match catalog size %d", ErrInvalidOrder, len(positions), n)
	}

	seen := make([]bool, n)
	for _, p := range positions {
		if p < 0 || p >= n {
			return nil, fmt.Errorf("%w: position %d out of range [0,%d)", ErrInvalidOrder, p, n)
		}
		if seen[p] {
			return nil, fmt.Errorf("%w: position %d appears more than once", ErrInvalidOrder, p)
		}
		seen[p] = true
	}

	order := make(ColumnOrder, n)
	copy(order, positions)
	return order, nil
}

// Identity returns the order that keeps catalog order.
func Identity(n int) ColumnOrder {
	order := make(ColumnOrder, n)
	for i := range order {
		order[i] = i
	}
	return order
}

// Reverse returns the order that reverses catalog order.
func Reverse(n int) ColumnOrder {
	order := make(ColumnOrder, n)
	for i := range order {
		order[i] = n - 1 - i
	}
	return order
}

// DefaultColumnOrder is the preferred layout for DefaultCatalog: time, the
// two node voltages, then the switch and snubber currents.
func DefaultColumnOrder() ColumnOrder {
	return ColumnOrder{0, 1, 5, 4, 2, 6, 3}
}

// Apply returns row permuted by the order. The same permutation is used for
// labels and values, so label i always names the values in column i.
func (o ColumnOrder) Apply(row []string) []string {
	out := make([]string, len(o))
	for i, p := range o {
		out[i] = row[p]
	}
	return out
}
