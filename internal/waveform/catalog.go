package waveform

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrEmptyCatalog indicates a catalog with no variables
	ErrEmptyCatalog = errors.New("empty variable catalog")

	// ErrDuplicateIndex indicates two variables declared at the same index
	ErrDuplicateIndex = errors.New("duplicate variable index")

	// ErrDuplicateName indicates two variables sharing a name
	ErrDuplicateName = errors.New("duplicate variable name")

	// ErrInvalidVariable indicates a variable with an empty name or negative index
	ErrInvalidVariable = errors.New("invalid variable")
)

// Variable is a named column selected from a waveform file, identified by
// its declared index in the file's variable block.
type Variable struct {
	Name  string `json:"name" mapstructure:"name"`
	Index int    `json:"index" mapstructure:"index"`
}

// Catalog is the fixed set of variables to select from a waveform file.
// Entries are kept sorted by ascending declared index; that order is the
// basis for column reordering and labeling.
type Catalog struct {
	vars  []Variable
	slots map[int]int // declared index -> position in vars
}

// NewCatalog builds a catalog from the given variables. Insertion order is
// irrelevant; the catalog orders entries by index.
func NewCatalog(vars ...Variable) (*Catalog, error) {
	if len(vars) == 0 {
		return nil, ErrEmptyCatalog
	}

	sorted := make([]Variable, len(vars))
	copy(sorted, vars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	names := make(map[string]bool, len(sorted))
	slots := make(map[int]int, len(sorted))
	for i, v := range sorted {
		if strings.TrimSpace(v.Name) == "" {
			return nil, fmt.Errorf("%w: empty name at index %d", ErrInvalidVariable, v.Index)
		}
		if v.Index < 0 {
			return nil, fmt.Errorf("%w: %s has negative index %d", ErrInvalidVariable, v.Name, v.Index)
		}
		if _, ok := slots[v.Index]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateIndex, v.Index)
		}
		if names[v.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, v.Name)
		}
		slots[v.Index] = i
		names[v.Name] = true
	}

	return &Catalog{vars: sorted, slots: slots}, nil
}

// MustCatalog is like NewCatalog but panics on error.
func MustCatalog(vars ...Variable) *Catalog {
	c, err := NewCatalog(vars...)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultCatalog returns the half-bridge probe set used by the sweep tooling.
func DefaultCatalog() *Catalog {
	return MustCatalog(
		Variable{Name: "time", Index: 0},
		Variable{Name: "V(n_upper)", Index: 2},
		Variable{Name: "V(n_out)", Index: 5},
		Variable{Name: "I(snubber_lower)", Index: 19},
		Variable{Name: "I(snubber_upper)", Index: 20},
		Variable{Name: "I(upper)", Index: 40},
		Variable{Name: "I(lower)", Index: 41},
	)
}

// Sorted returns the catalog entries by ascending declared index.
func (c *Catalog) Sorted() []Variable {
	out := make([]Variable, len(c.vars))
	copy(out, c.vars)
	return out
}

// Names returns the variable names by ascending declared index.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.vars))
	for i, v := range c.vars {
		names[i] = v.Name
	}
	return names
}

// Len returns the number of variables in the catalog.
func (c *Catalog) Len() int {
	return len(c.vars)
}

// MaxIndex returns the largest declared index.
func (c *Catalog) MaxIndex() int {
	return c.vars[len(c.vars)-1].Index
}

// Slot returns the position of a declared index within Sorted().
func (c *Catalog) Slot(index int) (int, bool) {
	slot, ok := c.slots[index]
	return slot, ok
}
