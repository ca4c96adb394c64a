package waveform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalog_SortsByIndex(t *testing.T) {
	t.Parallel()

	cat, err := NewCatalog(
		Variable{Name: "V(n_out)", Index: 5},
		Variable{Name: "time", Index: 0},
		Variable{Name: "V(n_upper)", Index: 2},
	)
	require.NoError(t, err)

	assert.Equal(t, 3, cat.Len())
	assert.Equal(t, 5, cat.MaxIndex())
	assert.Equal(t, []string{"time", "V(n_upper)", "V(n_out)"}, cat.Names())

	slot, ok := cat.Slot(5)
	assert.True(t, ok)
	assert.Equal(t, 2, slot)

	_, ok = cat.Slot(1)
	assert.False(t, ok)
}

func TestNewCatalog_SortedIsACopy(t *testing.T) {
	t.Parallel()

	cat := MustCatalog(Variable{Name: "time", Index: 0}, Variable{Name: "x", Index: 1})
	sorted := cat.Sorted()
	sorted[0].Name = "changed"

	assert.Equal(t, "time", cat.Sorted()[0].Name)
}

func TestNewCatalog_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		vars []Variable
		want error
	}{
		{"empty", nil, ErrEmptyCatalog},
		{"duplicate index", []Variable{{"a", 1}, {"b", 1}}, ErrDuplicateIndex},
		{"duplicate name", []Variable{{"a", 1}, {"a", 2}}, ErrDuplicateName},
		{"negative index", []Variable{{"a", -1}}, ErrInvalidVariable},
		{"blank name", []Variable{{"  ", 3}}, ErrInvalidVariable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cat, err := NewCatalog(tt.vars...)
			assert.Nil(t, cat)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestMustCatalog_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { MustCatalog() })
}

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	cat := DefaultCatalog()
	assert.Equal(t, 7, cat.Len())
	assert.Equal(t, 41, cat.MaxIndex())
	assert.Equal(t, []string{
		"time", "V(n_upper)", "V(n_out)", "I(snubber_lower)", "I(snubber_upper)", "I(upper)", "I(lower)",
	}, cat.Names())

	// Default order labels
	assert.Equal(t, []string{
		"time", "V(n_upper)", "I(upper)", "I(snubber_upper)", "V(n_out)", "I(lower)", "I(snubber_lower)",
	}, DefaultColumnOrder().Apply(cat.Names()))
}
