package waveform

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSimulator writes content to <base>.raw when content is non-empty.
type fakeSimulator struct {
	content string
	err     error
	calls   int
}

func (f *fakeSimulator) Simulate(ctx context.Context, basePath string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	if f.content == "" {
		return nil
	}
	return os.WriteFile(basePath+RawExt, []byte(f.content), 0644)
}

func TestOpenSource_Existing(t *testing.T) {
	t.Parallel()

	base := filepath.Join(t.TempDir(), "circuit")
	require.NoError(t, os.WriteFile(base+RawExt, []byte(buildRaw(2, 1, 0)), 0644))

	sim := &fakeSimulator{}
	f, err := OpenSource(context.Background(), base, sim)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, 0, sim.calls)
}

func TestOpenSource_MissingWithoutSimulator(t *testing.T) {
	t.Parallel()

	base := filepath.Join(t.TempDir(), "circuit")
	f, err := OpenSource(context.Background(), base, nil)
	require.Error(t, err)
	assert.Nil(t, f)
	assert.True(t, errors.Is(err, ErrSourceFileMissing))
	assert.Contains(t, err.Error(), base+RawExt)
}

func TestOpenSource_SimulatesOnceWhenMissing(t *testing.T) {
	t.Parallel()

	base := filepath.Join(t.TempDir(), "circuit")
	sim := &fakeSimulator{content: buildRaw(2, 1, 0)}

	f, err := OpenSource(context.Background(), base, sim)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, 1, sim.calls)
}

func TestOpenSource_SecondMissIsFatal(t *testing.T) {
	t.Parallel()

	base := filepath.Join(t.TempDir(), "circuit")
	sim := &fakeSimulator{}

	f, err := OpenSource(context.Background(), base, sim)
	require.Error(t, err)
	assert.Nil(t, f)
	assert.Equal(t, 1, sim.calls)
	assert.True(t, errors.Is(err, ErrSourceFileMissing))

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, StageOpen, pe.Stage)
}

func TestOpenSource_SimulatorFailure(t *testing.T) {
	t.Parallel()

	base := filepath.Join(t.TempDir(), "circuit")
	boom := errors.New("ltspice exited 1")
	sim := &fakeSimulator{err: boom}

	_, err := OpenSource(context.Background(), base, sim)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, 1, sim.calls)
}

func TestExtractFile_ErrorNamesPath(t *testing.T) {
	t.Parallel()

	base := filepath.Join(t.TempDir(), "circuit")
	require.NoError(t, os.WriteFile(base+RawExt, []byte("Title: broken\n"), 0644))

	cat := MustCatalog(Variable{Name: "time", Index: 0})
	table, err := ExtractFile(context.Background(), base, nil, cat, Identity(1), "ann")
	require.Error(t, err)
	assert.Nil(t, table)
	assert.True(t, errors.Is(err, ErrMalformedHeader))
	assert.Contains(t, err.Error(), base+RawExt)
	assert.Contains(t, err.Error(), "header stage")
}

func TestExtractFile_Success(t *testing.T) {
	t.Parallel()

	base := filepath.Join(t.TempDir(), "circuit")
	sim := &fakeSimulator{content: buildRaw(3, 4, 0)}

	cat := MustCatalog(Variable{Name: "time", Index: 0}, Variable{Name: "V(n002)", Index: 2})
	table, err := ExtractFile(context.Background(), base, sim, cat, Reverse(2), "ann")
	require.NoError(t, err)

	assert.Equal(t, []string{"V(n002)", "time"}, table.Labels)
	assert.Len(t, table.Rows, 4)
	assert.Equal(t, 1, sim.calls)
}
