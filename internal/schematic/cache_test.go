package schematic

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamCache_HitsUntilFileChanges(t *testing.T) {
	t.Parallel()

	path := writeSchematic(t, sampleSchematic)

	cache, err := NewParamCache(0)
	require.NoError(t, err)
	defer cache.Close()

	first, err := cache.Get(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"R=1k", "C=10n", "tstop=10u"}, first)

	second, err := cache.Get(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), cache.Hits())

	// New revision: different size and mtime
	require.NoError(t, os.WriteFile(path, []byte("TEXT 0 0 Left 2 !.param R=4.7k\n"), 0644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	third, err := cache.Get(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"R=4.7k"}, third)
}

func TestParamCache_MissingFile(t *testing.T) {
	t.Parallel()

	cache, err := NewParamCache(8)
	require.NoError(t, err)
	defer cache.Close()

	_, err = cache.Get(filepath.Join(t.TempDir(), "missing.asc"))
	assert.Error(t, err)
}
