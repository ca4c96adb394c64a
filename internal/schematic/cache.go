package schematic

import (
	"fmt"
	"os"

	"github.com/maypok86/otter"
)

// DefaultCacheCapacity bounds the number of schematic revisions kept.
const DefaultCacheCapacity = 64

// ParamCache memoizes GetParams per schematic revision. A revision is
// identified by path, modification time and size, so an edited file is
// re-read on the next lookup.
type ParamCache struct {
	cache otter.Cache[string, []string]
}

// NewParamCache creates a cache holding up to capacity schematic revisions.
func NewParamCache(capacity int) (*ParamCache, error) {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}

	cache, err := otter.MustBuilder[string, []string](capacity).
		CollectStats().
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build param cache: %w", err)
	}

	return &ParamCache{cache: cache}, nil
}

// Get returns the .param tokens of the schematic, reading the file only when
// this revision has not been seen.
func (c *ParamCache) Get(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat schematic: %w", err)
	}

	key := fmt.Sprintf("%s|%d|%d", path, info.ModTime().UnixNano(), info.Size())
	if tokens, ok := c.cache.Get(key); ok {
		return tokens, nil
	}

	tokens, err := GetParams(path)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, tokens)
	return tokens, nil
}

// Hits returns the number of lookups served from the cache.
func (c *ParamCache) Hits() int64 {
	return c.cache.Stats().Hits()
}

// Close releases the cache.
func (c *ParamCache) Close() {
	c.cache.Close()
}
