package waveform

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
)

// RawExt is the extension of simulator waveform files.
const RawExt = ".raw"

// Simulator produces <basePath>.raw when asked.
type Simulator interface {
	Simulate(ctx context.Context, basePath string) error
}

// OpenSource opens <basePath>.raw. If the file is missing and sim is not nil,
// the simulator is run once and the open retried; a second miss is fatal.
func OpenSource(ctx context.Context, basePath string, sim Simulator) (*os.File, error) {
	path := basePath + RawExt

	f, err := os.Open(path)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, &ParseError{Path: path, Stage: StageOpen, Err: err}
	}
	if sim == nil {
		return nil, &ParseError{Path: path, Stage: StageOpen, Err: ErrSourceFileMissing}
	}

	log.Printf("File not found: %s, running simulation", path)
	if err := sim.Simulate(ctx, basePath); err != nil {
		return nil, fmt.Errorf("simulation for missing %s failed: %w", path, err)
	}

	f, err = os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: not produced by simulation", ErrSourceFileMissing)
		}
		return nil, &ParseError{Path: path, Stage: StageOpen, Err: err}
	}
	return f, nil
}

// ExtractFile extracts from <basePath>.raw, simulating once if it is missing.
// The file is closed before returning on every path.
func ExtractFile(ctx context.Context, basePath string, sim Simulator, cat *Catalog, order ColumnOrder, annotation string, opts ...Option) (*Table, error) {
	f, err := OpenSource(ctx, basePath, sim)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Extract(f, cat, order, annotation, opts...)
	if err != nil {
		return nil, withPath(err, f.Name())
	}
	return t, nil
}
