package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Shiangjun/LTspice-cli/internal/waveform"
)

// Format is an output file format for extracted tables.
type Format string

const (
	FormatTSV     Format = "tsv"
	FormatXLSX    Format = "xlsx"
	FormatParquet Format = "parquet"
)

// ErrUnknownFormat indicates an unsupported output format
var ErrUnknownFormat = errors.New("unknown output format")

// Sink writes a table to a file and returns the number of bytes produced.
type Sink interface {
	Write(t *waveform.Table, path string) (int64, error)
}

// ParseFormat parses a format name. Empty means tsv.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatTSV, "txt":
		return FormatTSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatParquet:
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: tsv, xlsx, parquet)", ErrUnknownFormat, s)
	}
}

// Ext returns the file extension used for the format.
func (f Format) Ext() string {
	switch f {
	case FormatXLSX:
		return ".xlsx"
	case FormatParquet:
		return ".parquet"
	default:
		return ".txt"
	}
}

// New returns the sink for a format.
func New(f Format) (Sink, error) {
	switch f {
	case FormatTSV, "":
		return TSV{}, nil
	case FormatXLSX:
		return XLSX{}, nil
	case FormatParquet:
		return Parquet{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

// atomicWrite creates a temp file next to path, hands it to fill, and renames
// it onto path once fill succeeds. The temp file name keeps path's extension.
func atomicWrite(path string, fill func(f *os.File) error) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ltspice-*"+filepath.Ext(path))
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if err := fill(tmp); err != nil {
		tmp.Close()
		return 0, err
	}
	// Some writers close the file themselves
	if err := tmp.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}

	info, err := os.Stat(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return 0, fmt.Errorf("failed to move output into place: %w", err)
	}
	return info.Size(), nil
}
