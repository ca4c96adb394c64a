package export

import (
	"fmt"
	"os"

	"github.com/Shiangjun/LTspice-cli/internal/waveform"
)

// TSV writes the table in its native text form: annotation line, label line,
// then one tab-delimited line per row.
type TSV struct{}

func (TSV) Write(t *waveform.Table, path string) (int64, error) {
	return atomicWrite(path, func(f *os.File) error {
		if _, err := t.WriteTo(f); err != nil {
			return fmt.Errorf("failed to write table: %w", err)
		}
		return nil
	})
}
