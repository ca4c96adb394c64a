package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Shiangjun/LTspice-cli/internal/waveform"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Test Plan for export sinks:
// - ParseFormat accepts tsv/txt/xlsx/parquet and rejects others
// - Ext maps formats to file extensions
// - TSV output is byte-identical to Table.WriteTo and size matches the file
// - TSV creates missing output directories and leaves no temp files
// - XLSX puts annotation, labels and values in rows 1, 2, 3+ as strings
// - Parquet stores one string column per label and the annotation in metadata

func sampleTable() *waveform.Table {
	return &waveform.Table{
		Annotation: "SPICE simulation result. Parameters: R=1k, C=10n\n",
		Labels:     []string{"time", "V(n_out)"},
		Rows: [][]string{
			{"0.000000000000000e+000", "1.200000000000000e+001"},
			{"1.000000000000000e-009", "-3.500000000000000e-002"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Format{"": FormatTSV, "TSV": FormatTSV, "txt": FormatTSV, "xlsx": FormatXLSX, "parquet": FormatParquet} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("csv")
	assert.True(t, errors.Is(err, ErrUnknownFormat))

	_, err = New(Format("csv"))
	assert.True(t, errors.Is(err, ErrUnknownFormat))

	assert.Equal(t, ".txt", FormatTSV.Ext())
	assert.Equal(t, ".xlsx", FormatXLSX.Ext())
	assert.Equal(t, ".parquet", FormatParquet.Ext())
}

func TestTSV_Write(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "out", "nested")
	path := filepath.Join(dir, "R=1k.txt")

	sink, err := New(FormatTSV)
	require.NoError(t, err)

	n, err := sink.Write(sampleTable(), path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "SPICE simulation result. Parameters: R=1k, C=10n\n"+
		"time\tV(n_out)\n"+
		"0.000000000000000e+000\t1.200000000000000e+001\n"+
		"1.000000000000000e-009\t-3.500000000000000e-002\n", string(data))
	assert.Equal(t, int64(len(data)), n)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestXLSX_Write(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "R=1k.xlsx")
	n, err := XLSX{}.Write(sampleTable(), path)
	require.NoError(t, err)
	assert.Greater(t, n, int64(0))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"SPICE simulation result. Parameters: R=1k, C=10n"}, rows[0])
	assert.Equal(t, []string{"time", "V(n_out)"}, rows[1])
	assert.Equal(t, []string{"1.000000000000000e-009", "-3.500000000000000e-002"}, rows[3])
}

func TestParquet_Write(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "R=1k.parquet")
	n, err := Parquet{}.Write(sampleTable(), path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), n)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	mem := memory.NewGoAllocator()
	table, err := pqarrow.ReadTable(context.Background(), f, parquet.NewReaderProperties(mem), pqarrow.ArrowReadProperties{}, mem)
	require.NoError(t, err)
	defer table.Release()

	assert.Equal(t, int64(2), table.NumRows())
	require.Equal(t, int64(2), table.NumCols())
	assert.Equal(t, "time", table.Schema().Field(0).Name)
	assert.Equal(t, "V(n_out)", table.Schema().Field(1).Name)

	annotation, ok := table.Schema().Metadata().GetValue(AnnotationKey)
	require.True(t, ok)
	assert.Equal(t, "SPICE simulation result. Parameters: R=1k, C=10n", annotation)

	col := table.Column(1).Data().Chunk(0).(*array.String)
	assert.Equal(t, "-3.500000000000000e-002", col.Value(1))
}
