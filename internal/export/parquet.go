package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/Shiangjun/LTspice-cli/internal/waveform"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// AnnotationKey is the schema metadata key holding the table annotation.
const AnnotationKey = "annotation"

// Parquet writes the table as one UTF-8 string column per label, with the
// annotation stored in the schema metadata.
type Parquet struct{}

func (Parquet) Write(t *waveform.Table, path string) (int64, error) {
	fields := make([]arrow.Field, len(t.Labels))
	for i, label := range t.Labels {
		fields[i] = arrow.Field{Name: label, Type: arrow.BinaryTypes.String}
	}
	md := arrow.NewMetadata([]string{AnnotationKey}, []string{strings.TrimSuffix(t.Annotation, "\n")})
	schema := arrow.NewSchema(fields, &md)

	mem := memory.NewGoAllocator()
	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	for _, row := range t.Rows {
		for i, v := range row {
			builder.Field(i).(*array.StringBuilder).Append(v)
		}
	}
	record := builder.NewRecord()
	defer record.Release()

	return atomicWrite(path, func(f *os.File) error {
		props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
		arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

		writer, err := pqarrow.NewFileWriter(schema, f, props, arrowProps)
		if err != nil {
			return fmt.Errorf("failed to create parquet writer: %w", err)
		}
		if err := writer.Write(record); err != nil {
			writer.Close()
			return fmt.Errorf("failed to write parquet record: %w", err)
		}
		if err := writer.Close(); err != nil {
			return fmt.Errorf("failed to finish parquet file: %w", err)
		}
		return nil
	})
}
