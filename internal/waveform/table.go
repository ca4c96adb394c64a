package waveform

import (
	"bufio"
	"io"
	"strings"
)

// Table is the reordered, labeled selection produced by one extraction.
type Table struct {
	Annotation string
	Labels     []string
	Rows       [][]string
	Header     Header
	Dropped    int // trailing partial records discarded while parsing
}

// Extract parses a waveform stream, selects the catalog's variables and
// reorders labels and values by order.
func Extract(r io.Reader, cat *Catalog, order ColumnOrder, annotation string, opts ...Option) (*Table, error) {
	order, err := NewColumnOrder(order, cat.Len())
	if err != nil {
		return nil, err
	}

	res, err := Parse(r, cat, opts...)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, len(res.Records))
	for i, rec := range res.Records {
		rows[i] = order.Apply(rec)
	}

	return &Table{
		Annotation: annotation,
		Labels:     order.Apply(cat.Names()),
		Rows:       rows,
		Header:     res.Header,
		Dropped:    res.Dropped,
	}, nil
}

// WriteTo serializes the table as annotation line, label line, then one
// tab-delimited line per row, each newline-terminated.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	bw.WriteString(t.Annotation)
	if !strings.HasSuffix(t.Annotation, "\n") {
		bw.WriteByte('\n')
	}
	bw.WriteString(strings.Join(t.Labels, "\t"))
	bw.WriteByte('\n')
	for _, row := range t.Rows {
		bw.WriteString(strings.Join(row, "\t"))
		bw.WriteByte('\n')
	}

	err := bw.Flush()
	return cw.n, err
}

// Column returns the values of the column with the given label.
func (t *Table) Column(label string) ([]string, bool) {
	col := -1
	for i, l := range t.Labels {
		if l == label {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, false
	}

	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[col]
	}
	return values, true
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
