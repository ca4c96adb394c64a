// Package waveform extracts selected signals from LTspice ASCII raw files.
//
// A raw file is a text header terminated by a "Values:" line, followed by a
// data section of fixed-stride records: each record spans NumVariables
// consecutive lines, one value per line, the value being the text after the
// line's last tab. Extraction selects the lines whose in-record position is
// a catalog index, then reorders the selected columns by a ColumnOrder.
//
// Values are carried as the raw text from the file; nothing is parsed as a
// number.
package waveform
