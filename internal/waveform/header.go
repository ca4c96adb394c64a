package waveform

import (
	"fmt"
	"strconv"
	"strings"
)

// HeaderMode selects how the variable and point counts are located in the header.
type HeaderMode int

const (
	// HeaderFixedOffset reads the counts from fixed line positions, the way
	// LTspice lays out ASCII raw files. This is the default.
	HeaderFixedOffset HeaderMode = iota

	// HeaderLabeled reads the counts from lines carrying their field label,
	// wherever they appear in the header.
	HeaderLabeled
)

const (
	// MarkerValues starts the data section of an ASCII raw file.
	MarkerValues = "Values:"

	// MarkerBinary starts the data section of a binary raw file.
	MarkerBinary = "Binary:"

	// MarkerVariables starts the variable declaration block.
	MarkerVariables = "Variables:"

	LabelNumVariables = "No. Variables:"
	LabelNumPoints    = "No. Points:"

	numVariablesLine = 4
	numPointsLine    = 5
)

// String returns the config spelling of the mode.
func (m HeaderMode) String() string {
	switch m {
	case HeaderFixedOffset:
		return "fixed"
	case HeaderLabeled:
		return "labeled"
	default:
		return fmt.Sprintf("HeaderMode(%d)", int(m))
	}
}

// ParseHeaderMode parses "fixed" or "labeled". Empty means fixed.
func ParseHeaderMode(s string) (HeaderMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fixed":
		return HeaderFixedOffset, nil
	case "labeled", "labelled":
		return HeaderLabeled, nil
	default:
		return 0, fmt.Errorf("unknown header mode %q (valid: fixed, labeled)", s)
	}
}

// Field is a "Key: value" line from the header.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Declared is one entry of the header's Variables: block.
type Declared struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Kind  string `json:"kind"`
}

// Header is the metadata read from a waveform file before its data section.
type Header struct {
	NumVariables int        `json:"num_variables"`
	NumPoints    int        `json:"num_points"`
	Length       int        `json:"length"` // line index of the first data line
	Fields       []Field    `json:"fields,omitempty"`
	Declared     []Declared `json:"declared,omitempty"`
}

// Field returns the value of the first header field with the given key.
func (h *Header) Field(key string) (string, bool) {
	for _, f := range h.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// trailingInt parses the last whitespace-delimited token of line.
func trailingInt(line string) (int, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return 0, fmt.Errorf("empty line")
	}
	n, err := strconv.Atoi(tokens[len(tokens)-1])
	if err != nil {
		return 0, fmt.Errorf("trailing token %q is not an integer", tokens[len(tokens)-1])
	}
	return n, nil
}

// parseField splits a "Key: value" line. Keys never contain tabs, which keeps
// variable declarations out.
func parseField(line string) (Field, bool) {
	key, value, ok := strings.Cut(line, ":")
	if !ok || key == "" || strings.ContainsAny(key, "\t") {
		return Field{}, false
	}
	return Field{Key: strings.TrimSpace(key), Value: strings.TrimSpace(value)}, true
}

// parseDeclared parses a "\t<index>\t<name>\t<kind>" declaration line.
func parseDeclared(line string) (Declared, bool) {
	tokens := strings.Fields(line)
	if len(tokens) < 2 {
		return Declared{}, false
	}
	idx, err := strconv.Atoi(tokens[0])
	if err != nil {
		return Declared{}, false
	}
	d := Declared{Index: idx, Name: tokens[1]}
	if len(tokens) > 2 {
		d.Kind = tokens[2]
	}
	return d, true
}
