package waveform

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

type parseState int

const (
	readingHeader parseState = iota
	readingData
)

// Option configures a parse.
type Option func(*parser)

// WithHeaderMode selects how header counts are located.
func WithHeaderMode(mode HeaderMode) Option {
	return func(p *parser) {
		p.mode = mode
	}
}

// Result is the outcome of parsing a waveform stream.
type Result struct {
	Header  Header
	Records [][]string // one per complete record, values in catalog order
	Dropped int        // trailing partial records discarded at end of stream
}

type parser struct {
	cat   *Catalog
	mode  HeaderMode
	state parseState

	header      Header
	haveVars    bool
	havePoints  bool
	inVariables bool

	buf     []string
	pending int // data lines consumed in the current record
	records [][]string
}

// Parse reads a waveform stream in a single forward pass, selecting the
// catalog's variables from every record.
func Parse(r io.Reader, cat *Catalog, opts ...Option) (*Result, error) {
	p := &parser{
		cat:  cat,
		mode: HeaderFixedOffset,
	}
	for _, opt := range opts {
		opt(p)
	}

	br := bufio.NewReader(r)
	lineNum := 0
	for {
		line, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, &ParseError{Stage: p.stage(), Line: lineNum + 1, Err: readErr}
		}
		if line != "" {
			if err := p.line(lineNum, line); err != nil {
				return nil, err
			}
			lineNum++
		}
		if readErr != nil {
			break
		}
	}

	return p.finish()
}

func (p *parser) stage() Stage {
	if p.state == readingHeader {
		return StageHeader
	}
	return StageData
}

func (p *parser) line(lineNum int, raw string) error {
	if p.state == readingHeader {
		return p.headerLine(lineNum, raw)
	}
	p.dataLine(lineNum, raw)
	return nil
}

func (p *parser) headerLine(lineNum int, raw string) error {
	line := strings.TrimRight(raw, "\r\n")

	if strings.HasPrefix(line, MarkerValues) {
		return p.startData(lineNum)
	}
	if strings.HasPrefix(line, MarkerBinary) {
		return &ParseError{Stage: StageHeader, Line: lineNum + 1,
			Err: fmt.Errorf("%w: binary data section, rerun the simulator with -ascii", ErrMalformedHeader)}
	}

	isVars, isPoints := false, false
	switch p.mode {
	case HeaderLabeled:
		isVars = strings.HasPrefix(line, LabelNumVariables)
		isPoints = strings.HasPrefix(line, LabelNumPoints)
	default:
		isVars = lineNum == numVariablesLine
		isPoints = lineNum == numPointsLine
	}

	if isVars || isPoints {
		n, err := trailingInt(line)
		if err != nil {
			return &ParseError{Stage: StageHeader, Line: lineNum + 1, Err: fmt.Errorf("%w: %v", ErrMalformedHeader, err)}
		}
		if isVars {
			p.header.NumVariables = n
			p.haveVars = true
		} else {
			p.header.NumPoints = n
			p.havePoints = true
		}
	}

	if strings.HasPrefix(line, MarkerVariables) {
		p.inVariables = true
		return nil
	}
	if p.inVariables {
		if d, ok := parseDeclared(line); ok {
			p.header.Declared = append(p.header.Declared, d)
			return nil
		}
		p.inVariables = false
	}
	if f, ok := parseField(line); ok {
		p.header.Fields = append(p.header.Fields, f)
	}
	return nil
}

// startData validates the header and catalog on the Values: marker.
func (p *parser) startData(lineNum int) error {
	var missing []string
	if !p.haveVars {
		missing = append(missing, "variable count")
	}
	if !p.havePoints {
		missing = append(missing, "point count")
	}
	if len(missing) > 0 {
		return &ParseError{Stage: StageHeader, Line: lineNum + 1,
			Err: fmt.Errorf("%w: %s not found before %s", ErrMalformedHeader, strings.Join(missing, " and "), MarkerValues)}
	}
	if p.header.NumVariables < 1 {
		return &ParseError{Stage: StageHeader, Line: lineNum + 1,
			Err: fmt.Errorf("%w: variable count must be at least 1, got %d", ErrMalformedHeader, p.header.NumVariables)}
	}
	if p.cat.MaxIndex() >= p.header.NumVariables {
		return &ParseError{Stage: StageData, Line: lineNum + 1,
			Err: fmt.Errorf("%w: index %d, file declares %d variables", ErrIndexOutOfRange, p.cat.MaxIndex(), p.header.NumVariables)}
	}

	p.header.Length = lineNum + 1
	p.state = readingData
	p.buf = make([]string, p.cat.Len())
	if p.header.NumPoints > 0 {
		p.records = make([][]string, 0, p.header.NumPoints)
	}
	return nil
}

func (p *parser) dataLine(lineNum int, raw string) {
	pos := (lineNum - p.header.Length) % p.header.NumVariables
	p.pending++

	if slot, ok := p.cat.Slot(pos); ok {
		p.buf[slot] = lastField(raw)
	}

	if pos == p.header.NumVariables-1 {
		p.records = append(p.records, p.buf)
		p.buf = make([]string, p.cat.Len())
		p.pending = 0
	}
}

func (p *parser) finish() (*Result, error) {
	if p.state == readingHeader {
		var missing []string
		if !p.haveVars {
			missing = append(missing, "variable count")
		}
		if !p.havePoints {
			missing = append(missing, "point count")
		}
		missing = append(missing, MarkerValues+" marker")
		return nil, &ParseError{Stage: StageHeader,
			Err: fmt.Errorf("%w: end of stream without %s", ErrMalformedHeader, strings.Join(missing, ", "))}
	}

	res := &Result{Header: p.header, Records: p.records}
	if p.pending > 0 {
		res.Dropped = 1
	}
	if res.Records == nil {
		res.Records = [][]string{}
	}
	return res, nil
}

// lastField returns the text after the last tab, without the line ending.
func lastField(raw string) string {
	line := strings.TrimSuffix(raw, "\n")
	line = strings.TrimSuffix(line, "\r")
	if i := strings.LastIndexByte(line, '\t'); i >= 0 {
		return line[i+1:]
	}
	return line
}
