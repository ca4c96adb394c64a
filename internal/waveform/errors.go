package waveform

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceFileMissing indicates the waveform file does not exist, even
	// after the simulator was asked to produce it
	ErrSourceFileMissing = errors.New("waveform file missing")

	// ErrMalformedHeader indicates the header ended or broke before the
	// variable count, point count and Values: marker were all read
	ErrMalformedHeader = errors.New("malformed waveform header")

	// ErrIndexOutOfRange indicates a catalog index not present in the file
	ErrIndexOutOfRange = errors.New("catalog index out of range")
)

// Stage names the part of the file being processed when an error occurred.
type Stage string

const (
	StageOpen   Stage = "open"
	StageHeader Stage = "header"
	StageData   Stage = "data"
)

// ParseError reports a failure while reading a waveform file.
type ParseError struct {
	Path  string // empty when reading from a bare stream
	Stage Stage
	Line  int // 1-based, 0 when the failure is at end of stream
	Err   error
}

func (e *ParseError) Error() string {
	src := e.Path
	if src == "" {
		src = "<stream>"
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s stage, line %d: %v", src, e.Stage, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %s stage: %v", src, e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// withPath fills in the file path on a ParseError produced by a stream parse.
func withPath(err error, path string) error {
	var pe *ParseError
	if errors.As(err, &pe) && pe.Path == "" {
		pe.Path = path
	}
	return err
}
