package sweep

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/Shiangjun/LTspice-cli/internal/export"
	"github.com/Shiangjun/LTspice-cli/internal/schematic"
	"github.com/Shiangjun/LTspice-cli/internal/simulator"
	"github.com/Shiangjun/LTspice-cli/internal/waveform"
	"github.com/google/uuid"
)

var (
	// ErrNoParam indicates an empty parameter name
	ErrNoParam = errors.New("no sweep parameter given")

	// ErrNoValues indicates an empty value list
	ErrNoValues = errors.New("no sweep values given")

	// ErrInvalidValue indicates a value that cannot be used as a single
	// name=value token or in an output file name
	ErrInvalidValue = errors.New("invalid sweep value")

	// ErrNoSchematic indicates a missing schematic base path
	ErrNoSchematic = errors.New("no schematic configured")
)

// Config holds everything a sweep needs. Nothing is read from global state.
type Config struct {
	Executable      string
	ExecutableArgs  []string
	Timeout         time.Duration
	SchematicBase   string // schematic path without .asc
	OutputDir       string
	Format          export.Format
	RunSimulation   bool
	ContinueOnError bool
	Overwrite       bool // edit the schematic in place instead of writing <base>_new.asc

	Catalog    *waveform.Catalog
	Order      waveform.ColumnOrder
	HeaderMode waveform.HeaderMode
}

// Run identifies one sweep invocation.
type Run struct {
	ID        string
	Param     string
	Values    []string
	Schematic string
	StartedAt time.Time
}

// Point is the outcome of one sweep value.
type Point struct {
	Index      int
	Param      string
	Value      string
	OutputPath string
	Rows       int
	Dropped    int
	Bytes      int64
	Duration   time.Duration
	Err        error
}

// Summary describes a finished or aborted sweep.
type Summary struct {
	RunID     string
	Param     string
	Total     int
	Succeeded int
	Failed    int
	Duration  time.Duration
	Err       error
}

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithSimulator replaces the LTspice runner.
func WithSimulator(sim waveform.Simulator) Option {
	return func(s *Sweeper) { s.sim = sim }
}

// WithReporter sets the progress reporter.
func WithReporter(r Reporter) Option {
	return func(s *Sweeper) { s.reporter = r }
}

// WithRecorder sets where runs are recorded.
func WithRecorder(r Recorder) Option {
	return func(s *Sweeper) { s.recorder = r }
}

// WithSink overrides the sink chosen from Config.Format.
func WithSink(sink export.Sink) Option {
	return func(s *Sweeper) { s.sink = sink }
}

// Sweeper rewrites one schematic parameter per value, simulates, extracts
// and writes one table per value.
type Sweeper struct {
	cfg      Config
	sim      waveform.Simulator
	sink     export.Sink
	reporter Reporter
	recorder Recorder
}

// New creates a sweeper. Unset catalog and order fall back to the defaults.
func New(cfg Config, opts ...Option) (*Sweeper, error) {
	if strings.TrimSpace(cfg.SchematicBase) == "" {
		return nil, ErrNoSchematic
	}
	cfg.SchematicBase = schematic.BasePath(cfg.SchematicBase)
	if cfg.Catalog == nil {
		cfg.Catalog = waveform.DefaultCatalog()
	}
	if cfg.Order == nil {
		cfg.Order = waveform.DefaultColumnOrder()
	}

	s := &Sweeper{cfg: cfg, reporter: NoOpReporter{}}
	for _, opt := range opts {
		opt(s)
	}

	if s.sim == nil {
		runner := simulator.NewRunner(cfg.Executable, cfg.ExecutableArgs...)
		if cfg.Timeout > 0 {
			runner.Timeout = cfg.Timeout
		}
		s.sim = runner
	}
	if s.sink == nil {
		sink, err := export.New(cfg.Format)
		if err != nil {
			return nil, err
		}
		s.sink = sink
	}
	return s, nil
}

// OutputPath returns where the table for param=value is written.
func (s *Sweeper) OutputPath(param, value string) string {
	return filepath.Join(s.cfg.OutputDir, param+"="+value+s.cfg.Format.Ext())
}

// Run sweeps param over values. A failing point aborts the sweep unless
// ContinueOnError is set. Cancellation is checked between points.
func (s *Sweeper) Run(ctx context.Context, param string, values []string) (*Summary, error) {
	if strings.TrimSpace(param) == "" {
		return nil, ErrNoParam
	}
	if len(values) == 0 {
		return nil, ErrNoValues
	}
	for _, v := range values {
		if v == "" || strings.ContainsAny(v, "/\\ \t\r\n") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidValue, v)
		}
	}

	run := &Run{
		ID:        uuid.New().String(),
		Param:     param,
		Values:    values,
		Schematic: s.cfg.SchematicBase + schematic.Ext,
		StartedAt: time.Now(),
	}
	summary := &Summary{RunID: run.ID, Param: param, Total: len(values)}

	if s.recorder != nil {
		if err := s.recorder.BeginRun(run); err != nil {
			log.Printf("Warning: failed to record sweep start: %v", err)
		}
	}
	s.reporter.OnSweepStart(run)

	for i, value := range values {
		if err := ctx.Err(); err != nil {
			summary.Err = err
			break
		}

		s.reporter.OnPointStart(i, len(values), param, value)
		point := s.point(ctx, i, param, value)

		if s.recorder != nil {
			if err := s.recorder.RecordPoint(run.ID, point); err != nil {
				log.Printf("Warning: failed to record point %s=%s: %v", param, value, err)
			}
		}
		s.reporter.OnPointDone(point)

		if point.Err != nil {
			summary.Failed++
			if !s.cfg.ContinueOnError {
				summary.Err = fmt.Errorf("point %s=%s: %w", param, value, point.Err)
				break
			}
			log.Printf("Point %s=%s failed, continuing: %v", param, value, point.Err)
			continue
		}
		summary.Succeeded++
	}

	summary.Duration = time.Since(run.StartedAt)
	if s.recorder != nil {
		if err := s.recorder.FinishRun(summary); err != nil {
			log.Printf("Warning: failed to record sweep result: %v", err)
		}
	}
	s.reporter.OnSweepComplete(summary)

	return summary, summary.Err
}

func (s *Sweeper) point(ctx context.Context, index int, param, value string) *Point {
	start := time.Now()
	point := &Point{Index: index, Param: param, Value: value}
	defer func() { point.Duration = time.Since(start) }()

	edit, err := schematic.SetParam(s.cfg.SchematicBase+schematic.Ext, param, value, s.cfg.Overwrite)
	if err != nil {
		point.Err = err
		return point
	}
	if edit.Replaced == 0 {
		log.Printf("Warning: parameter %s not found in %s", param, filepath.Base(edit.Path))
	}
	base := schematic.BasePath(edit.Path)

	if s.cfg.RunSimulation {
		if err := s.sim.Simulate(ctx, base); err != nil {
			point.Err = err
			return point
		}
	}

	tokens, err := schematic.GetParams(edit.Path)
	if err != nil {
		point.Err = err
		return point
	}

	table, err := waveform.ExtractFile(ctx, base, s.sim, s.cfg.Catalog, s.cfg.Order,
		schematic.Annotation(tokens), waveform.WithHeaderMode(s.cfg.HeaderMode))
	if err != nil {
		point.Err = err
		return point
	}

	point.OutputPath = s.OutputPath(param, value)
	n, err := s.sink.Write(table, point.OutputPath)
	if err != nil {
		point.Err = err
		return point
	}
	point.Rows = len(table.Rows)
	point.Dropped = table.Dropped
	point.Bytes = n
	return point
}
