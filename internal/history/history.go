package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Shiangjun/LTspice-cli/internal/sweep"
)

// ErrRunNotFound indicates an unknown run ID
var ErrRunNotFound = errors.New("run not found")

// timeFormat has fixed width so stored timestamps sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// RunRecord is a stored sweep run.
type RunRecord struct {
	RunID      string
	Param      string
	Schematic  string
	Total      int
	Succeeded  int
	Failed     int
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time // zero while the run is in progress or was interrupted
}

// PointRecord is a stored sweep point.
type PointRecord struct {
	RunID      string
	Index      int
	Param      string
	Value      string
	OutputPath string
	Rows       int
	Dropped    int
	Bytes      int64
	Duration   time.Duration
	Error      string
}

// Store is the sqlite-backed sweep ledger. It implements sweep.Recorder.
type Store struct {
	db *sql.DB
}

var _ sweep.Recorder = (*Store)(nil)

// Open opens or creates the ledger at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; sqlite serializes anyway
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRun inserts a run row.
func (s *Store) BeginRun(run *sweep.Run) error {
	_, err := sq.Insert("runs").
		Columns("run_id", "param", "schematic", "total", "started_at").
		Values(run.ID, run.Param, run.Schematic, len(run.Values), run.StartedAt.UTC().Format(timeFormat)).
		RunWith(s.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}
	return nil
}

// RecordPoint inserts or replaces a point row.
func (s *Store) RecordPoint(runID string, p *sweep.Point) error {
	errText := ""
	if p.Err != nil {
		errText = p.Err.Error()
	}
	_, err := sq.Insert("points").
		Columns("run_id", "idx", "param", "value", "output_path", "row_count", "dropped", "bytes", "duration_ms", "error").
		Values(runID, p.Index, p.Param, p.Value, p.OutputPath, p.Rows, p.Dropped, p.Bytes, p.Duration.Milliseconds(), errText).
		Options("OR REPLACE").
		RunWith(s.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to record point %d of run %s: %w", p.Index, runID, err)
	}
	return nil
}

// FinishRun stores the final counts of a run.
func (s *Store) FinishRun(summary *sweep.Summary) error {
	errText := ""
	if summary.Err != nil {
		errText = summary.Err.Error()
	}
	res, err := sq.Update("runs").
		Set("succeeded", summary.Succeeded).
		Set("failed", summary.Failed).
		Set("error", errText).
		Set("finished_at", time.Now().UTC().Format(timeFormat)).
		Where(sq.Eq{"run_id": summary.RunID}).
		RunWith(s.db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", summary.RunID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, summary.RunID)
	}
	return nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (s *Store) ListRuns(limit int) ([]*RunRecord, error) {
	builder := sq.Select("run_id", "param", "schematic", "total", "succeeded", "failed", "error", "started_at", "finished_at").
		From("runs").
		OrderBy("started_at DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	rows, err := builder.RunWith(s.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns one run by ID.
func (s *Store) GetRun(runID string) (*RunRecord, error) {
	row := sq.Select("run_id", "param", "schematic", "total", "succeeded", "failed", "error", "started_at", "finished_at").
		From("runs").
		Where(sq.Eq{"run_id": runID}).
		RunWith(s.db).
		QueryRow()

	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return r, err
}

// Points returns the points of a run in sweep order.
func (s *Store) Points(runID string) ([]*PointRecord, error) {
	rows, err := sq.Select("run_id", "idx", "param", "value", "output_path", "row_count", "dropped", "bytes", "duration_ms", "error").
		From("points").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("idx").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to list points for %s: %w", runID, err)
	}
	defer rows.Close()

	var points []*PointRecord
	for rows.Next() {
		p := &PointRecord{}
		var durationMs int64
		if err := rows.Scan(&p.RunID, &p.Index, &p.Param, &p.Value, &p.OutputPath,
			&p.Rows, &p.Dropped, &p.Bytes, &durationMs, &p.Error); err != nil {
			return nil, fmt.Errorf("failed to scan point: %w", err)
		}
		p.Duration = time.Duration(durationMs) * time.Millisecond
		points = append(points, p)
	}
	return points, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*RunRecord, error) {
	r := &RunRecord{}
	var startedAt, finishedAt string
	if err := row.Scan(&r.RunID, &r.Param, &r.Schematic, &r.Total, &r.Succeeded, &r.Failed,
		&r.Error, &startedAt, &finishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	r.StartedAt, _ = time.Parse(timeFormat, startedAt)
	if finishedAt != "" {
		r.FinishedAt, _ = time.Parse(timeFormat, finishedAt)
	}
	return r, nil
}
