package sweep

// Reporter provides callbacks for reporting sweep progress.
// Implementations can display progress bars, log messages, or remain silent.
type Reporter interface {
	// OnSweepStart is called once before the first point.
	OnSweepStart(run *Run)

	// OnPointStart is called before a point's schematic is edited.
	OnPointStart(index, total int, param, value string)

	// OnPointDone is called after each point, successful or not.
	OnPointDone(point *Point)

	// OnSweepComplete is called once after the last point or on abort.
	OnSweepComplete(summary *Summary)
}

// Recorder persists sweep runs and their points.
type Recorder interface {
	BeginRun(run *Run) error
	RecordPoint(runID string, point *Point) error
	FinishRun(summary *Summary) error
}

// NoOpReporter is a reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpReporter struct{}

func (NoOpReporter) OnSweepStart(run *Run)                              {}
func (NoOpReporter) OnPointStart(index, total int, param, value string) {}
func (NoOpReporter) OnPointDone(point *Point)                           {}
func (NoOpReporter) OnSweepComplete(summary *Summary)                   {}
