package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/Shiangjun/LTspice-cli/internal/sweep"
)

// CLIProgressReporter reports sweep progress with a progress bar.
type CLIProgressReporter struct {
	quiet  bool
	out    io.Writer
	bar    *progressbar.ProgressBar
	failed []*sweep.Point
}

var _ sweep.Reporter = (*CLIProgressReporter)(nil)

// NewCLIProgressReporter creates a reporter writing to out.
func NewCLIProgressReporter(out io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{quiet: quiet, out: out}
}

func (c *CLIProgressReporter) OnSweepStart(run *sweep.Run) {
	c.failed = nil
	if c.quiet {
		return
	}
	fmt.Fprintf(c.out, "%s %s over %d values on %s\n", TitleStyle.Render("Sweeping"),
		run.Param, len(run.Values), run.Schematic)

	c.bar = progressbar.NewOptions(len(run.Values),
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Simulating"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnPointStart(index, total int, param, value string) {
	if c.quiet || c.bar == nil {
		return
	}
	c.bar.Describe(fmt.Sprintf("%s=%s", param, value))
}

func (c *CLIProgressReporter) OnPointDone(point *sweep.Point) {
	if point.Err != nil {
		c.failed = append(c.failed, point)
	}
	if c.quiet || c.bar == nil {
		return
	}
	c.bar.Add(1)
}

func (c *CLIProgressReporter) OnSweepComplete(summary *sweep.Summary) {
	if c.quiet {
		return
	}
	if c.bar != nil {
		c.bar.Finish()
		c.bar = nil
	}

	fmt.Fprintln(c.out)
	status := SuccessStyle.Render("✓ Sweep complete:")
	if summary.Failed > 0 || summary.Err != nil {
		status = WarningStyle.Render("! Sweep finished with errors:")
	}
	fmt.Fprintf(c.out, "%s %d/%d points in %.1fs\n", status,
		summary.Succeeded, summary.Total, summary.Duration.Seconds())
	for _, p := range c.failed {
		fmt.Fprintf(c.out, "  %s %s=%s: %v\n", ErrorStyle.Render("✗"), p.Param, p.Value, p.Err)
	}
	fmt.Fprintf(c.out, "  Run ID: %s\n", summary.RunID)
}
