package simulator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds both simulator steps together.
	DefaultTimeout = 10 * time.Minute

	ascExt     = ".asc"
	netlistExt = ".net"
	rawExt     = ".raw"
)

var (
	// ErrExecutableNotFound indicates the simulator binary is not configured or not on disk
	ErrExecutableNotFound = errors.New("simulator executable not found")

	// ErrSimulationFailed indicates the simulator exited with an error
	ErrSimulationFailed = errors.New("simulation failed")

	// ErrTimeout indicates the simulator exceeded its time budget
	ErrTimeout = errors.New("simulation timed out")

	// ErrNoWaveform indicates the simulator finished without writing a .raw file
	ErrNoWaveform = errors.New("simulation produced no waveform file")
)

// runCommand executes one simulator invocation.
// Declared as a variable to allow mocking in tests.
var runCommand = func(ctx context.Context, name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// lookPath resolves the simulator executable.
// Declared as a variable to allow mocking in tests.
var lookPath = exec.LookPath

// Runner drives LTspice in two steps: compile the schematic to a netlist,
// then run the netlist in batch mode with ASCII waveform output.
type Runner struct {
	Executable string
	Args       []string // leading arguments, e.g. the LTspice path when Executable is wine
	Timeout    time.Duration
	Stdout     io.Writer
	Stderr     io.Writer
}

// Result describes a finished simulation.
type Result struct {
	RawPath  string
	RawSize  int64
	Duration time.Duration
}

// NewRunner creates a runner for the given executable with the default timeout.
func NewRunner(executable string, args ...string) *Runner {
	return &Runner{
		Executable: executable,
		Args:       args,
		Timeout:    DefaultTimeout,
	}
}

// NetlistArgs returns the arguments that compile <basePath>.asc to <basePath>.net.
func NetlistArgs(basePath string) []string {
	return []string{"-netlist", basePath + ascExt}
}

// BatchArgs returns the arguments that simulate <basePath>.net into an ASCII <basePath>.raw.
func BatchArgs(basePath string) []string {
	return []string{"-b", "-ascii", basePath + netlistExt}
}

// Simulate runs both steps for basePath. It satisfies waveform.Simulator.
func (r *Runner) Simulate(ctx context.Context, basePath string) error {
	_, err := r.Run(ctx, basePath)
	return err
}

// Run runs both steps for basePath and reports the produced waveform file.
func (r *Runner) Run(ctx context.Context, basePath string) (*Result, error) {
	if strings.TrimSpace(r.Executable) == "" {
		return nil, fmt.Errorf("%w: no executable configured", ErrExecutableNotFound)
	}
	exe, err := lookPath(r.Executable)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrExecutableNotFound, r.Executable, err)
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	name := filepath.Base(basePath)
	log.Printf("Simulation starting: %s%s", name, ascExt)
	startTime := time.Now()

	steps := []struct {
		name string
		args []string
	}{
		{"netlist", NetlistArgs(basePath)},
		{"batch", BatchArgs(basePath)},
	}

	for _, step := range steps {
		args := append(append([]string{}, r.Args...), step.args...)
		if err := r.exec(execCtx, exe, args); err != nil {
			if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %s step exceeded %s", ErrTimeout, step.name, timeout)
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%w: %s step: %v", ErrSimulationFailed, step.name, err)
		}
	}

	rawPath := basePath + rawExt
	info, err := os.Stat(rawPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoWaveform, rawPath)
	}

	result := &Result{
		RawPath:  rawPath,
		RawSize:  info.Size(),
		Duration: time.Since(startTime),
	}
	log.Printf("Simulation finished: %s%s created (%.1f kB)", name, rawExt, float64(result.RawSize)/1000)
	return result, nil
}

func (r *Runner) exec(ctx context.Context, exe string, args []string) error {
	var stderr bytes.Buffer
	errOut := io.Writer(&stderr)
	if r.Stderr != nil {
		errOut = io.MultiWriter(&stderr, r.Stderr)
	}

	stdout := r.Stdout
	if stdout == nil {
		stdout = io.Discard
	}

	err := runCommand(ctx, exe, args, stdout, errOut)
	if err != nil && stderr.Len() > 0 {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return err
}
