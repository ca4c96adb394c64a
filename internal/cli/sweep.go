package cli

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Shiangjun/LTspice-cli/internal/config"
	"github.com/Shiangjun/LTspice-cli/internal/history"
	"github.com/Shiangjun/LTspice-cli/internal/schematic"
	"github.com/Shiangjun/LTspice-cli/internal/sweep"
)

var (
	sweepValues          string
	sweepRange           string
	sweepSchematic       string
	sweepNoSimulate      bool
	sweepContinueOnError bool
	sweepOverwrite       bool
	sweepNoHistory       bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep <param>",
	Short: "Sweep a schematic parameter over a list of values",
	Long: `For each value, rewrite <param> in the schematic, simulate, and write the
extracted waveform table to <output-dir>/<param>=<value><ext>.

Values come from --values (comma separated) or --range start:stop:step.
Runs are recorded in the history ledger unless --no-history is given.

Examples:
  ltspice sweep R --values 1k,2.2k,4.7k --schematic sim/half_bridge.asc
  ltspice sweep Vin --range 10:20:2.5 --format xlsx --continue-on-error`,
	Args: cobra.ExactArgs(1),
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
	f := sweepCmd.Flags()
	f.StringVar(&sweepValues, "values", "", "comma separated values")
	f.StringVar(&sweepRange, "range", "", "value range start:stop:step")
	f.StringVar(&sweepSchematic, "schematic", "", "schematic to sweep (default: schematic.path)")
	f.String("output-dir", "", "directory for the tables (overrides output.dir)")
	f.BoolVar(&sweepNoSimulate, "no-simulate", false, "extract existing .raw files without simulating")
	f.BoolVar(&sweepContinueOnError, "continue-on-error", false, "keep sweeping after a failed value")
	f.BoolVar(&sweepOverwrite, "overwrite", false, "edit the schematic in place instead of <base>_new.asc")
	f.BoolVar(&sweepNoHistory, "no-history", false, "do not record the run")
	sweepCmd.MarkFlagsMutuallyExclusive("values", "range")
	addSimulatorFlags(f)
	addOutputFlags(f)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyFlagOverrides(cmd.Flags(), cfg); err != nil {
		return err
	}

	values, err := sweepValueList(sweepValues, sweepRange)
	if err != nil {
		return err
	}

	var pathArgs []string
	if sweepSchematic != "" {
		pathArgs = []string{sweepSchematic}
	}
	path, err := schematicPath(pathArgs, cfg)
	if err != nil {
		return err
	}

	scfg, err := sweepConfig(cfg, path)
	if err != nil {
		return err
	}

	opts := []sweep.Option{
		sweep.WithSimulator(newRunner(cfg)),
		sweep.WithReporter(NewCLIProgressReporter(cmd.OutOrStdout(), quiet)),
	}
	if cfg.History.Enabled && !sweepNoHistory {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		store, err := history.Open(cfg.HistoryPath(wd))
		if err != nil {
			// The sweep itself does not depend on the ledger
			log.Printf("Warning: history disabled: %v", err)
		} else {
			defer store.Close()
			opts = append(opts, sweep.WithRecorder(store))
		}
	}

	sw, err := sweep.New(*scfg, opts...)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	summary, err := sw.Run(ctx, args[0], values)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d values failed", summary.Failed, summary.Total)
	}
	return nil
}

// sweepValueList resolves --values or --range to the list of values.
func sweepValueList(list, rng string) ([]string, error) {
	switch {
	case list != "" && rng != "":
		return nil, errors.New("use either --values or --range")
	case rng != "":
		return sweep.ParseRange(rng)
	case list != "":
		var values []string
		for _, v := range strings.Split(list, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			return nil, sweep.ErrNoValues
		}
		return values, nil
	default:
		return nil, errors.New("one of --values or --range is required")
	}
}

// sweepConfig maps the loaded configuration onto a sweep.Config.
func sweepConfig(cfg *config.Config, path string) (*sweep.Config, error) {
	cat, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}
	order, err := cfg.ColumnOrder()
	if err != nil {
		return nil, err
	}
	mode, err := cfg.HeaderMode()
	if err != nil {
		return nil, err
	}
	format, err := cfg.OutputFormat()
	if err != nil {
		return nil, err
	}

	return &sweep.Config{
		Executable:      cfg.Simulator.Executable,
		ExecutableArgs:  cfg.Simulator.Args,
		Timeout:         cfg.Simulator.Timeout,
		SchematicBase:   schematic.BasePath(path),
		OutputDir:       cfg.Output.Dir,
		Format:          format,
		RunSimulation:   !sweepNoSimulate,
		ContinueOnError: sweepContinueOnError,
		Overwrite:       sweepOverwrite,
		Catalog:         cat,
		Order:           order,
		HeaderMode:      mode,
	}, nil
}
