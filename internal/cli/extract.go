package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Shiangjun/LTspice-cli/internal/config"
	"github.com/Shiangjun/LTspice-cli/internal/export"
	"github.com/Shiangjun/LTspice-cli/internal/schematic"
	"github.com/Shiangjun/LTspice-cli/internal/simulator"
	"github.com/Shiangjun/LTspice-cli/internal/waveform"
	"github.com/Shiangjun/LTspice-cli/internal/watcher"
)

var (
	extractOutput     string
	extractNoSimulate bool
	extractWatch      bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [schematic|raw]",
	Short: "Extract waveform variables from an ASCII .raw file",
	Long: `Extract the configured waveform variables from <base>.raw into a table.

The first line of the table is an annotation listing the schematic's .param
values, the second the variable labels, followed by one row per time point.
If the .raw file is missing, the schematic is simulated once and the read
retried (disable with --no-simulate).

Examples:
  ltspice extract sim/half_bridge.asc              # table on stdout
  ltspice extract sim/half_bridge -o out/hb.txt    # write to file
  ltspice extract sim/half_bridge -o hb.xlsx --format xlsx
  ltspice extract sim/half_bridge -o hb.txt --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "output file (default: stdout as tsv)")
	extractCmd.Flags().BoolVar(&extractNoSimulate, "no-simulate", false, "fail instead of simulating when the .raw file is missing")
	extractCmd.Flags().BoolVar(&extractWatch, "watch", false, "re-extract whenever the .raw file changes")
	addSimulatorFlags(extractCmd.Flags())
	addOutputFlags(extractCmd.Flags())
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyFlagOverrides(cmd.Flags(), cfg); err != nil {
		return err
	}

	path, err := schematicPath(args, cfg)
	if err != nil {
		return err
	}
	base := rawBase(path)

	ex, err := newExtractor(cfg)
	if err != nil {
		return err
	}
	defer ex.params.Close()
	if !extractNoSimulate {
		ex.sim = newRunner(cfg)
	}

	if !extractWatch {
		return ex.run(cmd.Context(), cmd.OutOrStdout(), base, extractOutput)
	}

	if extractOutput == "" || extractOutput == "-" {
		return fmt.Errorf("--watch needs --output")
	}
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return ex.watch(ctx, cmd.OutOrStdout(), base, extractOutput)
}

// extractor bundles what one extraction needs, so watch mode can repeat it.
type extractor struct {
	catalog *waveform.Catalog
	order   waveform.ColumnOrder
	mode    waveform.HeaderMode
	format  export.Format
	sim     waveform.Simulator
	params  *schematic.ParamCache
}

func newExtractor(cfg *config.Config) (*extractor, error) {
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
	params, err := schematic.NewParamCache(schematic.DefaultCacheCapacity)
	if err != nil {
		return nil, err
	}
	return &extractor{catalog: cat, order: order, mode: mode, format: format, params: params}, nil
}

// run extracts <base>.raw and writes it to output, or to w as tsv when
// output is empty or "-".
func (e *extractor) run(ctx context.Context, w io.Writer, base, output string) error {
	tokens, err := e.params.Get(base + schematic.Ext)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	table, err := waveform.ExtractFile(ctx, base, e.sim, e.catalog, e.order,
		schematic.Annotation(tokens), waveform.WithHeaderMode(e.mode))
	if err != nil {
		return err
	}
	if table.Dropped > 0 {
		log.Printf("Warning: dropped %d incomplete trailing record", table.Dropped)
	}

	if output == "" || output == "-" {
		_, err := table.WriteTo(w)
		return err
	}

	sink, err := export.New(e.format)
	if err != nil {
		return err
	}
	n, err := sink.Write(table, output)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s rows to %s (%.1f kB)\n", SuccessStyle.Render("✓ Wrote"),
		formatNumber(len(table.Rows)), output, float64(n)/1000)
	return nil
}

// watch extracts once, then again after every change to <base>.raw until
// ctx is done. Failed extractions are logged and do not stop watching.
func (e *extractor) watch(ctx context.Context, w io.Writer, base, output string) error {
	// A rewrite of the raw file must not launch another simulation
	e.sim = nil

	rw, err := watcher.New([]string{base + waveform.RawExt})
	if err != nil {
		return err
	}
	defer rw.Stop()

	if err := e.run(ctx, w, base, output); err != nil {
		log.Printf("Extraction failed: %v", err)
	}

	if err := rw.Start(ctx, func(files []string) {
		if err := e.run(ctx, w, base, output); err != nil {
			log.Printf("Extraction failed: %v", err)
		}
	}); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s %s%s (Ctrl+C to stop)\n", SubtitleStyle.Render("Watching"), base, waveform.RawExt)
	<-ctx.Done()
	return nil
}

// rawBase strips a schematic or raw extension.
func rawBase(path string) string {
	return strings.TrimSuffix(schematic.BasePath(path), waveform.RawExt)
}

func newRunner(cfg *config.Config) *simulator.Runner {
	r := simulator.NewRunner(cfg.Simulator.Executable, cfg.Simulator.Args...)
	r.Timeout = cfg.Simulator.Timeout
	if verbose {
		r.Stdout = os.Stderr
		r.Stderr = os.Stderr
	}
	return r
}

// formatNumber formats an integer with thousands separators.
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
