package cli

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/Shiangjun/LTspice-cli/internal/config"
)

// addSimulatorFlags registers the flags that override the simulator section.
func addSimulatorFlags(fs *pflag.FlagSet) {
	fs.String("exe", "", "LTspice executable (overrides simulator.executable)")
	fs.Duration("timeout", 0, "timeout per simulation step (overrides simulator.timeout)")
}

// addOutputFlags registers the flags that override the output and extract sections.
func addOutputFlags(fs *pflag.FlagSet) {
	fs.String("format", "", "output format: tsv, xlsx or parquet (overrides output.format)")
	fs.String("header-mode", "", "raw header parsing: fixed or labeled (overrides extract.header_mode)")
}

// applyFlagOverrides copies explicitly set flags onto cfg and revalidates it.
// Flags left at their defaults never override configuration.
func applyFlagOverrides(fs *pflag.FlagSet, cfg *config.Config) error {
	stringOverride(fs, "exe", &cfg.Simulator.Executable)
	durationOverride(fs, "timeout", &cfg.Simulator.Timeout)
	stringOverride(fs, "output-dir", &cfg.Output.Dir)
	stringOverride(fs, "format", &cfg.Output.Format)
	stringOverride(fs, "header-mode", &cfg.Extract.HeaderMode)
	return config.Validate(cfg)
}

func stringOverride(fs *pflag.FlagSet, name string, dst *string) {
	f := fs.Lookup(name)
	if f == nil || !f.Changed {
		return
	}
	*dst = f.Value.String()
}

func durationOverride(fs *pflag.FlagSet, name string, dst *time.Duration) {
	if f := fs.Lookup(name); f == nil || !f.Changed {
		return
	}
	if d, err := fs.GetDuration(name); err == nil {
		*dst = d
	}
}
