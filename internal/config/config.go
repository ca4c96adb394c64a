// Package config provides configuration loading for the LTspice CLI.
//
// Configuration Hierarchy (highest to lowest priority):
//  1. Environment variables (LTSPICE_*)
//  2. Project config (.ltspice/config.yml, or the file given with --config)
//  3. User config (~/.ltspice/config.yml)
//  4. Built-in defaults
//
// Environment Variable Convention:
//   - Prefix: LTSPICE_
//   - Nested fields: Use underscores (LTSPICE_SIMULATOR_EXECUTABLE)
//   - Automatic mapping via Viper's SetEnvKeyReplacer
package config

import (
	"path/filepath"
	"runtime"
	"time"

	"github.com/Shiangjun/LTspice-cli/internal/export"
	"github.com/Shiangjun/LTspice-cli/internal/simulator"
	"github.com/Shiangjun/LTspice-cli/internal/waveform"
)

// DirName is the per-project and per-user configuration directory.
const DirName = ".ltspice"

// Config represents the complete configuration.
type Config struct {
	Simulator SimulatorConfig `yaml:"simulator" mapstructure:"simulator"`
	Schematic SchematicConfig `yaml:"schematic" mapstructure:"schematic"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	History   HistoryConfig   `yaml:"history" mapstructure:"history"`
}

// SimulatorConfig configures how LTspice is launched.
type SimulatorConfig struct {
	Executable string        `yaml:"executable" mapstructure:"executable"` // LTspice binary, or wine
	Args       []string      `yaml:"args" mapstructure:"args"`             // leading arguments, e.g. the LTspice path under wine
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`       // per simulation step
}

// SchematicConfig names the schematic to work on.
type SchematicConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // .asc file, with or without extension
}

// OutputConfig defines where extracted tables go.
type OutputConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Format string `yaml:"format" mapstructure:"format"` // tsv, xlsx or parquet
}

// ExtractConfig selects the waveform variables and their column order.
type ExtractConfig struct {
	HeaderMode string              `yaml:"header_mode" mapstructure:"header_mode"` // fixed or labeled
	Variables  []waveform.Variable `yaml:"variables" mapstructure:"variables"`
	Order      []int               `yaml:"order" mapstructure:"order"`
}

// HistoryConfig controls the sweep ledger.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"` // empty means .ltspice/history.db
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Simulator: SimulatorConfig{
			Executable: DefaultExecutable(),
			Args:       []string{},
			Timeout:    simulator.DefaultTimeout,
		},
		Output: OutputConfig{
			Dir:    "output",
			Format: string(export.FormatTSV),
		},
		Extract: ExtractConfig{
			HeaderMode: waveform.HeaderFixedOffset.String(),
			Variables:  waveform.DefaultCatalog().Sorted(),
			Order:      []int(waveform.DefaultColumnOrder()),
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// DefaultExecutable returns the usual LTspice install location for the platform.
func DefaultExecutable() string {
	switch runtime.GOOS {
	case "windows":
		return `C:\Program Files\LTC\LTspiceXVII\XVIIx64.exe`
	case "darwin":
		return "/Applications/LTspice.app/Contents/MacOS/LTspice"
	default:
		return "ltspice"
	}
}

// Catalog builds the variable catalog.
func (c *Config) Catalog() (*waveform.Catalog, error) {
	return waveform.NewCatalog(c.Extract.Variables...)
}

// ColumnOrder builds the column order for the catalog. An empty order means identity.
func (c *Config) ColumnOrder() (waveform.ColumnOrder, error) {
	n := len(c.Extract.Variables)
	if len(c.Extract.Order) == 0 {
		return waveform.Identity(n), nil
	}
	return waveform.NewColumnOrder(c.Extract.Order, n)
}

// HeaderMode parses the configured header mode.
func (c *Config) HeaderMode() (waveform.HeaderMode, error) {
	return waveform.ParseHeaderMode(c.Extract.HeaderMode)
}

// OutputFormat parses the configured output format.
func (c *Config) OutputFormat() (export.Format, error) {
	return export.ParseFormat(c.Output.Format)
}

// HistoryPath returns the ledger location, resolved against rootDir.
func (c *Config) HistoryPath(rootDir string) string {
	if c.History.Path == "" {
		return filepath.Join(rootDir, DirName, "history.db")
	}
	if filepath.IsAbs(c.History.Path) {
		return c.History.Path
	}
	return filepath.Join(rootDir, c.History.Path)
}
