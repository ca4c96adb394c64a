package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Shiangjun/LTspice-cli/internal/waveform"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from files and environment variables.
	// Priority: defaults → user config → project config → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	homeDir    string
	configFile string
}

// LoaderOption configures a loader.
type LoaderOption func(*loader)

// WithConfigFile loads the given file instead of <root>/.ltspice/config.yml.
// Unlike the default location, an explicit file must exist.
func WithConfigFile(path string) LoaderOption {
	return func(l *loader) { l.configFile = path }
}

// WithHomeDir overrides the directory searched for the user config.
func WithHomeDir(dir string) LoaderOption {
	return func(l *loader) { l.homeDir = dir }
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string, opts ...LoaderOption) Loader {
	l := &loader{rootDir: rootDir}
	if home, err := os.UserHomeDir(); err == nil {
		l.homeDir = home
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (LTSPICE_*)
// 2. Project config file (.ltspice/config.yml or .ltspice/config.yaml)
// 3. User config file (~/.ltspice/config.yml)
// 4. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix("LTSPICE")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., LTSPICE_OUTPUT_FORMAT)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("simulator.executable")
	v.BindEnv("simulator.timeout")
	v.BindEnv("schematic.path")
	v.BindEnv("output.dir")
	v.BindEnv("output.format")
	v.BindEnv("extract.header_mode")
	v.BindEnv("history.enabled")
	v.BindEnv("history.path")

	setDefaults(v)

	if l.homeDir != "" {
		if err := mergeIfExists(v, filepath.Join(l.homeDir, DirName)); err != nil {
			return nil, err
		}
	}

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := mergeIfExists(v, filepath.Join(l.rootDir, DirName)); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyDefaultOrder(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyDefaultOrder restores the stock column order when the stock catalog is
// in use and no order was configured. Any other catalog keeps an empty order,
// which means identity.
func applyDefaultOrder(cfg *Config) {
	if len(cfg.Extract.Order) > 0 || !isDefaultCatalog(cfg.Extract.Variables) {
		return
	}
	cfg.Extract.Order = []int(waveform.DefaultColumnOrder())
}

func isDefaultCatalog(vars []waveform.Variable) bool {
	stock := waveform.DefaultCatalog().Sorted()
	if len(vars) != len(stock) {
		return false
	}
	for i := range vars {
		if vars[i] != stock[i] {
			return false
		}
	}
	return true
}

// mergeIfExists merges config.yml (or config.yaml) from dir. A missing file
// is not an error.
func mergeIfExists(v *viper.Viper, dir string) error {
	for _, name := range []string{"config.yml", "config.yaml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to stat config file: %w", err)
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}
	return nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("simulator.executable", defaults.Simulator.Executable)
	v.SetDefault("simulator.args", defaults.Simulator.Args)
	v.SetDefault("simulator.timeout", defaults.Simulator.Timeout)

	v.SetDefault("schematic.path", defaults.Schematic.Path)

	v.SetDefault("output.dir", defaults.Output.Dir)
	v.SetDefault("output.format", defaults.Output.Format)

	v.SetDefault("extract.header_mode", defaults.Extract.HeaderMode)
	v.SetDefault("extract.variables", defaults.Extract.Variables)
	// extract.order has no default: the stock order only fits the stock catalog

	v.SetDefault("history.enabled", defaults.History.Enabled)
	v.SetDefault("history.path", defaults.History.Path)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig(opts ...LoaderOption) (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd, opts...).Load()
}
