package cli

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Shiangjun/LTspice-cli/internal/config"
	"github.com/Shiangjun/LTspice-cli/internal/schematic"
)

var (
	cfgFile string
	verbose bool
	quiet   bool
)

// ErrNoSchematic indicates that neither an argument nor the config names a schematic
var ErrNoSchematic = errors.New("no schematic given (pass a path or set schematic.path)")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ltspice",
	Short: "Drive LTspice simulations and extract waveform data",
	Long: `ltspice runs LTspice in batch mode, edits .param values in schematics,
sweeps a parameter over a list of values and extracts selected waveform
variables from ASCII .raw files into tab-separated, Excel or Parquet tables.

Configuration is read from .ltspice/config.yml (and ~/.ltspice/config.yml),
with LTSPICE_* environment variables taking precedence.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd.ErrOrStderr())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .ltspice/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress and log output")
}

// configureLogging routes the standard logger. Library packages log through
// it, so quiet silences them too.
func configureLogging(w io.Writer) {
	log.SetOutput(w)
	switch {
	case quiet:
		log.SetOutput(io.Discard)
	case verbose:
		log.SetFlags(log.Ltime | log.Lmicroseconds)
	default:
		log.SetFlags(0)
	}
}

// loadConfig loads configuration from the working directory, or from --config.
func loadConfig() (*config.Config, error) {
	var opts []config.LoaderOption
	if cfgFile != "" {
		opts = append(opts, config.WithConfigFile(cfgFile))
	}
	cfg, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if verbose {
		log.Printf("Simulator: %s %s", cfg.Simulator.Executable, strings.Join(cfg.Simulator.Args, " "))
	}
	return cfg, nil
}

// schematicPath picks the schematic from args or config and normalizes it to
// carry the .asc extension.
func schematicPath(args []string, cfg *config.Config) (string, error) {
	path := cfg.Schematic.Path
	if len(args) > 0 && args[0] != "" {
		path = args[0]
	}
	if strings.TrimSpace(path) == "" {
		return "", ErrNoSchematic
	}
	return schematic.BasePath(path) + schematic.Ext, nil
}
