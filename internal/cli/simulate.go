package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Shiangjun/LTspice-cli/internal/schematic"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate [schematic]",
	Short: "Run LTspice on a schematic in batch mode",
	Long: `Compile <base>.asc to a netlist and simulate it in batch mode, producing
an ASCII <base>.raw next to the schematic.

Example:
  ltspice simulate sim/half_bridge.asc
  ltspice simulate sim/half_bridge --exe wine --timeout 30m`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	addSimulatorFlags(simulateCmd.Flags())
}

func runSimulate(cmd *cobra.Command, args []string) error {
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

	res, err := newRunner(cfg).Run(cmd.Context(), schematic.BasePath(path))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%.1f kB) in %.1fs\n", SuccessStyle.Render("✓ Simulated"),
		res.RawPath, float64(res.RawSize)/1000, res.Duration.Seconds())
	return nil
}
