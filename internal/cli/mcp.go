package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Shiangjun/LTspice-cli/internal/mcp"
	"github.com/Shiangjun/LTspice-cli/internal/schematic"
)

var mcpNoSimulate bool

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for LTspice tools",
	Long: `Start the Model Context Protocol (MCP) server so coding assistants can
extract waveforms and read or edit schematic parameters in this directory.

The MCP server:
- Provides ltspice_extract, ltspice_params and ltspice_set_param tools
- Only accepts paths inside the current directory
- Communicates via stdio (standard MCP transport)

Example:
  ltspice mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().BoolVar(&mcpNoSimulate, "no-simulate", false, "never run LTspice from tool calls")
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	projectPath, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	// stdout carries the protocol
	fmt.Fprintf(os.Stderr, "LTspice MCP Server\n")
	fmt.Fprintf(os.Stderr, "Project Root: %s\n", projectPath)
	fmt.Fprintf(os.Stderr, "Simulator: %s\n\n", cfg.Simulator.Executable)

	params, err := schematic.NewParamCache(schematic.DefaultCacheCapacity)
	if err != nil {
		return err
	}
	defer params.Close()

	ws := &mcp.Workspace{Root: projectPath, Config: cfg, Params: params}
	if !mcpNoSimulate {
		runner := newRunner(cfg)
		runner.Stdout, runner.Stderr = os.Stderr, os.Stderr
		ws.Simulator = runner
	}

	if err := mcp.NewServer(ws, Version).Serve(cmd.Context()); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
