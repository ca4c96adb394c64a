package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shiangjun/LTspice-cli/internal/config"
	"github.com/Shiangjun/LTspice-cli/internal/schematic"
	"github.com/Shiangjun/LTspice-cli/internal/waveform"
)

// Test Plan for MCP tools:
// - ltspice_extract returns labels, a row preview and total row count
// - ltspice_extract annotates with the schematic's parameters when present
// - ltspice_extract writes the full table when output is given
// - ltspice_extract reports a missing raw file as a tool error
// - ltspice_extract coerces string-typed numbers from clients
// - ltspice_params lists parameters, filtered by glob
// - ltspice_set_param writes <name>_new.asc and reports replacements
// - Paths outside the workspace root are rejected

const toolSchematic = "Version 4\nTEXT -56 344 Left 2 !.param R=1k C=10n\n"

func toolRaw(points int) string {
	lines := []string{
		"Title: * sim.asc",
		"Date: Thu Jan  1 00:00:00 2026",
		"Plotname: Transient Analysis",
		"Flags: real forward",
		"No. Variables: 2",
		"No. Points: " + string(rune('0'+points)),
		"Offset:   0.0000000000000000e+000",
		"Command: LTspice",
		"Variables:",
		"\t0\ttime\ttime",
		"\t1\tV(out)\tvoltage",
		"Values:",
	}
	for p := 0; p < points; p++ {
		lines = append(lines, string(rune('0'+p))+"\t\t"+string(rune('0'+p))+".0e-006", "\t"+string(rune('0'+p))+".5e+000")
	}
	return strings.Join(lines, "\n") + "\n"
}

func testWorkspace(t *testing.T) *Workspace {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sim"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sim", "circuit.asc"), []byte(toolSchematic), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sim", "circuit.raw"), []byte(toolRaw(3)), 0644))

	cfg := config.Default()
	cfg.Extract.Variables = []waveform.Variable{{Name: "time", Index: 0}, {Name: "V(out)", Index: 1}}
	cfg.Extract.Order = []int{1, 0}
	return &Workspace{Root: root, Config: cfg}
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) (*mcp.CallToolResult, string) {
	t.Helper()
	result, err := handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	return result, text.Text
}

func TestExtractTool(t *testing.T) {
	t.Parallel()

	ws := testWorkspace(t)
	result, text := call(t, createExtractHandler(ws), map[string]interface{}{
		"path":     "sim/circuit.asc",
		"max_rows": float64(2),
	})
	require.False(t, result.IsError, text)

	var resp ExtractResponse
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	assert.Equal(t, "SPICE simulation result. Parameters: R=1k, C=10n", resp.Annotation)
	assert.Equal(t, []string{"V(out)", "time"}, resp.Labels)
	assert.Equal(t, 3, resp.TotalRows)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, []string{"1.5e+000", "1.0e-006"}, resp.Rows[1])
}

func TestExtractTool_WritesOutput(t *testing.T) {
	t.Parallel()

	ws := testWorkspace(t)
	result, text := call(t, createExtractHandler(ws), map[string]interface{}{
		"path":     "sim/circuit",
		"output":   "out/circuit.txt",
		"max_rows": "0",
	})
	require.False(t, result.IsError, text)

	var resp ExtractResponse
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	assert.Empty(t, resp.Rows)
	assert.Equal(t, filepath.Join(ws.Root, "out", "circuit.txt"), resp.Output)

	data, err := os.ReadFile(resp.Output)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), resp.Bytes)
	assert.True(t, strings.HasPrefix(string(data), "SPICE simulation result. Parameters: R=1k, C=10n\nV(out)\ttime\n"))
}

func TestExtractTool_Errors(t *testing.T) {
	t.Parallel()

	ws := testWorkspace(t)
	handler := createExtractHandler(ws)

	result, text := call(t, handler, map[string]interface{}{"path": "sim/missing"})
	assert.True(t, result.IsError)
	assert.Contains(t, text, "missing.raw")

	result, text = call(t, handler, map[string]interface{}{"path": "../elsewhere/sim"})
	assert.True(t, result.IsError)
	assert.Contains(t, text, "outside project root")

	result, _ = call(t, handler, map[string]interface{}{})
	assert.True(t, result.IsError)
}

func TestParamsTool(t *testing.T) {
	t.Parallel()

	ws := testWorkspace(t)
	result, text := call(t, createParamsHandler(ws), map[string]interface{}{
		"path":  "sim/circuit.asc",
		"match": "C*",
	})
	require.False(t, result.IsError, text)

	var resp ParamsResponse
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	assert.Equal(t, []schematic.Param{{Name: "C", Value: "10n"}}, resp.Params)
}

func TestSetParamTool(t *testing.T) {
	t.Parallel()

	ws := testWorkspace(t)
	result, text := call(t, createSetParamHandler(ws), map[string]interface{}{
		"path":  "sim/circuit.asc",
		"name":  "R",
		"value": "4.7k",
	})
	require.False(t, result.IsError, text)

	var resp SetParamResponse
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	assert.Equal(t, filepath.Join(ws.Root, "sim", "circuit_new.asc"), resp.Path)
	assert.Equal(t, 1, resp.Replaced)

	tokens, err := schematic.GetParams(resp.Path)
	require.NoError(t, err)
	assert.Equal(t, []string{"R=4.7k", "C=10n"}, tokens)

	result, _ = call(t, createSetParamHandler(ws), map[string]interface{}{"path": "sim/circuit.asc", "value": "1"})
	assert.True(t, result.IsError)
}

func TestWorkspace_Resolve(t *testing.T) {
	t.Parallel()

	ws := &Workspace{Root: t.TempDir()}

	got, err := ws.resolve("a/b.asc")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ws.Root, "a", "b.asc"), got)

	_, err = ws.resolve("a/../../b.asc")
	assert.ErrorIs(t, err, ErrOutsideRoot)

	_, err = ws.resolve("/etc/passwd")
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestNewServer(t *testing.T) {
	t.Parallel()

	s := NewServer(testWorkspace(t), "test")
	require.NotNil(t, s)
	assert.NotNil(t, s.mcp)
}
