package mcp

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Shiangjun/LTspice-cli/internal/export"
	"github.com/Shiangjun/LTspice-cli/internal/schematic"
	"github.com/Shiangjun/LTspice-cli/internal/waveform"
)

const (
	defaultPreviewRows = 20
	maxPreviewRows     = 1000
)

// ExtractRequest holds ltspice_extract arguments.
type ExtractRequest struct {
	Path     string `json:"path"`
	Output   string `json:"output"`
	Format   string `json:"format"`
	MaxRows  int    `json:"max_rows"`
	Simulate bool   `json:"simulate"`
}

// ExtractResponse is returned by ltspice_extract.
type ExtractResponse struct {
	Annotation string     `json:"annotation"`
	Labels     []string   `json:"labels"`
	Rows       [][]string `json:"rows"`
	TotalRows  int        `json:"total_rows"`
	Dropped    int        `json:"dropped,omitempty"`
	Output     string     `json:"output,omitempty"`
	Bytes      int64      `json:"bytes,omitempty"`
}

// ParamsRequest holds ltspice_params arguments.
type ParamsRequest struct {
	Path  string `json:"path"`
	Match string `json:"match"`
}

// ParamsResponse is returned by ltspice_params.
type ParamsResponse struct {
	Params     []schematic.Param `json:"params"`
	Annotation string            `json:"annotation"`
}

// SetParamRequest holds ltspice_set_param arguments.
type SetParamRequest struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	Value     string `json:"value"`
	Overwrite bool   `json:"overwrite"`
}

// SetParamResponse is returned by ltspice_set_param.
type SetParamResponse struct {
	Path     string `json:"path"`
	Replaced int    `json:"replaced"`
}

// AddExtractTool registers the ltspice_extract tool.
func AddExtractTool(s *server.MCPServer, ws *Workspace) {
	tool := mcp.NewTool(
		"ltspice_extract",
		mcp.WithDescription("Extract the configured waveform variables from an LTspice ASCII .raw file as a table. Optionally writes the table to a file."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Schematic or raw file, with or without extension (e.g., 'sim/half_bridge.asc')")),
		mcp.WithString("output",
			mcp.Description("Optional output file to write the full table to")),
		mcp.WithString("format",
			mcp.Description("Output format when writing: tsv (default), xlsx, parquet")),
		mcp.WithNumber("max_rows",
			mcp.Description("Rows to include in the response (0-1000, default: 20)")),
		mcp.WithBoolean("simulate",
			mcp.Description("Run the simulation if the .raw file is missing (default: false)")),
	)
	s.AddTool(tool, createExtractHandler(ws))
}

func createExtractHandler(ws *Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req := ExtractRequest{MaxRows: defaultPreviewRows}
		if err := bindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		path, err := ws.resolve(req.Path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		base := strings.TrimSuffix(schematic.BasePath(path), waveform.RawExt)

		cat, err := ws.Config.Catalog()
		if err != nil {
			return nil, err
		}
		order, err := ws.Config.ColumnOrder()
		if err != nil {
			return nil, err
		}
		mode, err := ws.Config.HeaderMode()
		if err != nil {
			return nil, err
		}

		annotation, err := ws.annotation(base + schematic.Ext)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var sim waveform.Simulator
		if req.Simulate {
			sim = ws.Simulator
		}
		table, err := waveform.ExtractFile(ctx, base, sim, cat, order, annotation, waveform.WithHeaderMode(mode))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		resp := ExtractResponse{
			Annotation: strings.TrimSuffix(table.Annotation, "\n"),
			Labels:     table.Labels,
			TotalRows:  len(table.Rows),
			Dropped:    table.Dropped,
		}
		n := clamp(req.MaxRows, 0, maxPreviewRows)
		if n > len(table.Rows) {
			n = len(table.Rows)
		}
		resp.Rows = table.Rows[:n]

		if req.Output != "" {
			out, err := ws.resolve(req.Output)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			format, err := export.ParseFormat(req.Format)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			sink, err := export.New(format)
			if err != nil {
				return nil, err
			}
			bytes, err := sink.Write(table, out)
			if err != nil {
				return nil, err
			}
			resp.Output = out
			resp.Bytes = bytes
		}

		return marshalToolResponse(resp)
	}
}

// annotation builds the table annotation from the schematic's parameters.
// A missing schematic yields an annotation with no parameters.
func (w *Workspace) annotation(ascPath string) (string, error) {
	var tokens []string
	var err error
	if w.Params != nil {
		tokens, err = w.Params.Get(ascPath)
	} else {
		tokens, err = schematic.GetParams(ascPath)
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	return schematic.Annotation(tokens), nil
}

// AddParamsTool registers the ltspice_params tool.
func AddParamsTool(s *server.MCPServer, ws *Workspace) {
	tool := mcp.NewTool(
		"ltspice_params",
		mcp.WithDescription("List the .param assignments of an LTspice schematic."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Schematic file (e.g., 'sim/half_bridge.asc')")),
		mcp.WithString("match",
			mcp.Description("Optional glob on parameter names (e.g., 'R*')")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(tool, createParamsHandler(ws))
}

func createParamsHandler(ws *Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req ParamsRequest
		if err := bindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		path, err := ws.resolve(req.Path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		path = schematic.BasePath(path) + schematic.Ext

		tokens, err := schematic.GetParams(path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if req.Match != "" {
			if tokens, err = schematic.FilterParams(tokens, req.Match); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
		}

		return marshalToolResponse(ParamsResponse{
			Params:     schematic.ParseParams(tokens),
			Annotation: strings.TrimSuffix(schematic.Annotation(tokens), "\n"),
		})
	}
}

// AddSetParamTool registers the ltspice_set_param tool.
func AddSetParamTool(s *server.MCPServer, ws *Workspace) {
	tool := mcp.NewTool(
		"ltspice_set_param",
		mcp.WithDescription("Set a .param value in an LTspice schematic. Writes <name>_new.asc unless overwrite is true."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Schematic file (e.g., 'sim/half_bridge.asc')")),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Parameter name")),
		mcp.WithString("value",
			mcp.Required(),
			mcp.Description("New value, in LTspice notation (e.g., '4.7k')")),
		mcp.WithBoolean("overwrite",
			mcp.Description("Edit the schematic in place (default: false)")),
		mcp.WithDestructiveHintAnnotation(true),
	)
	s.AddTool(tool, createSetParamHandler(ws))
}

func createSetParamHandler(ws *Workspace) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req SetParamRequest
		if err := bindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}
		if req.Name == "" {
			return mcp.NewToolResultError("name parameter is required"), nil
		}

		path, err := ws.resolve(req.Path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		path = schematic.BasePath(path) + schematic.Ext
		if _, err := os.Stat(path); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		edit, err := schematic.SetParam(path, req.Name, req.Value, req.Overwrite)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return marshalToolResponse(SetParamResponse{Path: edit.Path, Replaced: edit.Replaced})
	}
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
