package mcp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/Shiangjun/LTspice-cli/internal/config"
	"github.com/Shiangjun/LTspice-cli/internal/schematic"
	"github.com/Shiangjun/LTspice-cli/internal/waveform"
)

// ServerName is reported to MCP clients.
const ServerName = "ltspice-mcp"

// ErrOutsideRoot indicates a path that escapes the working directory
var ErrOutsideRoot = errors.New("path outside project root")

// Workspace is what the tools operate on.
type Workspace struct {
	Root      string
	Config    *config.Config
	Simulator waveform.Simulator // nil disables simulate-on-missing
	Params    *schematic.ParamCache
}

// resolve turns a tool path argument into an absolute path under Root.
func (w *Workspace) resolve(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("path parameter is required")
	}
	root, err := filepath.Abs(w.Root)
	if err != nil {
		return "", err
	}
	abs := p
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(root, p)
	}
	abs = filepath.Clean(abs)

	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, p)
	}
	return abs, nil
}

// Server manages the MCP server lifecycle.
type Server struct {
	mcp *server.MCPServer
}

// NewServer creates an MCP server with all LTspice tools registered.
func NewServer(ws *Workspace, version string) *Server {
	s := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
	)

	AddExtractTool(s, ws)
	AddParamsTool(s, ws)
	AddSetParamTool(s, ws)

	return &Server{mcp: s}
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting MCP server on stdio...")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		log.Printf("Received shutdown signal, stopping gracefully...")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
