// Package mcp exposes read-only display diagnostics as an MCP server over
// stdio.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/hdrlaunch/internal/config"
	"github.com/1broseidon/hdrlaunch/internal/platform"
)

const ServerName = "hdrlaunch"

// Server answers display diagnostics queries. It never changes the display
// state.
type Server struct {
	mcpServer *mcpsdk.Server
	backend   *platform.Backend
	config    *config.LoadResult
	logger    *slog.Logger
}

// NewServer creates a server over backend. cfg may be nil, in which case
// explain_config reports that no configuration was loaded.
func NewServer(backend *platform.Backend, cfg *config.LoadResult, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		backend: backend,
		config:  cfg,
		logger:  logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: version,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run serves on the stdio transport, blocking until the client disconnects
// or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp server started", "backend", s.backend.Name)
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "current_display_mode",
		Description: "Report the active display mode of the primary monitor and the mode the OS remembers across sessions.",
	}, s.handleCurrentDisplayMode)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_display_modes",
		Description: "List the display modes the primary monitor supports, largest first. Pass width and height to restrict the list to one size and get the refresh rate refresh_rate_use_max would pick.",
	}, s.handleListDisplayModes)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_hdr_displays",
		Description: "List the connected displays HDR would be toggled on (ST.2084 capable, first GPU only).",
	}, s.handleListHDRDisplays)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "explain_config",
		Description: "Show the value of a configuration key (e.g. options.res_x) and where it was set: a file line, a flag, or the default.",
	}, s.handleExplainConfig)
}
