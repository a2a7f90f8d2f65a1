package mcp

import (
	"context"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/hdrlaunch/internal/config"
	"github.com/1broseidon/hdrlaunch/internal/probe"
)

func (s *Server) handleCurrentDisplayMode(_ context.Context, _ *mcpsdk.CallToolRequest, _ CurrentDisplayModeInput) (*mcpsdk.CallToolResult, CurrentDisplayModeOutput, error) {
	current, err := probe.Current(s.backend.Display)
	if err != nil {
		return nil, CurrentDisplayModeOutput{}, fmt.Errorf("failed to read current display mode: %w", err)
	}
	out := CurrentDisplayModeOutput{Backend: s.backend.Name, Current: current}
	if saved, err := probe.Saved(s.backend.Display); err == nil {
		out.Saved = &saved
	} else {
		s.logger.Debug("saved display mode unavailable", "error", err)
	}
	return nil, out, nil
}

func (s *Server) handleListDisplayModes(_ context.Context, _ *mcpsdk.CallToolRequest, args ListDisplayModesInput) (*mcpsdk.CallToolResult, ListDisplayModesOutput, error) {
	if (args.Width == 0) != (args.Height == 0) {
		return nil, ListDisplayModesOutput{}, errors.New("width and height must be given together")
	}
	modes, err := probe.Modes(s.backend.Display, args.Width, args.Height)
	if err != nil {
		return nil, ListDisplayModesOutput{}, fmt.Errorf("failed to enumerate display modes: %w", err)
	}
	out := ListDisplayModesOutput{Modes: modes}
	if args.Width != 0 {
		out.MaxRefreshHz = probe.MaxRefreshRate(s.backend.Display, args.Width, args.Height, s.logger)
	}
	return nil, out, nil
}

func (s *Server) handleListHDRDisplays(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListHDRDisplaysInput) (*mcpsdk.CallToolResult, probe.HDRReport, error) {
	return nil, probe.HDRDisplays(s.backend.HDR, s.logger), nil
}

func (s *Server) handleExplainConfig(_ context.Context, _ *mcpsdk.CallToolRequest, args ExplainConfigInput) (*mcpsdk.CallToolResult, ExplainConfigOutput, error) {
	value, src, err := config.Explain(s.config, args.Path)
	if err != nil {
		return nil, ExplainConfigOutput{}, err
	}
	return nil, ExplainConfigOutput{
		Path:   args.Path,
		Value:  value,
		Source: src.String(),
		File:   s.config.File,
	}, nil
}
