package mcp

import "github.com/1broseidon/hdrlaunch/internal/probe"

// CurrentDisplayModeInput is the input for the current_display_mode tool.
type CurrentDisplayModeInput struct{}

// CurrentDisplayModeOutput is the output for the current_display_mode tool.
type CurrentDisplayModeOutput struct {
	Backend string      `json:"backend"`
	Current probe.Mode  `json:"current"`
	Saved   *probe.Mode `json:"saved,omitempty"`
}

// ListDisplayModesInput is the input for the list_display_modes tool.
type ListDisplayModesInput struct {
	Width  uint32 `json:"width,omitempty" jsonschema:"Only list modes of this width (requires height)"`
	Height uint32 `json:"height,omitempty" jsonschema:"Only list modes of this height (requires width)"`
}

// ListDisplayModesOutput is the output for the list_display_modes tool.
type ListDisplayModesOutput struct {
	Modes []probe.Mode `json:"modes"`
	// MaxRefreshHz is only set when the list is restricted to one size.
	MaxRefreshHz uint32 `json:"max_refresh_hz,omitempty"`
}

// ListHDRDisplaysInput is the input for the list_hdr_displays tool.
type ListHDRDisplaysInput struct{}

// ExplainConfigInput is the input for the explain_config tool.
type ExplainConfigInput struct {
	Path string `json:"path" jsonschema:"required,Dotted key path such as options.toggle_hdr or logging.level"`
}

// ExplainConfigOutput is the output for the explain_config tool.
type ExplainConfigOutput struct {
	Path   string `json:"path"`
	Value  any    `json:"value"`
	Source string `json:"source"`
	File   string `json:"file,omitempty"`
}
