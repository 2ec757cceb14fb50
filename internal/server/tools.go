package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// noArgs is the schema of tools without parameters.
func noArgs() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func numberProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "number", "description": description}
}

func integerProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": description}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Session lifecycle
		{
			Name:        "editor_load",
			Description: "Load a PNG or JPEG file as the image being edited. Fails if an image is already loaded; call editor_reset first.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "editor_status",
			Description: "Report the session state, image dimensions, pending adjustments, crop region and the last background removal error.",
			InputSchema: noArgs(),
		},
		{
			Name:        "editor_reset",
			Description: "Discard the image and all adjustments. Cancels a background removal in flight.",
			InputSchema: noArgs(),
		},

		// Crop tool
		{
			Name:        "editor_crop_start",
			Description: "Activate the crop tool. The initial region covers the whole image as currently displayed (pending rotation applied).",
			InputSchema: noArgs(),
		},
		{
			Name:        "editor_crop_update",
			Description: "Set the crop region. Coordinates are full-resolution pixels of the displayed orientation, unless display_width/display_height are given (coordinates on a rendered preview of that size) or normalized is true (0..1 fractions). The region is clamped to the image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x":              numberProp("Left edge"),
					"y":              numberProp("Top edge"),
					"width":          numberProp("Region width"),
					"height":         numberProp("Region height"),
					"display_width":  numberProp("Width of the preview the region was selected on"),
					"display_height": numberProp("Height of the preview the region was selected on"),
					"normalized": map[string]interface{}{
						"type":        "boolean",
						"description": "Interpret coordinates as 0..1 fractions of the image size",
					},
				},
				"required": []string{"x", "y", "width", "height"},
			},
		},
		{
			Name:        "editor_crop_apply",
			Description: "Commit the crop. Rotation, brightness and contrast are baked into the cropped image and reset to neutral.",
			InputSchema: noArgs(),
		},
		{
			Name:        "editor_crop_cancel",
			Description: "Leave the crop tool without changing the image.",
			InputSchema: noArgs(),
		},

		// Adjustments
		{
			Name:        "editor_adjust",
			Description: "Set brightness, contrast and/or rotation. Brightness and contrast range 0-200 (100 is neutral) and are clamped; rotation is clockwise degrees, a multiple of 90 wrapped into 0-270; other angles are rejected.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"brightness": numberProp("Brightness level 0-200"),
					"contrast":   numberProp("Contrast level 0-200"),
					"rotation":   integerProp("Clockwise rotation in degrees"),
				},
			},
		},
		{
			Name:        "editor_rotate",
			Description: "Rotate the image a quarter turn clockwise.",
			InputSchema: noArgs(),
		},

		// Background removal
		{
			Name:        "editor_remove_background",
			Description: "Send the image to the background removal service. Returns immediately unless wait is true; poll editor_status for the outcome.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"wait": map[string]interface{}{
						"type":        "boolean",
						"description": "Block until the removal finishes",
						"default":     false,
					},
					"timeout_seconds": numberProp("Maximum time to wait when wait is true"),
				},
			},
		},

		// Rendering
		{
			Name:        "editor_preview",
			Description: "Render the image with pending adjustments, fitted inside max_width x max_height, as base64 PNG. Use the returned width/height as display_width/display_height for editor_crop_update.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"max_width":  integerProp("Maximum preview width. Default 1024"),
					"max_height": integerProp("Maximum preview height. Default 1024"),
					"crop_overlay": map[string]interface{}{
						"type":        "boolean",
						"description": "While cropping, shade the area outside the crop and draw thirds guides",
						"default":     true,
					},
					"shade_color": map[string]interface{}{
						"type":        "string",
						"description": "Overlay shade as #RRGGBB or #RRGGBBAA",
						"default":     "#00000080",
					},
					"guide_color": map[string]interface{}{
						"type":        "string",
						"description": "Overlay guide color as #RRGGBB or #RRGGBBAA",
						"default":     "#FFFFFFC8",
					},
				},
			},
		},
		{
			Name:        "editor_sample_color",
			Description: "Get the rendered color at one pixel (x, y) or at several labeled points.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": integerProp("X coordinate (0-based, from left)"),
					"y": integerProp("Y coordinate (0-based, from top)"),
					"points": map[string]interface{}{
						"type":        "array",
						"description": "Points to sample; overrides x/y",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x":     map[string]interface{}{"type": "integer"},
								"y":     map[string]interface{}{"type": "integer"},
								"label": map[string]interface{}{"type": "string"},
							},
							"required": []string{"x", "y"},
						},
					},
				},
			},
		},
		{
			Name:        "editor_export",
			Description: "Flatten all adjustments and encode the image. Writes to path (file or directory) when given, otherwise returns base64 data. The session is not modified.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"png", "jpeg", "jpg"},
						"description": "Output format. Default png",
						"default":     "png",
					},
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Output file or directory",
					},
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
