package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the schema shared by every tool's "path" argument.
func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the page photograph (JPEG, PNG, BMP or TIFF)",
	}
}

func maxDimensionProperty(def int) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Shrink the returned image to fit within this many pixels on its longer side (0 = full size)",
		"default":     def,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "page_load",
			Description: "Load a page photograph and return its dimensions, format and file size. The file is read from disk again on every call and the decoded image is cached for subsequent page_* calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Detection
		{
			Name:        "page_edge_map",
			Description: "Compute the binary edge map used for page detection and return it as a base64 PNG. Use this to see why a page outline was or was not found.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"threshold_low": map[string]interface{}{
						"type":        "number",
						"description": "Weak-edge gradient threshold (default from configuration, normally 75)",
					},
					"threshold_high": map[string]interface{}{
						"type":        "number",
						"description": "Strong-edge gradient threshold (default from configuration, normally 200)",
					},
					"max_dimension": maxDimensionProperty(defaultPreviewDimension),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "page_detect_boundary",
			Description: "Find the page outline: the largest closed contour in the edge map, its simplified polygon and, when the polygon has four vertices, the ordered corners (top-left, top-right, bottom-right, bottom-left).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"overlay": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return the image with the detected outline drawn on it (default false)",
						"default":     false,
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Overlay outline color as hex (default #00FF00)",
						"default":     "#00FF00",
					},
					"thickness": map[string]interface{}{
						"type":        "integer",
						"description": "Overlay outline thickness in pixels (default 3)",
						"default":     3,
					},
					"include_contour": map[string]interface{}{
						"type":        "boolean",
						"description": "Include every point of the raw contour in the result (default false)",
						"default":     false,
					},
					"max_dimension": maxDimensionProperty(defaultPreviewDimension),
				},
				"required": []string{"path"},
			},
		},

		// Processing
		{
			Name:        "page_prepare",
			Description: "Run the full preparation pipeline: detect the page, rectify its perspective (or pass the photograph through unchanged when no four-cornered outline is found), enhance contrast and sharpen. Writes a JPEG to output_path, or returns a base64 preview when output_path is omitted.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Where to write the prepared JPEG. Parent directories are created.",
					},
					"variant": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"legibility", "visual"},
						"description": "Sharpening variant: 'legibility' for text recognition, 'visual' for people (default legibility)",
						"default":     "legibility",
					},
					"quality": map[string]interface{}{
						"type":        "integer",
						"description": "JPEG quality 1-100 for output_path (default 95)",
						"default":     95,
					},
					"max_dimension": maxDimensionProperty(defaultPreviewDimension),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "page_ocr",
			Description: "Prepare the page for legibility and transcribe it with the configured OCR backend (Tesseract or Google Cloud Vision).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
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
