package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func regionProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{"type": "integer", "description": "Left edge X coordinate (inclusive)"},
			"y1": map[string]interface{}{"type": "integer", "description": "Top edge Y coordinate (inclusive)"},
			"x2": map[string]interface{}{"type": "integer", "description": "Right edge X coordinate (exclusive)"},
			"y2": map[string]interface{}{"type": "integer", "description": "Bottom edge Y coordinate (exclusive)"},
		},
		"required":    []string{"x1", "y1", "x2", "y2"},
		"description": description,
	}
}

// withProperties returns a copy of props with extra merged in.
func withProperties(props map[string]interface{}, extra ...map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(props))
	for k, v := range props {
		out[k] = v
	}
	for _, e := range extra {
		for k, v := range e {
			out[k] = v
		}
	}
	return out
}

// tileProperties describe tileArgs.
var tileProperties = map[string]interface{}{
	"tile_width": map[string]interface{}{
		"type":        "integer",
		"description": "Tile width in pixels, at least 1 (default 4). A tile wider than the region covers it whole.",
		"default":     4,
	},
	"tile_height": map[string]interface{}{
		"type":        "integer",
		"description": "Tile height in pixels, at least 1 (default 4)",
		"default":     4,
	},
	"remainder": map[string]interface{}{
		"type":        "string",
		"enum":        []string{"clip", "drop"},
		"description": "Partial tiles at the right and bottom edges: 'clip' pixelates them as smaller tiles, 'drop' leaves that strip unchanged (default clip)",
		"default":     "clip",
	},
	"workers": map[string]interface{}{
		"type":        "integer",
		"description": "Tiles processed concurrently, capped at the number of CPUs (default: number of CPUs)",
	},
}

// outputProperties describe outputArgs.
var outputProperties = map[string]interface{}{
	"output": map[string]interface{}{
		"type":        "string",
		"description": "Absolute path for the result. If omitted, the result is returned as a base64-encoded PNG preview and nothing is written.",
	},
	"format": map[string]interface{}{
		"type":        "string",
		"enum":        []string{"png", "jpeg", "gif", "bmp", "tiff", "webp", "pxb"},
		"description": "Output format. Defaults to the output file's extension.",
	},
	"preview_scale": map[string]interface{}{
		"type":        "number",
		"description": "Scale of the returned preview when no output is given (default 1.0)",
		"default":     1.0,
	},
}

// textProperties describe textArgs.
var textProperties = map[string]interface{}{
	"method": map[string]interface{}{
		"type":        "string",
		"enum":        []string{"ocr", "heuristic"},
		"description": "'ocr' uses Tesseract and returns the recognised text; 'heuristic' finds text-like texture without OCR (default ocr)",
		"default":     "ocr",
	},
	"granularity": map[string]interface{}{
		"type":        "string",
		"enum":        []string{"word", "block"},
		"description": "OCR box size: single words or whole text blocks (default word)",
		"default":     "word",
	},
	"pattern": map[string]interface{}{
		"type":        "string",
		"description": "Regular expression; only text matching it is kept (OCR only). E.g. '[\\w.+-]+@[\\w-]+\\.[\\w.]+' for e-mail addresses.",
	},
	"language": map[string]interface{}{
		"type":        "string",
		"description": "Tesseract language code (default 'eng')",
		"default":     "eng",
	},
	"min_confidence": map[string]interface{}{
		"type":        "number",
		"description": "Minimum confidence 0.0-1.0 (default 0)",
	},
	"region": regionProperty("Optional region to search. If omitted, searches the entire image."),
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format, channel count and file size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_sample_color",
			Description: "Get the exact color value at a specific pixel coordinate.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based, from top)",
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "image_preview",
			Description: "Return a region of an image as base64-encoded PNG, scaled with nearest-neighbour sampling so pixel blocks stay sharp. Use this to inspect a result.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"region": regionProperty("Optional region to return. If omitted, returns the entire image."),
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 4.0 to enlarge). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path"},
			},
		},

		// Pixelation
		{
			Name:        "image_pixelate",
			Description: "Pixelate an image or a region of it: every tile is filled with its most frequent exact color (ties go to the color seen first, scanning rows top to bottom). The source file is never modified.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(map[string]interface{}{
					"path":   pathProperty(),
					"region": regionProperty("Optional region to pixelate. Must lie inside the image. If omitted, pixelates the entire image."),
				}, tileProperties, outputProperties),
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_tile_modes",
			Description: "Report the most frequent color of every tile without changing the image, plus a palette of those colors ordered by how many tiles use them.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(map[string]interface{}{
					"path":   pathProperty(),
					"region": regionProperty("Optional region to analyze. If omitted, analyzes the entire image."),
				}, tileProperties),
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_tile_grid",
			Description: "Draw the tile boundaries that image_pixelate would use over the image and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(map[string]interface{}{
					"path":   pathProperty(),
					"region": regionProperty("Optional region to tile. If omitted, tiles the entire image."),
					"show_coordinates": map[string]interface{}{
						"type":        "boolean",
						"description": "Label tile corners with their coordinates",
						"default":     false,
					},
					"grid_color": map[string]interface{}{
						"type":        "string",
						"description": "Grid line color as hex (e.g., '#FF0000' or '#FF000080' with alpha). Default semi-transparent red.",
						"default":     "#FF000080",
					},
				}, tileProperties),
				"required": []string{"path"},
			},
		},

		// Text
		{
			Name:        "image_find_text",
			Description: "Find text in an image and return its bounding boxes, so it can be checked before pixelating.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(map[string]interface{}{
					"path": pathProperty(),
				}, textProperties),
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_pixelate_text",
			Description: "Find text in an image and pixelate it, e.g. to hide names, e-mail addresses or numbers in a screenshot. The source file is never modified.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(map[string]interface{}{
					"path": pathProperty(),
					"padding": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels added around each text box before pixelating (default 0)",
					},
				}, textProperties, tileProperties, outputProperties),
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
