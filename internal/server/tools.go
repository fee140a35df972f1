package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the image path argument shared by the plate tools.
var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the plate photo (JPEG, PNG, GIF, BMP or WebP)",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Plate Analysis
		{
			Name:        "plate_analyze",
			Description: "Run the full plate pipeline on a photo: detect wells, group them into trials (rows, top to bottom), sample each well's inner color and predict its concentration with the loaded calibration model. A plate with no wells returns zero trials, not an error.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "plate_detect_wells",
			Description: "Detect wells and group them into trials without sampling or prediction. Optionally returns a base64-encoded PNG with every well circle and its inner sampling disk drawn.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"overlay": map[string]interface{}{
						"type":        "boolean",
						"description": "Include an overlay PNG of the detections. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "plate_sample_wells",
			Description: "Detect wells and return the mean channel value of each well's inner disk, per trial. Channel and inner scale may be overridden to compare sampling variants.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"channel": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"red", "saturation"},
						"description": "Channel to average. Default is the server's configured channel",
					},
					"inner_scale": map[string]interface{}{
						"type":        "number",
						"description": "Fraction of the well radius to sample, in (0, 1]. Default is the server's configured scale",
					},
				},
				"required": []string{"path"},
			},
		},

		// Calibration
		{
			Name:        "calibration_info",
			Description: "Describe the loaded calibration model: polynomial degree, coefficients, intercept and equation.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "calibration_predict",
			Description: "Convert channel readings to concentrations with the loaded calibration model, rounded to 3 decimals.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"values": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "number"},
						"description": "Channel readings, e.g. mean red intensities",
					},
				},
				"required": []string{"values"},
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
