package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/wellplate/internal/detection"
	"github.com/ironsheep/wellplate/internal/features"
	"github.com/ironsheep/wellplate/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "plate_analyze").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Plate Analysis
	case "plate_analyze":
		return s.handlePlateAnalyze(args)
	case "plate_detect_wells":
		return s.handlePlateDetectWells(args)
	case "plate_sample_wells":
		return s.handlePlateSampleWells(args)

	// Calibration
	case "calibration_info":
		return s.handleCalibrationInfo(args)
	case "calibration_predict":
		return s.handleCalibrationPredict(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Plate Analysis Handlers ===

type plateArgs struct {
	Path string `json:"path"`
}

func (a plateArgs) validate() error {
	if a.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

func (s *Server) handlePlateAnalyze(args json.RawMessage) (interface{}, error) {
	var a plateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	data, err := s.cache.LoadBytes(a.Path)
	if err != nil {
		return nil, err
	}
	// Later detect/sample calls must see the same file contents.
	s.cache.Evict(a.Path)
	return s.analyzer.Analyze(context.Background(), data)
}

type plateDetectWellsArgs struct {
	plateArgs
	Overlay bool `json:"overlay"`
}

// WellsResult is the plate_detect_wells output.
type WellsResult struct {
	Width          int             `json:"width"`
	Height         int             `json:"height"`
	Scale          float64         `json:"scale"`
	WellsDetected  int             `json:"wells_detected"`
	TrialsDetected int             `json:"trials_detected"`
	FallbackUsed   bool            `json:"fallback_used"`
	FallbackAdded  int             `json:"fallback_added"`
	Rows           []detection.Row `json:"rows"`
	OverlayPNG     string          `json:"overlay_png_base64,omitempty"`
}

func (s *Server) handlePlateDetectWells(args json.RawMessage) (interface{}, error) {
	var a plateDetectWellsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	det, rows := s.analyzer.Locate(img)
	res := &WellsResult{
		Width:          img.Bounds().Dx(),
		Height:         img.Bounds().Dy(),
		Scale:          det.Scale,
		WellsDetected:  detection.CountWells(rows),
		TrialsDetected: len(rows),
		FallbackUsed:   det.FallbackRan,
		FallbackAdded:  det.FallbackAdded,
		Rows:           rows,
	}

	if a.Overlay {
		png, err := imaging.EncodePNG(s.analyzer.Overlay(img, rows))
		if err != nil {
			return nil, err
		}
		res.OverlayPNG = base64.StdEncoding.EncodeToString(png)
	}
	return res, nil
}

type plateSampleWellsArgs struct {
	plateArgs
	Channel    string  `json:"channel"`
	InnerScale float64 `json:"inner_scale"`
}

// SamplesResult is the plate_sample_wells output.
type SamplesResult struct {
	FeatureType string                 `json:"feature_type"`
	InnerScale  float64                `json:"inner_scale"`
	Features    []features.WellFeature `json:"features"`
}

func (s *Server) handlePlateSampleWells(args json.RawMessage) (interface{}, error) {
	var a plateSampleWellsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}

	base := s.analyzer.Sampler()
	channel := base.Channel()
	if a.Channel != "" {
		ch, err := features.ParseChannel(a.Channel)
		if err != nil {
			return nil, err
		}
		channel = ch
	}
	scale := base.InnerScale()
	if a.InnerScale != 0 {
		if a.InnerScale < 0 || a.InnerScale > 1 {
			return nil, fmt.Errorf("inner_scale must be in (0, 1], got %g", a.InnerScale)
		}
		scale = a.InnerScale
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	_, rows := s.analyzer.Locate(img)

	sampler := features.NewSampler(channel, scale)
	return &SamplesResult{
		FeatureType: channel.Label(),
		InnerScale:  scale,
		Features:    sampler.SampleRows(imaging.Normalize(img), rows),
	}, nil
}

// === Calibration Handlers ===

// CalibrationInfo is the calibration_info output.
type CalibrationInfo struct {
	Degree       int       `json:"degree"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	Model        string    `json:"model"`
	Equation     string    `json:"equation"`
	FeatureType  string    `json:"feature_type"`
	Feature      string    `json:"feature,omitempty"`
}

func (s *Server) handleCalibrationInfo(_ json.RawMessage) (interface{}, error) {
	m := s.analyzer.Model()
	return &CalibrationInfo{
		Degree:       m.Degree,
		Coefficients: m.Coefficients,
		Intercept:    m.Intercept,
		Model:        m.Describe(),
		Equation:     m.Equation(),
		FeatureType:  s.analyzer.Sampler().Channel().Label(),
		Feature:      m.Feature,
	}, nil
}

type calibrationPredictArgs struct {
	Values []float64 `json:"values"`
}

func (s *Server) handleCalibrationPredict(args json.RawMessage) (interface{}, error) {
	var a calibrationPredictArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Values == nil {
		return nil, fmt.Errorf("values is required")
	}
	return map[string]interface{}{
		"concentrations": s.analyzer.Model().PredictAll(a.Values),
	}, nil
}
