package server

import (
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/wellplate/internal/analysis"
	"github.com/ironsheep/wellplate/internal/imaging"
)

// createPlateFile writes a white plate PNG with one row of 12 wells per
// y in rowsY and returns its path.
func createPlateFile(t *testing.T, rowsY ...int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 600, 220))
	for y := 0; y < 220; y++ {
		for x := 0; x < 600; x++ {
			img.Set(x, y, color.White)
		}
	}
	for _, cy := range rowsY {
		for col := 0; col < 12; col++ {
			cx := 30 + col*45
			c := color.RGBA{uint8(100 + col*10), 60, 60, 255}
			for y := cy - 15; y <= cy+15; y++ {
				for x := cx - 15; x <= cx+15; x++ {
					if (x-cx)*(x-cx)+(y-cy)*(y-cy) <= 225 {
						img.Set(x, y, c)
					}
				}
			}
		}
	}

	path := filepath.Join(t.TempDir(), "plate.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// callTool runs a tools/call request and decodes the text content into out.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}, out interface{}) *MCPResponse {
	t.Helper()
	params, _ := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: params})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil || out == nil {
		return resp
	}

	content := resp.Result.(map[string]interface{})["content"].([]map[string]interface{})
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), out); err != nil {
		t.Fatalf("tool output is not JSON: %v", err)
	}
	return resp
}

func TestPlateAnalyze(t *testing.T) {
	s := newTestServer(t)
	path := createPlateFile(t, 60, 160)

	var res analysis.Result
	if resp := callTool(t, s, "plate_analyze", map[string]interface{}{"path": path}, &res); resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if res.Steps.TrialsDetected != 2 || res.Steps.WellsDetected != 24 {
		t.Fatalf("steps: %+v", res.Steps)
	}
	if got := res.Predictions[1].Concentrations[0]; got != 10 {
		t.Errorf("first well of trial 2: got %v, want 10", got)
	}
}

func TestPlateAnalyze_EmptyPlate(t *testing.T) {
	s := newTestServer(t)
	var res analysis.Result
	if resp := callTool(t, s, "plate_analyze", map[string]interface{}{"path": createPlateFile(t)}, &res); resp.Error != nil {
		t.Fatalf("empty plate should not fail: %v", resp.Error)
	}
	if res.Steps.TrialsDetected != 0 || len(res.Predictions) != 0 {
		t.Errorf("steps: %+v", res.Steps)
	}
}

func TestPlateAnalyze_Errors(t *testing.T) {
	notImage := filepath.Join(t.TempDir(), "notes.png")
	if err := os.WriteFile(notImage, []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing path", map[string]interface{}{}},
		{"nonexistent file", map[string]interface{}{"path": "/nonexistent/plate.png"}},
		{"undecodable file", map[string]interface{}{"path": notImage}},
	}
	s := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "plate_analyze", tt.args, nil)
			if resp.Error == nil || resp.Error.Code != -32000 {
				t.Errorf("expected tool error, got %+v", resp.Error)
			}
		})
	}
}

func TestPlateDetectWells(t *testing.T) {
	s := newTestServer(t)
	path := createPlateFile(t, 60)

	var res WellsResult
	if resp := callTool(t, s, "plate_detect_wells", map[string]interface{}{"path": path, "overlay": true}, &res); resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if res.Width != 600 || res.Height != 220 || res.Scale != 1 {
		t.Errorf("geometry: %+v", res)
	}
	if res.WellsDetected != 12 || len(res.Rows) != 1 || len(res.Rows[0].Wells) != 12 {
		t.Fatalf("wells: %+v", res)
	}
	for i := 1; i < len(res.Rows[0].Wells); i++ {
		if res.Rows[0].Wells[i].X <= res.Rows[0].Wells[i-1].X {
			t.Error("wells should be ordered left to right")
		}
	}

	data, err := base64.StdEncoding.DecodeString(res.OverlayPNG)
	if err != nil {
		t.Fatalf("overlay is not base64: %v", err)
	}
	if _, _, err := imaging.Decode(data); err != nil {
		t.Errorf("overlay is not an image: %v", err)
	}
}

func TestPlateDetectWells_NoiseWellNotCounted(t *testing.T) {
	s := newTestServer(t)
	path := createPlateFile(t, 60)

	// Add one isolated well far below the row.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	img, _, err := imaging.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	plate := imaging.Normalize(img)
	for y := 175; y <= 205; y++ {
		for x := 285; x <= 315; x++ {
			if (x-300)*(x-300)+(y-190)*(y-190) <= 225 {
				plate.Set(x, y, color.RGBA{150, 60, 60, 255})
			}
		}
	}
	encoded, err := imaging.EncodePNG(plate)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatal(err)
	}

	var res WellsResult
	if resp := callTool(t, s, "plate_detect_wells", map[string]interface{}{"path": path}, &res); resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if res.TrialsDetected != 1 || res.WellsDetected != 12 {
		t.Errorf("got wells=%d trials=%d, want 12 and 1", res.WellsDetected, res.TrialsDetected)
	}
}

func TestPlateDetectWells_NoOverlayByDefault(t *testing.T) {
	s := newTestServer(t)
	var res WellsResult
	callTool(t, s, "plate_detect_wells", map[string]interface{}{"path": createPlateFile(t, 60)}, &res)
	if res.OverlayPNG != "" {
		t.Error("overlay should be omitted unless requested")
	}
}

func TestPlateSampleWells(t *testing.T) {
	s := newTestServer(t)
	path := createPlateFile(t, 60)

	var red SamplesResult
	if resp := callTool(t, s, "plate_sample_wells", map[string]interface{}{"path": path}, &red); resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if len(red.Features) != 1 || len(red.Features[0].Values) != 12 {
		t.Fatalf("features: %+v", red.Features)
	}
	if red.Features[0].Values[0] != 100 || red.Features[0].Values[11] != 210 {
		t.Errorf("red means: got %v", red.Features[0].Values)
	}

	var sat SamplesResult
	callTool(t, s, "plate_sample_wells", map[string]interface{}{"path": path, "channel": "saturation", "inner_scale": 0.5}, &sat)
	if sat.FeatureType != "Mean Saturation (inner well region)" || sat.InnerScale != 0.5 {
		t.Errorf("overrides not applied: %+v", sat)
	}
}

func TestPlateSampleWells_InvalidArgs(t *testing.T) {
	s := newTestServer(t)
	path := createPlateFile(t, 60)
	for _, args := range []map[string]interface{}{
		{"path": path, "channel": "blue"},
		{"path": path, "inner_scale": 1.5},
	} {
		if resp := callTool(t, s, "plate_sample_wells", args, nil); resp.Error == nil {
			t.Errorf("args %v should fail", args)
		}
	}
}

func TestCalibrationInfo(t *testing.T) {
	s := newTestServer(t)
	var info CalibrationInfo
	if resp := callTool(t, s, "calibration_info", nil, &info); resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if info.Degree != 1 || len(info.Coefficients) != 1 || info.Equation == "" {
		t.Errorf("info: %+v", info)
	}
}

func TestCalibrationPredict(t *testing.T) {
	s := newTestServer(t)
	var out struct {
		Concentrations []float64 `json:"concentrations"`
	}
	callTool(t, s, "calibration_predict", map[string]interface{}{"values": []float64{0, 123.4567}}, &out)
	if len(out.Concentrations) != 2 || out.Concentrations[0] != 0 || out.Concentrations[1] != 12.346 {
		t.Errorf("concentrations: got %v", out.Concentrations)
	}

	if resp := callTool(t, s, "calibration_predict", map[string]interface{}{}, nil); resp.Error == nil {
		t.Error("missing values should fail")
	}
}

func TestHandleToolsCall_UnknownTool(t *testing.T) {
	s := newTestServer(t)
	resp := callTool(t, s, "image_crop", map[string]interface{}{}, nil)
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Errorf("expected tool error, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: json.RawMessage(`"nope"`)})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("expected invalid params, got %+v", resp.Error)
	}
}
