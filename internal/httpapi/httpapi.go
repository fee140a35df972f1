// Package httpapi serves the plate pipeline over HTTP.
//
// Routes:
//
//	POST /analyze          multipart field "file" or a raw image body; JSON result
//	POST /analyze/overlay  same input; PNG with detected wells drawn
//	GET  /calibration      the loaded calibration model
//	GET  /health           liveness
//
// Every response carries permissive CORS headers so browser front ends on
// other origins can post photos directly.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ironsheep/wellplate/internal/analysis"
	"github.com/ironsheep/wellplate/internal/imaging"
)

// Handler holds the shared analyzer and upload limit.
type Handler struct {
	analyzer  *analysis.Analyzer
	maxUpload int64
}

// NewHandler creates a Handler. maxUploadMB bounds request bodies.
func NewHandler(a *analysis.Analyzer, maxUploadMB int64) *Handler {
	return &Handler{analyzer: a, maxUpload: maxUploadMB << 20}
}

// Router returns the routed, CORS-wrapped handler.
func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/analyze", h.Analyze).Methods(http.MethodPost)
	r.HandleFunc("/analyze/overlay", h.Overlay).Methods(http.MethodPost)
	r.HandleFunc("/calibration", h.Calibration).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	return corsMiddleware(r)
}

// Analyze handles POST /analyze.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	data, err := h.readImage(w, r)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), data)
	if err != nil {
		h.analysisFailed(w, err)
		return
	}
	respondJSON(w, result, http.StatusOK)
}

// Overlay handles POST /analyze/overlay.
func (h *Handler) Overlay(w http.ResponseWriter, r *http.Request) {
	data, err := h.readImage(w, r)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	img, _, err := imaging.Decode(data)
	if err != nil {
		h.analysisFailed(w, fmt.Errorf("%w: %v", analysis.ErrDecode, err))
		return
	}
	_, rows := h.analyzer.Locate(img)
	png, err := imaging.EncodePNG(h.analyzer.Overlay(img, rows))
	if err != nil {
		h.analysisFailed(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// Calibration handles GET /calibration.
func (h *Handler) Calibration(w http.ResponseWriter, _ *http.Request) {
	m := h.analyzer.Model()
	respondJSON(w, map[string]interface{}{
		"degree":       m.Degree,
		"coefficients": m.Coefficients,
		"intercept":    m.Intercept,
		"model":        m.Describe(),
		"equation":     m.Equation(),
		"feature_type": h.analyzer.Sampler().Channel().Label(),
		"feature":      m.Feature,
	}, http.StatusOK)
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// readImage returns the uploaded bytes from a multipart "file" field or, for
// any other content type, the raw request body.
func (h *Handler) readImage(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(h.maxUpload); err != nil {
			return nil, fmt.Errorf("failed to parse form: %w", err)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, errors.New("no file uploaded")
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		return data, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("no file uploaded")
	}
	return data, nil
}

func (h *Handler) analysisFailed(w http.ResponseWriter, err error) {
	if errors.Is(err, analysis.ErrDecode) {
		respondError(w, "Invalid image: "+err.Error(), http.StatusBadRequest)
		return
	}
	log.Printf("analysis failed: %v", err)
	respondError(w, "Analysis failed", http.StatusInternalServerError)
}

func respondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, map[string]string{"error": message}, status)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
