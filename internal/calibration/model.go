// Package calibration maps well color readings to analyte concentrations.
//
// A Model is a polynomial in the scalar reading: a fixed degree, one
// coefficient per power 1..degree, and an intercept. Models are fit offline
// from a reference table (see Fit and FitBest), persisted as a small JSON
// artifact, and loaded once per process. A loaded Model is never mutated, so
// it is safe for concurrent use without locking.
package calibration

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// ErrInvalidModel is wrapped by every artifact validation failure.
var ErrInvalidModel = errors.New("invalid calibration model")

// PredictionDecimals is the number of decimal places kept in predictions.
const PredictionDecimals = 3

// Model is a fitted polynomial calibration curve.
//
// For a reading x, the predicted concentration is
// Intercept + Coefficients[0]*x + Coefficients[1]*x² + ... + Coefficients[Degree-1]*x^Degree.
//
// Feature names the color reading the curve was fitted on ("red" or
// "saturation"). Artifacts written before the field existed leave it empty.
type Model struct {
	Degree       int       `json:"degree"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	Feature      string    `json:"feature,omitempty"`
}

// Validate checks the model's shape and values.
func (m *Model) Validate() error {
	if m.Degree < 1 {
		return fmt.Errorf("%w: degree %d", ErrInvalidModel, m.Degree)
	}
	if len(m.Coefficients) != m.Degree {
		return fmt.Errorf("%w: %d coefficients for degree %d", ErrInvalidModel, len(m.Coefficients), m.Degree)
	}
	if math.IsNaN(m.Intercept) || math.IsInf(m.Intercept, 0) {
		return fmt.Errorf("%w: intercept is not finite", ErrInvalidModel)
	}
	for i, c := range m.Coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: coefficient %d is not finite", ErrInvalidModel, i+1)
		}
	}
	return nil
}

// Evaluate returns the unrounded concentration for reading x.
func (m *Model) Evaluate(x float64) float64 {
	// Horner form over powers 1..Degree.
	var acc float64
	for i := len(m.Coefficients) - 1; i >= 0; i-- {
		acc = acc*x + m.Coefficients[i]
	}
	return m.Intercept + acc*x
}

// Predict returns the concentration for reading x, rounded to
// PredictionDecimals places.
func (m *Model) Predict(x float64) float64 {
	return Round(m.Evaluate(x), PredictionDecimals)
}

// PredictAll predicts every reading, preserving order.
func (m *Model) PredictAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = m.Predict(x)
	}
	return out
}

// Describe returns a short human-readable summary for result metadata.
func (m *Model) Describe() string {
	return fmt.Sprintf("Polynomial Regression (degree %d, calibrated on reference table)", m.Degree)
}

// Equation renders the curve as a formula in x.
func (m *Model) Equation() string {
	var sb strings.Builder
	sb.WriteString("y = ")
	sb.WriteString(strconv.FormatFloat(m.Intercept, 'g', 8, 64))
	for i, c := range m.Coefficients {
		sign := "+"
		if c < 0 {
			sign = "-"
		}
		fmt.Fprintf(&sb, " %s %s·x", sign, strconv.FormatFloat(math.Abs(c), 'g', 8, 64))
		if i > 0 {
			fmt.Fprintf(&sb, "^%d", i+1)
		}
	}
	return sb.String()
}

// Parse decodes and validates a JSON model artifact.
func Parse(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads and validates a model artifact from path.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read calibration model: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Save writes the model artifact to path as indented JSON.
func (m *Model) Save(path string) error {
	if err := m.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode calibration model: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write calibration model: %w", err)
	}
	return nil
}

// Round rounds v to the given number of decimal places.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
