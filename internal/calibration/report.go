package calibration

import (
	"fmt"
	"io"
	"strings"
)

// WriteReport prints a per-point comparison of m against samples followed by
// the summary metrics. Candidates, if given, are listed first.
func WriteReport(w io.Writer, m *Model, samples []Sample, candidates []Candidate) {
	rule := strings.Repeat("=", 62)

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Calibration: %d reference points\n", len(samples))
	fmt.Fprintln(w, rule)

	for _, c := range candidates {
		fmt.Fprintf(w, "degree %d: R² = %.6f | MAE = %.4f | RMSE = %.4f\n",
			c.Model.Degree, c.Metrics.R2, c.Metrics.MAE, c.Metrics.RMSE)
	}
	if len(candidates) > 0 {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%-12s %-12s %-12s %-12s\n", "Actual", "Reading", "Predicted", "Error")
	fmt.Fprintln(w, strings.Repeat("-", 50))
	for _, s := range samples {
		pred := m.Evaluate(s.Scalar)
		fmt.Fprintf(w, "%-12.2f %-12.4f %-12.3f %+.3f\n", s.Concentration, s.Scalar, pred, pred-s.Concentration)
	}

	metrics := Evaluate(m, samples)
	fmt.Fprintln(w, strings.Repeat("-", 50))
	fmt.Fprintf(w, "Degree %d | R² = %.6f | MAE = %.4f | RMSE = %.4f\n", m.Degree, metrics.R2, metrics.MAE, metrics.RMSE)
	fmt.Fprintln(w, m.Equation())
}
