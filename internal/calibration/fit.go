package calibration

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Sample is one reference point: a known concentration and the reading
// observed for it.
type Sample struct {
	Concentration float64 `json:"concentration"`
	Scalar        float64 `json:"scalar"`
}

// ReferenceFeature is the reading DefaultReference was measured with.
const ReferenceFeature = "red"

// DefaultReference returns the reference table for the red-channel feature
// (concentration in g/dL, mean inner-well red intensity).
func DefaultReference() []Sample {
	return []Sample{
		{0.5, 164.0951},
		{1.0, 157.1643},
		{2.0, 138.6038},
		{3.0, 132.9423},
		{4.0, 122.3280},
		{5.0, 119.8036},
		{6.0, 120.3674},
		{7.0, 112.5461},
		{8.0, 99.9079},
		{9.0, 96.1239},
		{10.0, 75.6670},
	}
}

// DefaultDegrees are the polynomial degrees tried by FitBest.
var DefaultDegrees = []int{2, 3, 4}

// Metrics summarizes how well a model reproduces a reference table.
type Metrics struct {
	R2   float64 `json:"r2"`
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
}

// Fit computes the least-squares polynomial of the given degree mapping
// Scalar to Concentration.
//
// The system is solved by QR on a centered and scaled reading, then the
// coefficients are expanded back to powers of the raw reading so the artifact
// is evaluated directly on sampled values.
func Fit(samples []Sample, degree int) (*Model, error) {
	if degree < 1 {
		return nil, fmt.Errorf("degree must be at least 1, got %d", degree)
	}
	n := len(samples)
	if n < degree+1 {
		return nil, fmt.Errorf("need at least %d samples for degree %d, got %d", degree+1, degree, n)
	}

	xs := make([]float64, n)
	for i, s := range samples {
		xs[i] = s.Scalar
	}
	center, spread := stat.MeanStdDev(xs, nil)
	if spread == 0 || math.IsNaN(spread) {
		return nil, errors.New("reference readings must not all be equal")
	}

	// Vandermonde matrix over u = (x - center) / spread.
	a := mat.NewDense(n, degree+1, nil)
	b := mat.NewVecDense(n, nil)
	for i, s := range samples {
		u := (s.Scalar - center) / spread
		p := 1.0
		for k := 0; k <= degree; k++ {
			a.Set(i, k, p)
			p *= u
		}
		b.SetVec(i, s.Concentration)
	}

	var qr mat.QR
	qr.Factorize(a)

	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, b); err != nil {
		return nil, fmt.Errorf("least squares solve failed: %w", err)
	}

	scaled := make([]float64, degree+1)
	for k := range scaled {
		scaled[k] = params.AtVec(k)
	}
	raw := expandPowers(scaled, center, spread)

	m := &Model{
		Degree:       degree,
		Coefficients: raw[1:],
		Intercept:    raw[0],
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// expandPowers rewrites Σ c[k]·((x-center)/spread)^k as Σ r[j]·x^j.
func expandPowers(c []float64, center, spread float64) []float64 {
	raw := make([]float64, len(c))
	for k, ck := range c {
		scale := ck / math.Pow(spread, float64(k))
		for j := 0; j <= k; j++ {
			raw[j] += scale * binomial(k, j) * math.Pow(-center, float64(k-j))
		}
	}
	return raw
}

func binomial(n, k int) float64 {
	r := 1.0
	for i := 1; i <= k; i++ {
		r = r * float64(n-k+i) / float64(i)
	}
	return r
}

// Evaluate scores m against samples using unrounded predictions.
func Evaluate(m *Model, samples []Sample) Metrics {
	if len(samples) == 0 {
		return Metrics{}
	}
	actual := make([]float64, len(samples))
	predicted := make([]float64, len(samples))
	var absSum, sqSum float64
	for i, s := range samples {
		actual[i] = s.Concentration
		predicted[i] = m.Evaluate(s.Scalar)
		e := predicted[i] - actual[i]
		absSum += math.Abs(e)
		sqSum += e * e
	}
	n := float64(len(samples))
	return Metrics{
		R2:   stat.RSquaredFrom(predicted, actual, nil),
		MAE:  absSum / n,
		RMSE: math.Sqrt(sqSum / n),
	}
}

// Candidate is one degree tried by FitBest.
type Candidate struct {
	Model   *Model
	Metrics Metrics
}

// FitBest fits each degree and returns the model with the highest R²,
// breaking ties by the lower mean absolute error. All candidates are returned
// in the order tried.
func FitBest(samples []Sample, degrees []int) (*Model, Metrics, []Candidate, error) {
	if len(degrees) == 0 {
		degrees = DefaultDegrees
	}

	best := -1
	candidates := make([]Candidate, 0, len(degrees))
	for _, d := range degrees {
		m, err := Fit(samples, d)
		if err != nil {
			return nil, Metrics{}, nil, fmt.Errorf("degree %d: %w", d, err)
		}
		c := Candidate{Model: m, Metrics: Evaluate(m, samples)}
		candidates = append(candidates, c)
		if best < 0 {
			best = len(candidates) - 1
			continue
		}
		b := candidates[best].Metrics
		if c.Metrics.R2 > b.R2 || (c.Metrics.R2 == b.R2 && c.Metrics.MAE < b.MAE) {
			best = len(candidates) - 1
		}
	}
	return candidates[best].Model, candidates[best].Metrics, candidates, nil
}

// Default fits the built-in reference table with the default degrees.
func Default() (*Model, error) {
	m, _, _, err := FitBest(DefaultReference(), DefaultDegrees)
	if err != nil {
		return nil, err
	}
	m.Feature = ReferenceFeature
	return m, nil
}
