package detection

// Circle is one detected well in pixel coordinates.
type Circle struct {
	X int `json:"x"` // Center X
	Y int `json:"y"` // Center Y
	R int `json:"r"` // Radius, always > 0
}

// Params controls segmentation and blob extraction.
type Params struct {
	// SatThreshold and ValThreshold are the exclusive lower bounds on HSV
	// saturation and value (0-255) for a pixel to count as well material.
	SatThreshold uint8
	ValThreshold uint8

	// OpenKernel and CloseKernel are the morphology element sizes.
	OpenKernel  int
	CloseKernel int

	// MinArea rejects boundaries enclosing less than this many square pixels.
	MinArea float64

	// MinCircularity rejects boundaries with 4π·area/perimeter² below it.
	MinCircularity float64

	// ExpectedCols is the expected number of wells per row. Fewer accepted
	// blobs than this triggers the Hough fallback.
	ExpectedCols int

	// DuplicateRatio: a fallback circle is dropped when an accepted circle's
	// center lies closer than DuplicateRatio × the larger radius.
	DuplicateRatio float64

	// MaxDimension is the largest width or height processed at full
	// resolution. Larger images are downscaled first. 0 disables.
	MaxDimension int

	// Fallback enables the Hough circle search.
	Fallback bool

	Hough HoughParams
}

// HoughParams tunes the fallback circle search.
type HoughParams struct {
	DP        float64 // Inverse accumulator resolution
	MinDist   float64 // Minimum distance between detected centers
	Param1    float64 // Edge gradient threshold
	Param2    float64 // Accumulator vote threshold
	MinRadius int
	MaxRadius int
	BlurSigma float64 // Gaussian blur applied to the grayscale input
}

// DefaultParams returns the canonical detection parameters for a 12-column
// plate photographed at phone resolution.
func DefaultParams() Params {
	return Params{
		SatThreshold:   30,
		ValThreshold:   30,
		OpenKernel:     3,
		CloseKernel:    5,
		MinArea:        60,
		MinCircularity: 0.3,
		ExpectedCols:   12,
		DuplicateRatio: 0.6,
		MaxDimension:   2000,
		Fallback:       true,
		Hough:          DefaultHoughParams(),
	}
}

// DefaultHoughParams returns the fallback search tuning.
func DefaultHoughParams() HoughParams {
	return HoughParams{
		DP:        1.2,
		MinDist:   24,
		Param1:    80,
		Param2:    26,
		MinRadius: 12,
		MaxRadius: 60,
		BlurSigma: 1.2,
	}
}

// ClusterParams controls row clustering.
type ClusterParams struct {
	// EpsFloor is the smallest radius used when deriving the neighborhood.
	EpsFloor float64
	// EpsScale multiplies max(EpsFloor, median radius) to get the DBSCAN eps.
	EpsScale float64
	// MinRowSize is the DBSCAN min_samples; smaller groups are noise.
	MinRowSize int
}

// DefaultClusterParams returns the canonical row clustering parameters.
func DefaultClusterParams() ClusterParams {
	return ClusterParams{
		EpsFloor:   6.0,
		EpsScale:   1.8,
		MinRowSize: 2,
	}
}
