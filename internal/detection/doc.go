// Package detection locates the wells of a multi-well plate and groups them
// into rows.
//
// Detection runs as a short chain of pure stages, each with a plain
// input/output contract:
//
//  1. Segment: HSV saturation/value thresholds plus morphological open/close
//     turn the photo into a binary foreground mask.
//  2. Extract: external boundaries of mask regions are traced, filtered by
//     area and circularity, and fitted with minimum enclosing circles. When
//     fewer circles than one full row are found, a gradient Hough search over
//     a blurred grayscale copy supplies extra candidates, skipping any that
//     overlap an accepted circle.
//  3. Cluster: circles are grouped into rows by 1-D DBSCAN on their vertical
//     coordinate, rows ordered top to bottom and wells left to right.
//
// Detect wraps stages 1 and 2 with downscaling for oversized photos; the
// returned circles are always in the coordinate space of the input image.
//
// # Coordinate System
//
// Origin (0, 0) is the top-left pixel, X increases rightward and Y downward.
// Circle centers and radii are integer pixels, truncated from the fitted
// floating-point values.
//
// # Build Tags
//
// The Hough fallback is implemented in pure Go by default. Building with
// -tags gocv swaps in OpenCV's HoughCircles through gocv; both variants take
// the same HoughParams.
//
// # Determinism
//
// No stage uses randomness that can affect its output, and every list is
// explicitly sorted before it is returned, so identical input images always
// produce identical circles and rows.
package detection
