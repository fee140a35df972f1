// Package imaging provides the raster primitives used by the plate pipeline.
//
// This package decodes uploaded plate photographs, produces working copies that
// downstream stages can read without touching the caller's image, and implements
// the low-level operations the detection stages are built from: HSV channel
// planes, binary masks, morphological open/close, grayscale blurring, gradient
// computation, downscaling, and detection overlays.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//
// Working copies returned by Normalize always have bounds starting at (0,0),
// so stages that operate on them can index pixels directly.
//
// # Channel Scales
//
// HSV planes use the 8-bit convention common to plate imaging tools:
//   - H: 0-179 (degrees / 2)
//   - S: 0-255 (chroma relative to the brightest channel)
//   - V: 0-255 (brightest channel)
//
// # Masks
//
// A Mask is a single-channel binary grid stored as an *image.Gray where 255 is
// foreground and 0 is background. Masks have the same size as the image they
// were derived from and are never shared between requests.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. All other functions are pure:
// they allocate their outputs and never modify their inputs, so they can be
// called concurrently on different (or the same) images.
package imaging
