package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ErrEmptyImage is returned when the input contains no image data or decodes
// to an image with zero width or height.
var ErrEmptyImage = errors.New("empty image")

// Decode decodes an encoded raster image held in memory.
//
// Supported formats are JPEG, PNG, GIF, BMP, and WebP. The returned format name
// is the one reported by the registered decoder ("jpeg", "png", ...).
//
// # Errors
//
//   - ErrEmptyImage if data is empty or the decoded image has no pixels
//   - A wrapped decoder error if the bytes are not a supported image
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", ErrEmptyImage
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, "", ErrEmptyImage
	}

	return img, format, nil
}

// Normalize returns an NRGBA copy of img whose bounds start at (0,0).
//
// The pipeline treats the decoded image as immutable input. Every stage reads
// from the normalized copy, which also lets hot loops index Pix directly
// instead of going through the color.Color interface.
func Normalize(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}

// ImageCache provides thread-safe caching of decoded images keyed by file path.
//
// The MCP transport accepts image paths rather than uploads, and a client often
// runs several tools against the same plate photo. Caching avoids re-reading and
// re-decoding the file for each call.
//
// ImageCache is safe for concurrent use by multiple goroutines. Cached images
// are never modified; callers must Normalize before deriving buffers from them.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves an image from the cache or reads and decodes it from disk.
//
// The image is cached using the exact path string provided. Different paths to
// the same file (e.g., relative vs absolute) result in separate cache entries.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	img, _, err := Decode(data)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// LoadBytes returns the raw encoded bytes of an image file.
//
// Unlike Load, the result is not cached: analysis entry points take encoded
// bytes so that path-based and upload-based callers share one decode path.
func (c *ImageCache) LoadBytes(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return data, nil
}

// Evict removes a specific image from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}
