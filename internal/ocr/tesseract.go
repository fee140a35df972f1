package ocr

import (
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/wellplate/internal/imaging"
)

// DefaultLanguage is the Tesseract language used when none is configured.
const DefaultLanguage = "eng"

// DefaultMinConfidence drops words Tesseract is less than 40% sure of.
const DefaultMinConfidence = 0.4

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Word is one recognized word with its location and OCR confidence.
type Word struct {
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Bounds is in original image coordinates.
	Bounds Bounds `json:"bounds"`
}

// Result contains the text recognized in one region.
type Result struct {
	// FullText is all recognized text with original spacing/newlines.
	FullText string `json:"full_text"`

	// Words may be empty if bounding box extraction fails (text will still be
	// in FullText).
	Words []Word `json:"words"`
}

// Reader recognizes text in image regions. It holds no engine state between
// calls, so one Reader may be shared by concurrent requests.
type Reader struct {
	language      string
	minConfidence float64
}

// NewReader creates a Reader for the given Tesseract language code. An empty
// language uses DefaultLanguage.
func NewReader(language string) *Reader {
	if language == "" {
		language = DefaultLanguage
	}
	return &Reader{language: language, minConfidence: DefaultMinConfidence}
}

// Language returns the configured Tesseract language code.
func (r *Reader) Language() string {
	return r.language
}

// ReadRegion performs OCR on rect of img.
//
// The region is clipped to the image bounds. Word bounds are adjusted to be
// relative to img, not the cropped region: a word at (10, 20) in a region
// starting at (100, 50) is reported at (110, 70).
func (r *Reader) ReadRegion(img image.Image, rect image.Rectangle) (*Result, error) {
	cropped, err := imaging.Crop(img, rect)
	if err != nil {
		return nil, fmt.Errorf("OCR region: %w", err)
	}
	rect = rect.Intersect(img.Bounds())

	data, err := imaging.EncodePNG(cropped)
	if err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(r.language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// Return just text if boxes fail
		return &Result{FullText: text, Words: []Word{}}, nil
	}

	words := make([]Word, 0, len(boxes))
	for _, box := range boxes {
		if strings.TrimSpace(box.Word) == "" {
			continue
		}
		words = append(words, Word{
			Text:       box.Word,
			Confidence: float64(box.Confidence) / 100.0,
			Bounds: Bounds{
				X1: box.Box.Min.X + rect.Min.X,
				Y1: box.Box.Min.Y + rect.Min.Y,
				X2: box.Box.Max.X + rect.Min.X,
				Y2: box.Box.Max.Y + rect.Min.Y,
			},
		})
	}

	return &Result{FullText: text, Words: words}, nil
}

// ReadLabel returns the confident words of rect joined by single spaces. An
// unreadable or blank region yields "" with a nil error.
func (r *Reader) ReadLabel(img image.Image, rect image.Rectangle) (string, error) {
	res, err := r.ReadRegion(img, rect)
	if err != nil {
		return "", err
	}
	return labelText(res, r.minConfidence), nil
}

// labelText joins words at or above minConfidence. Without word boxes the
// full text is collapsed instead.
func labelText(res *Result, minConfidence float64) string {
	if len(res.Words) == 0 {
		return strings.Join(strings.Fields(res.FullText), " ")
	}
	kept := make([]string, 0, len(res.Words))
	for _, w := range res.Words {
		if w.Confidence >= minConfidence {
			kept = append(kept, strings.TrimSpace(w.Text))
		}
	}
	return strings.Join(kept, " ")
}

// Info describes the OCR subsystem.
type Info struct {
	Available bool     `json:"available"`
	Version   string   `json:"version,omitempty"`
	Languages []string `json:"languages,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// GetInfo reports the Tesseract version and installed languages.
func GetInfo() Info {
	langs, err := gosseract.GetAvailableLanguages()
	if err != nil {
		return Info{Available: false, Version: gosseract.Version(), Error: err.Error()}
	}
	return Info{Available: true, Version: gosseract.Version(), Languages: langs}
}
