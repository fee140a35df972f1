// Package features turns detected wells into scalar color readings.
//
// Each well is summarized by the mean of one color channel over a disk that
// is concentric with the well but shrunk by an inner-scale factor, keeping the
// rim (meniscus, shadow, boundary error) out of the average.
package features

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/ironsheep/wellplate/internal/detection"
	"github.com/ironsheep/wellplate/internal/imaging"
)

// DefaultInnerScale is the ratio of sampling radius to well radius.
const DefaultInnerScale = 0.72

// Channel selects the color statistic reported for each well.
type Channel string

const (
	// ChannelRed is the mean red intensity (0-255).
	ChannelRed Channel = "red"
	// ChannelSaturation is the mean HSV saturation (0-255).
	ChannelSaturation Channel = "saturation"
)

// ParseChannel parses a channel name, case-insensitively.
func ParseChannel(s string) (Channel, error) {
	switch Channel(strings.ToLower(strings.TrimSpace(s))) {
	case ChannelRed, "r":
		return ChannelRed, nil
	case ChannelSaturation, "s", "sat":
		return ChannelSaturation, nil
	}
	return "", fmt.Errorf("unknown channel %q (want red or saturation)", s)
}

// Label returns the human-readable feature type for result metadata.
func (c Channel) Label() string {
	switch c {
	case ChannelSaturation:
		return "Mean Saturation (inner well region)"
	default:
		return "Mean Red Channel Intensity (inner well region)"
	}
}

// WellFeature holds the per-well readings of one trial, in row order.
type WellFeature struct {
	Trial  int       `json:"trial"`
	Values []float64 `json:"values"`
}

// Sampler computes inner-disk channel means. The zero value is not usable;
// use NewSampler.
type Sampler struct {
	channel    Channel
	innerScale float64
}

// NewSampler creates a sampler for channel. A non-positive innerScale uses
// DefaultInnerScale.
func NewSampler(channel Channel, innerScale float64) *Sampler {
	if innerScale <= 0 {
		innerScale = DefaultInnerScale
	}
	if channel == "" {
		channel = ChannelRed
	}
	return &Sampler{channel: channel, innerScale: innerScale}
}

// Channel returns the sampled channel.
func (s *Sampler) Channel() Channel {
	return s.channel
}

// InnerScale returns the sampling radius ratio.
func (s *Sampler) InnerScale() float64 {
	return s.innerScale
}

// Sample reads every well of row from img, preserving well order.
func (s *Sampler) Sample(img *image.NRGBA, row detection.Row) WellFeature {
	values := make([]float64, len(row.Wells))
	for i, c := range row.Wells {
		values[i] = s.SampleWell(img, c)
	}
	return WellFeature{Trial: row.Index, Values: values}
}

// SampleRows samples every row, in row order.
func (s *Sampler) SampleRows(img *image.NRGBA, rows []detection.Row) []WellFeature {
	out := make([]WellFeature, len(rows))
	for i, row := range rows {
		out[i] = s.Sample(img, row)
	}
	return out
}

// SampleWell returns the channel mean over the inner disk of c. Only pixels
// inside img count; a disk with no pixels in the image reads 0.0.
func (s *Sampler) SampleWell(img *image.NRGBA, c detection.Circle) float64 {
	ir := InnerRadius(c.R, s.innerScale)
	rect := image.Rect(c.X-ir, c.Y-ir, c.X+ir+1, c.Y+ir+1).Intersect(img.Bounds())

	var sum float64
	var n int
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			dx, dy := x-c.X, y-c.Y
			if dx*dx+dy*dy > ir*ir {
				continue
			}
			i := img.PixOffset(x, y)
			sum += s.read(img.Pix[i], img.Pix[i+1], img.Pix[i+2])
			n++
		}
	}

	if n == 0 {
		return 0.0
	}
	return sum / float64(n)
}

func (s *Sampler) read(r, g, b uint8) float64 {
	if s.channel == ChannelSaturation {
		return float64(imaging.Saturation(r, g, b))
	}
	return float64(r)
}

// InnerRadius returns max(1, round(r × scale)).
func InnerRadius(r int, scale float64) int {
	ir := int(math.Round(float64(r) * scale))
	if ir < 1 {
		return 1
	}
	return ir
}
