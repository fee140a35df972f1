package analysis

import (
	"image"
	"strconv"

	"github.com/ironsheep/wellplate/internal/detection"
	"github.com/ironsheep/wellplate/internal/features"
	"github.com/ironsheep/wellplate/internal/imaging"
)

// Overlay draws every well of rows on a copy of img with its inner sampling
// disk. The first well of each trial is labeled with the trial number.
func (a *Analyzer) Overlay(img image.Image, rows []detection.Row) *image.RGBA {
	var marks []imaging.Mark
	for _, row := range rows {
		for i, w := range row.Wells {
			m := imaging.Mark{
				X:      w.X,
				Y:      w.Y,
				Radius: w.R,
				Inner:  features.InnerRadius(w.R, a.sampler.InnerScale()),
			}
			if i == 0 {
				m.Label = strconv.Itoa(row.Index)
			}
			marks = append(marks, m)
		}
	}
	return imaging.Overlay(img, marks, "#00FF00")
}
