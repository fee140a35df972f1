// Package analysis composes the plate pipeline: decode, segment, extract,
// cluster, sample and predict.
//
// An Analyzer is built once at startup around an immutable calibration model
// and may be shared by concurrent requests. Every call works on its own image,
// mask and circle buffers.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/ironsheep/wellplate/internal/calibration"
	"github.com/ironsheep/wellplate/internal/detection"
	"github.com/ironsheep/wellplate/internal/features"
	"github.com/ironsheep/wellplate/internal/imaging"
)

// ErrDecode wraps failures to interpret the input bytes as an image.
var ErrDecode = errors.New("cannot decode image")

// ErrFeatureMismatch is returned by New when the model was fitted on a
// different color reading than the one the analyzer samples.
var ErrFeatureMismatch = errors.New("calibration model does not match feature channel")

// LabelReader reads the printed plate label from a region of the photo.
type LabelReader interface {
	ReadLabel(img image.Image, rect image.Rectangle) (string, error)
}

// Options configures an Analyzer.
type Options struct {
	Detection  detection.Params
	Cluster    detection.ClusterParams
	Channel    features.Channel
	InnerScale float64

	// Debug logs a per-stage summary for every analysis.
	Debug bool
}

// DefaultOptions returns the canonical pipeline settings.
func DefaultOptions() Options {
	return Options{
		Detection:  detection.DefaultParams(),
		Cluster:    detection.DefaultClusterParams(),
		Channel:    features.ChannelRed,
		InnerScale: features.DefaultInnerScale,
	}
}

// Steps is the descriptive metadata of one analysis.
type Steps struct {
	WellsDetected  int    `json:"wells_detected"`
	TrialsDetected int    `json:"trials_detected"`
	FeatureType    string `json:"feature_type"`
	Model          string `json:"model"`
	PlateLabel     string `json:"plate_label,omitempty"`
}

// Prediction holds the concentrations of one trial, in well order.
type Prediction struct {
	Trial          int       `json:"trial"`
	Concentrations []float64 `json:"concentrations"`
}

// Result is the complete output for one image. Predictions, Features and
// Rows are index-aligned by trial and never nil.
type Result struct {
	Steps       Steps                  `json:"steps"`
	Predictions []Prediction           `json:"predictions"`
	Features    []features.WellFeature `json:"features"`
	Rows        []detection.Row        `json:"rows"`
}

// Analyzer runs the pipeline against a fixed model and parameter set.
type Analyzer struct {
	model   *calibration.Model
	opts    Options
	sampler *features.Sampler
	labels  LabelReader
}

// New creates an Analyzer. labels may be nil to skip plate label reading.
// A model that records its feature must match opts.Channel.
func New(model *calibration.Model, opts Options, labels LabelReader) (*Analyzer, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: no model", calibration.ErrInvalidModel)
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	if opts.InnerScale <= 0 {
		opts.InnerScale = features.DefaultInnerScale
	}
	if opts.Channel == "" {
		opts.Channel = features.ChannelRed
	}
	if model.Feature != "" && model.Feature != string(opts.Channel) {
		return nil, fmt.Errorf("%w: model fitted on %q, sampling %q", ErrFeatureMismatch, model.Feature, opts.Channel)
	}
	return &Analyzer{
		model:   model,
		opts:    opts,
		sampler: features.NewSampler(opts.Channel, opts.InnerScale),
		labels:  labels,
	}, nil
}

// Model returns the calibration model in use.
func (a *Analyzer) Model() *calibration.Model {
	return a.model
}

// Sampler returns the color sampler in use.
func (a *Analyzer) Sampler() *features.Sampler {
	return a.sampler
}

// Analyze decodes data and runs the full pipeline.
//
// Undecodable input returns an error wrapping ErrDecode. A plate with no
// detectable wells is not an error: it yields a Result with zero trials.
func (a *Analyzer) Analyze(ctx context.Context, data []byte) (*Result, error) {
	img, _, err := imaging.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return a.AnalyzeImage(ctx, img)
}

// AnalyzeImage runs the pipeline on an already decoded image. img is not
// modified.
func (a *Analyzer) AnalyzeImage(ctx context.Context, img image.Image) (*Result, error) {
	start := time.Now()
	work := imaging.Normalize(img)

	det, rows := a.locate(work)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	feats := a.sampler.SampleRows(work, rows)
	preds := make([]Prediction, len(feats))
	for i, f := range feats {
		preds[i] = Prediction{Trial: f.Trial, Concentrations: a.model.PredictAll(f.Values)}
	}

	res := &Result{
		Steps: Steps{
			WellsDetected:  detection.CountWells(rows),
			TrialsDetected: len(rows),
			FeatureType:    a.sampler.Channel().Label(),
			Model:          a.model.Describe(),
		},
		Predictions: preds,
		Features:    feats,
		Rows:        rows,
	}

	if a.labels != nil {
		res.Steps.PlateLabel = a.readLabel(work, rows)
	}

	if a.opts.Debug {
		log.Printf("analysis: %dx%d scale=%.3f foreground=%d blobs=%d fallback=%v(+%d) circles=%d wells=%d rows=%d in %v",
			work.Bounds().Dx(), work.Bounds().Dy(), det.Scale, det.ForegroundPixels,
			det.ContourBlobs, det.FallbackRan, det.FallbackAdded,
			len(det.Circles), res.Steps.WellsDetected, len(rows), time.Since(start))
	}

	return res, nil
}

// Locate detects wells in img and groups them into trials without sampling.
func (a *Analyzer) Locate(img image.Image) (*detection.Detection, []detection.Row) {
	return a.locate(imaging.Normalize(img))
}

func (a *Analyzer) locate(work *image.NRGBA) (*detection.Detection, []detection.Row) {
	det := detection.Detect(work, a.opts.Detection)
	rows := detection.Cluster(det.Circles, a.opts.Cluster)
	return det, rows
}

// labelBand returns the strip above the first trial, where plates carry
// their printed identifier. ok is false when the strip is too thin to read.
func labelBand(bounds image.Rectangle, rows []detection.Row) (image.Rectangle, bool) {
	if len(rows) == 0 {
		return image.Rectangle{}, false
	}
	top := bounds.Max.Y
	for _, w := range rows[0].Wells {
		if y := w.Y - w.R; y < top {
			top = y
		}
	}
	if top-bounds.Min.Y < minLabelBand {
		return image.Rectangle{}, false
	}
	return image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Max.X, top), true
}

const minLabelBand = 12

// readLabel never fails the analysis; OCR errors leave the label empty.
func (a *Analyzer) readLabel(img image.Image, rows []detection.Row) string {
	rect, ok := labelBand(img.Bounds(), rows)
	if !ok {
		return ""
	}
	label, err := a.labels.ReadLabel(img, rect)
	if err != nil {
		log.Printf("plate label: %v", err)
		return ""
	}
	return label
}
