package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ironsheep/wellplate/internal/analysis"
	"github.com/ironsheep/wellplate/internal/calibration"
	"github.com/ironsheep/wellplate/internal/config"
	"github.com/ironsheep/wellplate/internal/detection"
	"github.com/ironsheep/wellplate/internal/httpapi"
	"github.com/ironsheep/wellplate/internal/imaging"
	"github.com/ironsheep/wellplate/internal/ocr"
	"github.com/ironsheep/wellplate/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const usage = `wellplate - photo-to-concentration analysis for multi-well plates

Usage:
  wellplate serve                     Start the HTTP API
  wellplate mcp                       Start the MCP server on stdin/stdout (default)
  wellplate analyze [-overlay out.png] <image>
                                      Analyze one photo and print the JSON result
  wellplate calibrate [-o model.json] Fit the reference table and print a report
  wellplate calibrate -check model.json
                                      Evaluate an existing model artifact
  wellplate version                   Print version information
  wellplate help                      Print this help message

Environment variables:
  WELLPLATE_ADDR=:8000            HTTP listen address
  WELLPLATE_CALIBRATION=path      Calibration model JSON (default: fit built-in table)
  WELLPLATE_SAT_THRESH=30         Saturation threshold (0-255)
  WELLPLATE_VAL_THRESH=30         Value threshold (0-255)
  WELLPLATE_EXPECTED_COLS=12      Wells per row; fewer blobs triggers circle search
  WELLPLATE_INNER_SCALE=0.72      Fraction of the well radius sampled
  WELLPLATE_CHANNEL=red           red or saturation
  WELLPLATE_MAX_DIMENSION=2000    Larger photos are downscaled first
  WELLPLATE_READ_LABEL=false      OCR the plate label above the first row
  WELLPLATE_OCR_LANG=eng          Tesseract language
  WELLPLATE_MAX_UPLOAD_MB=20      Upload size limit
  WELLPLATE_LOG_LEVEL=debug       Enable debug logging
`

func main() {
	// Configure logging to stderr (stdout is for MCP protocol and results)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(args []string, stdout io.Writer) error {
	cmd := "mcp"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "--version", "-v", "version":
		fmt.Fprintf(stdout, "wellplate %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return nil
	case "--help", "-h", "help":
		fmt.Fprint(stdout, usage)
		return nil
	case "calibrate":
		return runCalibrate(args, stdout)
	}

	cfg := loadConfig()
	a, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}

	switch cmd {
	case "serve":
		return runServe(cfg, a)
	case "mcp":
		if cfg.Debug {
			log.Printf("Wellplate MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
		}
		return server.New(a, Version).Run()
	case "analyze":
		return runAnalyze(a, args, stdout)
	default:
		return fmt.Errorf("unknown command %q (see 'wellplate help')", cmd)
	}
}

func loadConfig() *config.Config {
	cfg, warnings := config.Load()
	for _, w := range warnings {
		log.Printf("config: %s", w)
	}
	return cfg
}

// newAnalyzer loads the calibration model and builds the shared analyzer.
// Without a configured artifact the built-in reference table is fitted once.
func newAnalyzer(cfg *config.Config) (*analysis.Analyzer, error) {
	var (
		model *calibration.Model
		err   error
	)
	if cfg.CalibrationPath != "" {
		model, err = calibration.Load(cfg.CalibrationPath)
	} else {
		model, err = calibration.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("calibration: %w", err)
	}
	if cfg.Debug {
		log.Printf("calibration: %s", model.Equation())
	}

	var labels analysis.LabelReader
	if cfg.ReadLabel {
		reader := ocr.NewReader(cfg.OCRLanguage)
		if w := ocrWarning(reader, ocr.GetInfo()); w != "" {
			log.Printf("Warning: %s", w)
		}
		labels = reader
	}

	a, err := analysis.New(model, analysisOptions(cfg), labels)
	if errors.Is(err, analysis.ErrFeatureMismatch) && cfg.CalibrationPath == "" {
		return nil, fmt.Errorf("%w (the built-in table is red-channel; set WELLPLATE_CALIBRATION to a model fitted on %s)", err, cfg.Channel)
	}
	return a, err
}

// ocrWarning explains why plate labels will come back empty, or returns "".
func ocrWarning(reader *ocr.Reader, info ocr.Info) string {
	if !info.Available {
		return fmt.Sprintf("plate labels enabled but OCR unavailable: %s", info.Error)
	}
	installed := make(map[string]bool, len(info.Languages))
	for _, lang := range info.Languages {
		installed[lang] = true
	}
	// Tesseract accepts combined codes such as "eng+deu".
	for _, lang := range strings.Split(reader.Language(), "+") {
		if !installed[lang] {
			return fmt.Sprintf("plate labels enabled but tesseract has no %q language data", lang)
		}
	}
	return ""
}

func analysisOptions(cfg *config.Config) analysis.Options {
	det := detection.DefaultParams()
	det.SatThreshold = cfg.SatThreshold
	det.ValThreshold = cfg.ValThreshold
	det.ExpectedCols = cfg.ExpectedCols
	det.MaxDimension = cfg.MaxDimension

	return analysis.Options{
		Detection:  det,
		Cluster:    detection.DefaultClusterParams(),
		Channel:    cfg.Channel,
		InnerScale: cfg.InnerScale,
		Debug:      cfg.Debug,
	}
}

func runServe(cfg *config.Config, a *analysis.Analyzer) error {
	srv := &http.Server{
		Handler:      httpapi.NewHandler(a, cfg.MaxUploadMB).Router(),
		Addr:         cfg.Addr,
		WriteTimeout: 60 * time.Second,
		ReadTimeout:  60 * time.Second,
	}

	log.Printf("Starting server on %s", srv.Addr)
	return srv.ListenAndServe()
}

func runAnalyze(a *analysis.Analyzer, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	overlay := fs.String("overlay", "", "write a PNG with detected wells to this path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("analyze: expected one image path")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	img, _, err := imaging.Decode(data)
	if err != nil {
		return fmt.Errorf("%w: %v", analysis.ErrDecode, err)
	}

	res, err := a.AnalyzeImage(context.Background(), img)
	if err != nil {
		return err
	}

	if *overlay != "" {
		png, err := imaging.EncodePNG(a.Overlay(img, res.Rows))
		if err != nil {
			return err
		}
		if err := os.WriteFile(*overlay, png, 0o644); err != nil {
			return fmt.Errorf("failed to write overlay: %w", err)
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func runCalibrate(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("calibrate", flag.ContinueOnError)
	out := fs.String("o", "", "write the fitted model artifact to this path")
	check := fs.String("check", "", "evaluate an existing model artifact instead of fitting")
	if err := fs.Parse(args); err != nil {
		return err
	}

	samples := calibration.DefaultReference()

	if *check != "" {
		m, err := calibration.Load(*check)
		if err != nil {
			return err
		}
		calibration.WriteReport(stdout, m, samples, nil)
		return nil
	}

	m, _, candidates, err := calibration.FitBest(samples, calibration.DefaultDegrees)
	if err != nil {
		return fmt.Errorf("calibration fit failed: %w", err)
	}
	m.Feature = calibration.ReferenceFeature
	calibration.WriteReport(stdout, m, samples, candidates)

	if *out != "" {
		if err := m.Save(*out); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "\nSaved model to %s\n", *out)
	}
	return nil
}
