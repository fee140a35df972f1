// Package ocr reads printed plate labels using Tesseract.
//
// The analysis pipeline can annotate a result with the text printed on the
// plate (a sample ID or date written above the first row of wells). This
// package wraps the Tesseract engine via gosseract/v2 for that purpose: crop a
// region, run single-block recognition, and return the words and their
// confidences in original-image coordinates.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// # Error Handling
//
// Reading a label never fails an analysis; callers log the error and leave
// the label empty. Region and engine errors are still returned so that tools
// exposing OCR directly can report them.
package ocr
