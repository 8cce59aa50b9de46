package model

import "fmt"

// Source indicates where a piece of raw input text came from.
type Source string

const (
	// SourceManual indicates text typed directly by the user.
	SourceManual Source = "manual"
	// SourceOCR indicates text produced by an OCR engine from a receipt image.
	SourceOCR Source = "ocr"
)

// RawInput is one unit of unstructured input handed to the extraction
// pipeline. It is never persisted; the pipeline consumes it and discards it.
type RawInput struct {
	Text             string
	Source           Source
	SourceConfidence float64
}

// Validate checks that the input is structurally sound before extraction.
func (r RawInput) Validate() error {
	switch r.Source {
	case SourceManual, SourceOCR:
	default:
		return fmt.Errorf("unknown input source %q", r.Source)
	}
	if r.SourceConfidence < 0 || r.SourceConfidence > 1 {
		return fmt.Errorf("source confidence must be between 0.0 and 1.0, got %.2f", r.SourceConfidence)
	}
	return nil
}

// Segment is a candidate single-item substring of a RawInput, tagged with
// its offsets into the normalized text for diagnostics.
type Segment struct {
	Text  string
	Start int
	End   int
}
