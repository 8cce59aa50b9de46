// Package ocr adapts an external OCR engine to the service.OCRClient
// contract. The engine is a commodity black box: this package shells out to
// the tesseract CLI and reports its text plus a per-run confidence, and
// nothing downstream depends on which engine produced the text.
package ocr

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/herbwise/basil/internal/service"
)

// TesseractClient runs the tesseract binary against receipt images.
type TesseractClient struct {
	binary   string
	language string
}

// NewTesseract creates a tesseract-backed OCR client. binary defaults to
// "tesseract" on PATH; language defaults to "eng".
func NewTesseract(binary, language string) *TesseractClient {
	if binary == "" {
		binary = "tesseract"
	}
	if language == "" {
		language = "eng"
	}
	return &TesseractClient{binary: binary, language: language}
}

// Recognize extracts text from an image file. Confidence is the mean
// per-word confidence tesseract reports via TSV output, scaled to [0,1].
func (t *TesseractClient) Recognize(ctx context.Context, imagePath string) (service.OCRResult, error) {
	if _, err := os.Stat(imagePath); err != nil {
		return service.OCRResult{}, fmt.Errorf("cannot read image: %w", err)
	}

	text, err := t.run(ctx, imagePath, "txt")
	if err != nil {
		return service.OCRResult{}, err
	}

	confidence := 0.5
	if tsv, err := t.run(ctx, imagePath, "tsv"); err == nil {
		if c, ok := meanWordConfidence(tsv); ok {
			confidence = c
		}
	}

	return service.OCRResult{
		Text:       text,
		Confidence: confidence,
	}, nil
}

func (t *TesseractClient) run(ctx context.Context, imagePath, format string) (string, error) {
	args := []string{imagePath, "stdout", "-l", t.language}
	if format == "tsv" {
		args = append(args, "tsv")
	}

	cmd := exec.CommandContext(ctx, t.binary, args...)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("tesseract failed: %w", err)
	}
	return string(out), nil
}

// meanWordConfidence averages the conf column of tesseract's TSV output,
// skipping structural rows (conf -1).
func meanWordConfidence(tsv string) (float64, bool) {
	lines := strings.Split(tsv, "\n")
	if len(lines) < 2 {
		return 0, false
	}

	total := 0.0
	count := 0
	for _, line := range lines[1:] {
		fields := strings.Split(line, "\t")
		if len(fields) < 11 {
			continue
		}
		conf, err := strconv.ParseFloat(fields[10], 64)
		if err != nil || conf < 0 {
			continue
		}
		total += conf
		count++
	}

	if count == 0 {
		return 0, false
	}
	return total / float64(count) / 100, true
}
