//go:build !tesseract

// Package tesseract recognizes page images with the Tesseract engine.
//
// This is the stub used when the "tesseract" build tag is not set. Recognize
// always returns ErrNotEnabled. Rebuild with the tag to enable it:
//
//	go build -tags tesseract ./cmd/ocr-service
package tesseract

import (
	"context"
	"errors"

	"github.com/FlintVSgamin/Codex-Continuum/internal/engine"
)

// ErrNotEnabled is returned when Tesseract support was not compiled in
var ErrNotEnabled = errors.New("tesseract support not enabled; rebuild with -tags tesseract")

// Enabled reports whether Tesseract support was compiled in
const Enabled = false

// Tesseract is a stub recognizer
type Tesseract struct{}

// New returns the stub recognizer
func New(tessdataPrefix string) *Tesseract {
	return &Tesseract{}
}

// Recognize always fails with ErrNotEnabled
func (t *Tesseract) Recognize(ctx context.Context, image []byte, opts engine.Options) (string, error) {
	return "", ErrNotEnabled
}
