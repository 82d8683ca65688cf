//go:build tesseract

// Package tesseract recognizes page images with the Tesseract engine through
// gosseract. It requires libtesseract and the language's traineddata, and is
// only compiled with the "tesseract" build tag:
//
//	go build -tags tesseract ./cmd/ocr-service
package tesseract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/FlintVSgamin/Codex-Continuum/internal/engine"
	"github.com/FlintVSgamin/Codex-Continuum/internal/ocr"
)

// Enabled reports whether Tesseract support was compiled in
const Enabled = true

// Tesseract implements engine.Recognizer
type Tesseract struct {
	tessdataPrefix string
}

// New creates a Tesseract recognizer. tessdataPrefix overrides the
// traineddata location when set.
func New(tessdataPrefix string) *Tesseract {
	return &Tesseract{tessdataPrefix: tessdataPrefix}
}

// Recognize runs Tesseract on one page image
func (t *Tesseract) Recognize(ctx context.Context, image []byte, opts engine.Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if t.tessdataPrefix != "" {
		client.TessdataPrefix = t.tessdataPrefix
	}

	lang := opts.Lang
	if lang == "" {
		lang = ocr.DefaultLang
	}
	if err := client.SetLanguage(lang); err != nil {
		return "", fmt.Errorf("setting language %q: %w", lang, err)
	}

	psm := opts.PSM
	if psm == ocr.PSMAuto {
		psm = ocr.PSMSingleBlock
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(psm)); err != nil {
		return "", fmt.Errorf("setting page segmentation mode %d: %w", psm, err)
	}

	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract OCR failed: %w", err)
	}
	return text, nil
}
