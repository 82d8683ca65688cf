package engine

import (
	"context"

	"github.com/FlintVSgamin/Codex-Continuum/internal/ocr"
)

// Options are the per-request recognition settings
type Options struct {
	PSM   ocr.PSM
	Lang  string
	Model string
}

// Recognizer extracts text from a single PNG page image
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, opts Options) (string, error)
}
