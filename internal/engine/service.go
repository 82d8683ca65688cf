package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/FlintVSgamin/Codex-Continuum/internal/ocr"
)

// ErrUnsupportedEngine means no recognizer is registered for the engine
var ErrUnsupportedEngine = errors.New("unsupported engine")

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Request is one document to recognize
type Request struct {
	Filename    string
	ContentType string
	Data        []byte
	Engine      ocr.Engine
	PSM         ocr.PSM
	Lang        string
	Model       string
}

// Service recognizes uploaded documents with the registered engines
type Service struct {
	recognizers map[ocr.Engine]Recognizer
	timeSource  TimeSource
}

// NewService creates a new Service with the wall clock
func NewService(recognizers map[ocr.Engine]Recognizer) *Service {
	return NewServiceWithDeps(recognizers, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(recognizers map[ocr.Engine]Recognizer, timeSrc TimeSource) *Service {
	return &Service{
		recognizers: recognizers,
		timeSource:  timeSrc,
	}
}

// Engines lists the registered engines
func (s *Service) Engines() []ocr.Engine {
	engines := make([]ocr.Engine, 0, len(s.recognizers))
	for _, e := range []ocr.Engine{ocr.EngineTesseract, ocr.EngineKraken} {
		if _, ok := s.recognizers[e]; ok {
			engines = append(engines, e)
		}
	}
	return engines
}

// Recognize renders the document's pages, recognizes each one and joins the
// texts with the page separator
func (s *Service) Recognize(ctx context.Context, req Request) (*ocr.Reply, error) {
	recognizer, ok := s.recognizers[req.Engine]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEngine, req.Engine)
	}

	start := s.timeSource.Now()

	pages, err := preparePages(req.Data, req.ContentType, req.Filename)
	if err != nil {
		return nil, err
	}

	opts := Options{PSM: req.PSM, Lang: req.Lang, Model: req.Model}
	texts := make([]string, 0, len(pages))
	for i, page := range pages {
		text, err := recognizer.Recognize(ctx, page, opts)
		if err != nil {
			slog.Error("Failed to recognize page",
				"filename", req.Filename,
				"engine", req.Engine,
				"page", i+1,
				"error", err,
			)
			return nil, fmt.Errorf("recognizing page %d: %w", i+1, err)
		}
		texts = append(texts, text)
	}

	duration := float64(s.timeSource.Now().Sub(start).Milliseconds())
	pageCount := len(pages)

	slog.Info("Recognized document",
		"filename", req.Filename,
		"engine", req.Engine,
		"psm", req.PSM.String(),
		"lang", req.Lang,
		"pages", pageCount,
		"duration_ms", duration,
	)

	return &ocr.Reply{
		Engine: string(req.Engine),
		Lang:   req.Lang,
		Text:   strings.Join(texts, ocr.PageSeparator),
		Meta:   &ocr.Meta{DurationMs: &duration, Pages: &pageCount},
	}, nil
}
