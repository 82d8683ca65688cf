package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FlintVSgamin/Codex-Continuum/internal/ocr"
	"github.com/FlintVSgamin/Codex-Continuum/internal/translation"
)

var (
	ErrNoFile          = errors.New("no file selected")
	ErrBusy            = errors.New("a run is already processing")
	ErrEmptyFile       = errors.New("file is empty")
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file is too large")
)

// DefaultMaxFileSize bounds accepted uploads
const DefaultMaxFileSize = int64(50 << 20)

// IDGenerator generates run identifiers
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Config holds the session's tunables
type Config struct {
	Defaults    ocr.Defaults
	Extensions  ocr.Extensions
	MaxFileSize int64
}

// Session owns the selected file and the status of the OCR workflow
type Session struct {
	submitter   ocr.Submitter
	translator  translation.Translator
	cfg         Config
	idGenerator IDGenerator
	timeSource  TimeSource

	mu     sync.Mutex
	file   *ocr.SelectedFile
	status Status
}

// New creates a Session with a uuid run ID generator and the wall clock.
// translator may be nil, in which case results keep a pending translation.
func New(submitter ocr.Submitter, translator translation.Translator, cfg Config) *Session {
	return NewWithDeps(submitter, translator, cfg, &uuidGenerator{}, &defaultTimeSource{})
}

// NewWithDeps creates a Session with custom dependencies for testing
func NewWithDeps(submitter ocr.Submitter, translator translation.Translator, cfg Config, idGen IDGenerator, timeSrc TimeSource) *Session {
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = ocr.DefaultExtensions
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	return &Session{
		submitter:   submitter,
		translator:  translator,
		cfg:         cfg,
		idGenerator: idGen,
		timeSource:  timeSrc,
		status:      Status{State: StateIdle, Since: timeSrc.Now()},
	}
}

// Config returns the session configuration
func (s *Session) Config() Config {
	return s.cfg
}

// Status returns a snapshot of the current status
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// File returns the selected file, or nil
func (s *Session) File() *ocr.SelectedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file
}

// SelectFile replaces the selected file and resets the status to idle,
// discarding any previous result or error. It is refused while a run is
// processing.
func (s *Session) SelectFile(name string, data []byte) (*ocr.SelectedFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.State == StateProcessing {
		return nil, ErrBusy
	}

	if !s.cfg.Extensions.Accepts(name) {
		return nil, fmt.Errorf("%w: %q (accepted: %s)", ErrUnsupportedFile, name, s.cfg.Extensions)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(data)) > s.cfg.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, len(data), s.cfg.MaxFileSize)
	}

	file := ocr.NewSelectedFile(name, data)
	s.file = file
	s.status = Reduce(s.status, FileSelected{At: s.timeSource.Now()})

	slog.Info("File selected", "filename", file.Name, "size", file.Size, "kind", file.Kind)
	return file, nil
}

// RunRequest carries the user's choices for one run
type RunRequest struct {
	// Engine overrides the configured engine when set
	Engine ocr.Engine
	// PSM is the user's mode, or ocr.PSMAuto
	PSM ocr.PSM
}

// Run is an accepted run waiting to be completed
type Run struct {
	ID     string
	File   *ocr.SelectedFile
	Params ocr.Params
}

// Begin moves the session into processing and resolves the parameters for a
// run. Any previous result is cleared immediately.
func (s *Session) Begin(req RunRequest) (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.State == StateProcessing {
		return nil, ErrBusy
	}
	if s.file == nil {
		return nil, ErrNoFile
	}

	id := s.idGenerator.Generate()
	s.status = Reduce(s.status, RunRequested{RunID: id, HasFile: true, At: s.timeSource.Now()})

	defaults := s.cfg.Defaults
	if req.Engine != "" {
		defaults.Engine = req.Engine
	}

	return &Run{
		ID:     id,
		File:   s.file,
		Params: ocr.Resolve(s.file, req.PSM, defaults),
	}, nil
}

// Complete submits the run's file, normalizes the reply and records the
// outcome. The outcome is dropped if the run is no longer the one processing.
func (s *Session) Complete(ctx context.Context, run *Run) Status {
	start := s.timeSource.Now()

	reply, err := s.submitter.Submit(ctx, run.File, run.Params)
	if err != nil {
		slog.Error("OCR run failed",
			"run_id", run.ID,
			"filename", run.File.Name,
			"error", err,
		)
		return s.finish(RunFailed{RunID: run.ID, Message: err.Error(), At: s.timeSource.Now()})
	}

	result := ocr.Normalize(reply)
	s.translate(ctx, run, result)

	slog.Info("OCR run finished",
		"run_id", run.ID,
		"filename", run.File.Name,
		"pages", len(result.Pages),
		"elapsed", s.timeSource.Now().Sub(start),
	)
	return s.finish(RunSucceeded{RunID: run.ID, Result: result, At: s.timeSource.Now()})
}

// Run begins and completes a run, blocking until the outcome is recorded
func (s *Session) Run(ctx context.Context, req RunRequest) (Status, error) {
	run, err := s.Begin(req)
	if err != nil {
		return s.Status(), err
	}
	return s.Complete(ctx, run), nil
}

func (s *Session) finish(ev Event) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = Reduce(s.status, ev)
	return s.status
}

// translate fills in the result's translation when a translator is
// configured. Failures leave the translation pending.
func (s *Session) translate(ctx context.Context, run *Run, result *ocr.Result) {
	if s.translator == nil || strings.TrimSpace(result.RawText) == "" {
		return
	}
	english, err := s.translator.Translate(ctx, result.RawText)
	if err != nil {
		slog.Warn("Translation failed", "run_id", run.ID, "error", err)
		return
	}
	result.Translation = ocr.TranslationOf(english)
}
