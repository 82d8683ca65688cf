package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/FlintVSgamin/Codex-Continuum/internal/ocr"
)

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// writeJSON encodes v with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError writes {"error": message}
func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}

type fileView struct {
	Name   string   `json:"name"`
	Size   int64    `json:"size"`
	SizeKB int64    `json:"size_kb"`
	Kind   ocr.Kind `json:"kind"`
}

type resultView struct {
	*ocr.Result
	Duration  string `json:"duration"`
	PageCount int    `json:"page_count"`
}

type statusView struct {
	State   string      `json:"state"`
	Text    string      `json:"text"`
	RunID   string      `json:"run_id,omitempty"`
	Message string      `json:"message,omitempty"`
	Since   time.Time   `json:"since"`
	CanRun  bool        `json:"can_run"`
	File    *fileView   `json:"file,omitempty"`
	Result  *resultView `json:"result,omitempty"`
}

func newFileView(f *ocr.SelectedFile) *fileView {
	if f == nil {
		return nil
	}
	return &fileView{Name: f.Name, Size: f.Size, SizeKB: f.SizeKB(), Kind: f.Kind}
}

func (s *Server) statusView() statusView {
	status := s.session.Status()
	file := s.session.File()
	view := statusView{
		State:   status.State.String(),
		Text:    status.Text(),
		RunID:   status.RunID,
		Message: status.Message,
		Since:   status.Since,
		CanRun:  status.CanRun() && file != nil,
		File:    newFileView(file),
	}
	if status.Result != nil {
		view.Result = &resultView{
			Result:    status.Result,
			Duration:  status.Result.DisplayDuration(),
			PageCount: status.Result.DisplayPageCount(),
		}
	}
	return view
}

// handleIndex serves the HTML interface
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleConfig describes the options the interface may offer
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.session.Config()
	engine := cfg.Defaults.Engine
	if engine == "" {
		engine = ocr.EngineTesseract
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"extensions":     cfg.Extensions,
		"accept":         cfg.Extensions.String(),
		"engines":        []ocr.Engine{ocr.EngineTesseract, ocr.EngineKraken},
		"default_engine": engine,
		"lang":           cfg.Defaults.Lang,
		"max_file_size":  cfg.MaxFileSize,
		"psm_options": []map[string]string{
			{"value": "", "label": "auto"},
			{"value": "7", "label": "7 (single line)"},
			{"value": "6", "label": "6 (block/paragraph)"},
		},
	})
}

// handleStatus returns the current status, file and result
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.statusView())
}

// handleSelectFile accepts a file upload as the new selection
func (s *Server) handleSelectFile(w http.ResponseWriter, r *http.Request) {
	maxSize := s.session.Config().MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+(1<<20))
	if err := r.ParseMultipartForm(maxSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File is too large.")
			return
		}
		writeError(w, http.StatusBadRequest, "Error parsing form")
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file was selected. Please choose a file to upload.")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeError(w, http.StatusInternalServerError, "Error reading file. Please try again.")
		return
	}

	file, err := s.session.SelectFile(header.Filename, data)
	if err != nil {
		code := http.StatusBadRequest
		switch {
		case errors.Is(err, ErrBusy):
			code = http.StatusConflict
		case errors.Is(err, ErrFileTooLarge):
			code = http.StatusRequestEntityTooLarge
		}
		writeError(w, code, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, newFileView(file))
}

// handleRun starts a run in the background and returns immediately
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Engine string `json:"engine"`
		PSM    string `json:"psm"`
	}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	} else {
		in.Engine = r.FormValue("engine")
		in.PSM = r.FormValue("psm")
	}

	var req RunRequest
	if in.Engine != "" {
		engine, err := ocr.ParseEngine(in.Engine)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.Engine = engine
	}
	psm, err := ocr.ParsePSM(in.PSM)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.PSM = psm

	run, err := s.session.Begin(req)
	if err != nil {
		code := http.StatusBadRequest
		if errors.Is(err, ErrBusy) {
			code = http.StatusConflict
		}
		writeError(w, code, err.Error())
		return
	}

	view := s.statusView()
	go s.session.Complete(context.Background(), run)

	writeJSON(w, http.StatusAccepted, view)
}
