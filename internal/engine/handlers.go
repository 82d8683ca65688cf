package engine

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/FlintVSgamin/Codex-Continuum/internal/ocr"
)

// writeJSON encodes v with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeDetail writes the {"detail": message} failure body
func writeDetail(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"detail": message})
}

// handlePing reports liveness
func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleOCR recognizes an uploaded image or PDF
func (s *Server) handleOCR(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxFormSize+(1<<20))
	if err := r.ParseMultipartForm(s.maxFormSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "file is too large")
			return
		}
		writeDetail(w, http.StatusBadRequest, "error parsing form")
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "file is required")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeDetail(w, http.StatusInternalServerError, "error reading file")
		return
	}

	engine, err := ocr.ParseEngine(r.FormValue("engine"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	psmValue := r.FormValue("psm")
	if _, present := r.MultipartForm.Value["psm"]; !present {
		psmValue = ocr.PSMSingleBlock.String()
	}
	psm, err := ocr.ParsePSM(psmValue)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if psm == ocr.PSMAuto {
		psm = ocr.Resolve(ocr.NewSelectedFile(header.Filename, nil), ocr.PSMAuto, ocr.Defaults{}).PSM
	}

	lang := strings.TrimSpace(r.FormValue("lang"))
	if lang == "" {
		lang = ocr.DefaultLang
	}

	reply, err := s.service.Recognize(r.Context(), Request{
		Filename:    filepath.Base(header.Filename),
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
		Engine:      engine,
		PSM:         psm,
		Lang:        lang,
		Model:       r.FormValue("kraken_model"),
	})
	if err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, ErrUnsupportedEngine):
			code = http.StatusBadRequest
		case errors.Is(err, ErrUndecodable):
			code = http.StatusUnprocessableEntity
		}
		writeDetail(w, code, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, reply)
}
