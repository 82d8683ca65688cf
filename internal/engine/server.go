package engine

import (
	"log/slog"
	"net/http"
	"regexp"
)

// DefaultOrigins are the development front ends allowed to call the service
var DefaultOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}

var localhostOrigin = regexp.MustCompile(`^http://localhost:\d+$`)

// Server exposes the recognition service over HTTP
type Server struct {
	service     *Service
	origins     map[string]bool
	maxFormSize int64
	mux         *http.ServeMux
}

// NewServer creates a new Server with default mux
func NewServer(service *Service, origins []string, maxFormSize int64) *Server {
	return NewServerWithMux(service, origins, maxFormSize, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(service *Service, origins []string, maxFormSize int64, mux *http.ServeMux) *Server {
	if len(origins) == 0 {
		origins = DefaultOrigins
	}
	if maxFormSize <= 0 {
		maxFormSize = 50 << 20
	}
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	s := &Server{
		service:     service,
		origins:     allowed,
		maxFormSize: maxFormSize,
		mux:         mux,
	}
	s.registerRoutes()
	return s
}

// originAllowed accepts configured origins and any localhost port
func (s *Server) originAllowed(origin string) bool {
	return s.origins[origin] || s.origins["*"] || localhostOrigin.MatchString(origin)
}

// setCORSHeaders echoes an allowed origin back with credentials enabled
func (s *Server) setCORSHeaders(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	w.Header().Add("Vary", "Origin")
	if origin == "" || !s.originAllowed(origin) {
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Credentials", "true")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "*")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// corsMiddleware adds CORS headers and answers preflight requests
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.setCORSHeaders(w, r)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /ping", s.handlePing)
	s.mux.HandleFunc("POST /ocr", s.handleOCR)
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	slog.Info("Starting OCR service", "address", addr, "engines", s.service.Engines())
	return http.ListenAndServe(addr, s)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.corsMiddleware(s.mux).ServeHTTP(w, r)
}
