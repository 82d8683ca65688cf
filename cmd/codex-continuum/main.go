package main

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/FlintVSgamin/Codex-Continuum/internal/ocr"
	"github.com/FlintVSgamin/Codex-Continuum/internal/session"
	"github.com/FlintVSgamin/Codex-Continuum/internal/translation"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	flags := ff.NewFlagSet("codex-continuum")
	var (
		port        = flags.IntLong("port", 8080, "HTTP server port")
		endpoint    = flags.StringLong("endpoint", ocr.DefaultEndpoint, "OCR service endpoint")
		lang        = flags.StringLong("lang", ocr.DefaultLang, "Tesseract language code(s), e.g. lat or lat+eng")
		engineName  = flags.StringLong("engine", string(ocr.EngineTesseract), "Default OCR engine: 'tesseract' or 'kraken'")
		krakenModel = flags.StringLong("kraken-model", "", "Kraken recognition model (optional)")
		extensions  = flags.StringLong("extensions", ocr.DefaultExtensions.String(), "Accepted file extensions, comma separated")
		maxUploadMB = flags.IntLong("max-upload-mb", 50, "Maximum upload size in megabytes")
		timeout     = flags.DurationLong("timeout", 5*time.Minute, "OCR request timeout")
		translator  = flags.StringLong("translator", "none", "Translator: 'none', 'gemini' or 'ollama'")
		geminiKey   = flags.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel = flags.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL   = flags.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel = flags.StringLong("ollama-model", "llama3.1", "Ollama model name")
		authUser    = flags.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass    = flags.StringLong("auth-pass", "", "Basic auth password (optional)")
		showVersion = flags.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(flags, os.Args[1:],
		ff.WithEnvVarPrefix("CODEX"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(flags))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	engine, err := ocr.ParseEngine(*engineName)
	if err != nil {
		slog.Error("Invalid engine", "error", err)
		os.Exit(1)
	}

	exts, err := ocr.ParseExtensions(*extensions)
	if err != nil {
		slog.Error("Invalid extensions", "error", err)
		os.Exit(1)
	}

	// Initialize translator based on type
	var tr translation.Translator
	switch *translator {
	case "none", "":
		slog.Info("Translation disabled")
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini translator...", "model", *geminiModel)
		tr, err = translation.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	case "ollama":
		slog.Info("Initializing Ollama translator...", "url", *ollamaURL, "model", *ollamaModel)
		tr, err = translation.NewOllama(*ollamaURL, *ollamaModel)
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Invalid translator type", "type", *translator, "valid", "none, gemini or ollama")
		os.Exit(1)
	}
	if tr != nil {
		defer tr.Close()
	}

	submitter := ocr.NewHTTPSubmitter(*endpoint, *timeout)
	slog.Info("Using OCR service", "endpoint", submitter.Endpoint())

	sess := session.New(submitter, tr, session.Config{
		Defaults: ocr.Defaults{
			Engine:      engine,
			Lang:        *lang,
			KrakenModel: *krakenModel,
		},
		Extensions:  exts,
		MaxFileSize: int64(*maxUploadMB) << 20,
	})

	basicAuth := session.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := session.NewServer(sess, basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
