package main

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/FlintVSgamin/Codex-Continuum/internal/engine"
	"github.com/FlintVSgamin/Codex-Continuum/internal/engine/tesseract"
	"github.com/FlintVSgamin/Codex-Continuum/internal/ocr"
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

	flags := ff.NewFlagSet("ocr-service")
	var (
		port        = flags.IntLong("port", 8000, "HTTP server port")
		tessdata    = flags.StringLong("tessdata", "", "Tesseract traineddata directory (defaults to TESSDATA_PREFIX)")
		krakenBin   = flags.StringLong("kraken-bin", "kraken", "Kraken executable; empty disables the kraken engine")
		scratchPath = flags.StringLong("scratch", "", "Scratch directory for engines that read from disk")
		origins     = flags.StringLong("origins", strings.Join(engine.DefaultOrigins, ","), "Allowed CORS origins, comma separated")
		maxUploadMB = flags.IntLong("max-upload-mb", 50, "Maximum upload size in megabytes")
		showVersion = flags.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(flags, os.Args[1:],
		ff.WithEnvVarPrefix("CODEX_OCR"),
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

	recognizers := map[ocr.Engine]engine.Recognizer{}

	if tesseract.Enabled {
		recognizers[ocr.EngineTesseract] = tesseract.New(*tessdata)
	} else {
		slog.Warn("Tesseract support not compiled in, engine disabled", "rebuild", "go build -tags tesseract")
	}

	if *krakenBin != "" {
		if path, err := exec.LookPath(*krakenBin); err != nil {
			slog.Warn("Kraken not found, engine disabled", "binary", *krakenBin, "error", err)
		} else {
			slog.Info("Initializing storage...")
			store, err := engine.NewLocalStorage(*scratchPath)
			if err != nil {
				slog.Error("Failed to initialize storage", "error", err)
				os.Exit(1)
			}
			recognizers[ocr.EngineKraken] = engine.NewKraken(path, store)
		}
	}

	if len(recognizers) == 0 {
		slog.Error("No OCR engine available")
		os.Exit(1)
	}

	var allowed []string
	for _, o := range strings.Split(*origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}

	service := engine.NewService(recognizers)
	server := engine.NewServer(service, allowed, int64(*maxUploadMB)<<20)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
