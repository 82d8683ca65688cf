package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync/atomic"
	"time"
)

// Kraken runs the kraken command line tool on a scratch copy of the page
type Kraken struct {
	binary  string
	storage Storage
	seq     atomic.Uint64
}

// NewKraken creates a Kraken recognizer. An empty binary means "kraken" on PATH.
func NewKraken(binary string, storage Storage) *Kraken {
	if binary == "" {
		binary = "kraken"
	}
	return &Kraken{binary: binary, storage: storage}
}

// Recognize segments the page by baseline and recognizes it. PSM and Lang
// do not apply to kraken; Model selects a recognition model.
func (k *Kraken) Recognize(ctx context.Context, image []byte, opts Options) (string, error) {
	name := fmt.Sprintf("kraken-%d-%d.png", time.Now().UnixNano(), k.seq.Add(1))
	saved, err := k.storage.Save(name, image)
	if err != nil {
		return "", fmt.Errorf("saving page: %w", err)
	}
	defer func() {
		if err := k.storage.Delete(saved); err != nil {
			slog.Warn("Failed to delete scratch file", "filename", saved, "error", err)
		}
	}()

	args := []string{"-i", k.storage.Path(saved), "-", "segment", "-bl", "ocr"}
	if opts.Model != "" {
		args = append(args, "-m", opts.Model)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, k.binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("running kraken: %w", err)
		}
		return "", fmt.Errorf("running kraken: %w: %s", err, msg)
	}

	return strings.ToValidUTF8(stdout.String(), ""), nil
}
