package ocr

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Engine turns a page image into plain text.
type Engine interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// TesseractEngine shells out to the tesseract binary. The binary must be
// on PATH or configured explicitly.
type TesseractEngine struct {
	Binary string
	Lang   string
}

func NewTesseractEngine(binary, lang string) *TesseractEngine {
	if binary == "" {
		binary = "tesseract"
	}
	if lang == "" {
		lang = "eng"
	}
	return &TesseractEngine{Binary: binary, Lang: lang}
}

func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image) (string, error) {
	dir, err := os.MkdirTemp("", "ocr-page-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "page.png")
	f, err := os.Create(src)
	if err != nil {
		return "", fmt.Errorf("failed to create temp image: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to encode temp image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write temp image: %w", err)
	}

	cmd := exec.CommandContext(ctx, e.Binary, src, "stdout", "-l", e.Lang)
	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return "", fmt.Errorf("tesseract failed: %s: %w", strings.TrimSpace(string(ee.Stderr)), err)
		}
		return "", fmt.Errorf("tesseract failed: %w", err)
	}
	return string(out), nil
}
