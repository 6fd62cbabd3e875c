package ocr

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// Rasterizer renders PDF pages to images with pdftoppm.
type Rasterizer struct {
	Binary string
	DPI    int
}

func NewRasterizer(binary string, dpi int) *Rasterizer {
	if binary == "" {
		binary = "pdftoppm"
	}
	if dpi <= 0 {
		dpi = 300
	}
	return &Rasterizer{Binary: binary, DPI: dpi}
}

// Render rasterizes every page of the PDF at path and returns the page
// images in document order.
func (r *Rasterizer) Render(ctx context.Context, path string) ([]image.Image, error) {
	dir, err := os.MkdirTemp("", "ocr-raster-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, r.Binary, "-png", "-r", strconv.Itoa(r.DPI), path, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %s: %w", strings.TrimSpace(string(out)), err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list rendered pages: %w", err)
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".png") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no pages for %s", path)
	}
	// pdftoppm zero-pads page numbers, so lexical order is page order.
	sort.Strings(names)

	images := make([]image.Image, 0, len(names))
	for _, name := range names {
		img, err := imaging.Open(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read rendered page %s: %w", name, err)
		}
		images = append(images, img)
	}
	return images, nil
}
