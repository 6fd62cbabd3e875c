package ocr

import (
	"context"
	"fmt"
	"log/slog"
)

// Reader recovers page text from a scanned PDF by rasterizing each page,
// binarizing the scan, and running it through the recognition engine.
type Reader struct {
	rasterizer *Rasterizer
	engine     Engine
	threshold  uint8
	logger     *slog.Logger
}

func NewReader(rasterizer *Rasterizer, engine Engine, threshold uint8, logger *slog.Logger) *Reader {
	return &Reader{
		rasterizer: rasterizer,
		engine:     engine,
		threshold:  threshold,
		logger:     logger,
	}
}

// PageTexts returns the recognized text of every page in document order.
// A rasterization or recognition failure aborts the whole run; partial
// OCR output is worse than a clear error.
func (r *Reader) PageTexts(ctx context.Context, path string) ([]string, error) {
	images, err := r.rasterizer.Render(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to rasterize %s: %w", path, err)
	}
	r.logger.Info("Converting PDF pages to images for OCR", slog.Int("pages", len(images)))

	texts := make([]string, 0, len(images))
	for i, img := range images {
		r.logger.Info("Running OCR", slog.Int("page", i+1), slog.Int("total", len(images)))
		text, err := r.engine.Recognize(ctx, Preprocess(img, r.threshold))
		if err != nil {
			return nil, fmt.Errorf("OCR failed on page %d: %w", i+1, err)
		}
		texts = append(texts, text)
	}
	return texts, nil
}
