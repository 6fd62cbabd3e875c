package ocr

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocess(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 250, G: 250, B: 250, A: 255}) // paper
	src.SetNRGBA(1, 0, color.NRGBA{R: 20, G: 20, B: 20, A: 255})    // ink

	out := Preprocess(src, 150)

	assert.Equal(t, uint8(255), out.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(0), out.GrayAt(1, 0).Y)
}

func TestPreprocess_ThresholdSplitsGrays(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 160, G: 160, B: 160, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{R: 140, G: 140, B: 140, A: 255})

	out := Preprocess(src, 150)

	assert.Equal(t, uint8(255), out.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(0), out.GrayAt(1, 0).Y)
}

type stubEngine struct {
	texts []string
	calls int
	err   error
}

func (s *stubEngine) Recognize(_ context.Context, _ image.Image) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	text := s.texts[s.calls]
	s.calls++
	return text, nil
}

func TestReader_RasterizeFailureAborts(t *testing.T) {
	r := NewReader(
		NewRasterizer("pdftoppm-that-does-not-exist", 72),
		&stubEngine{},
		150,
		slog.New(slog.DiscardHandler),
	)

	_, err := r.PageTexts(context.Background(), "missing.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to rasterize")
}
