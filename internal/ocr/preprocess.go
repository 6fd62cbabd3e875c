package ocr

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

const defaultBinarizeThreshold = 150

// Preprocess converts a page scan to a high-contrast black and white
// image. Binarization strips scanner noise and paper tint that otherwise
// degrade character recognition.
func Preprocess(img image.Image, threshold uint8) *image.Gray {
	if threshold == 0 {
		threshold = defaultBinarizeThreshold
	}
	gray := imaging.Grayscale(img)

	bounds := gray.Bounds()
	out := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			// Grayscale output is NRGBA with equal channels.
			v := gray.NRGBAAt(x, y).R
			if v > threshold {
				v = 255
			} else {
				v = 0
			}
			out.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return out
}
