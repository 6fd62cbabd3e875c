package pdfsource

import (
	"fmt"
	"os/exec"
	"strconv"
	"unicode"
)

// readableThreshold separates real text from binary garbage: decoded pages
// of custom-font PDFs typically score below 0.4, real text above 0.7.
const readableThreshold = 0.5

// readable reports whether the text looks like recognizable statement
// content rather than mis-decoded glyphs.
func readable(text string) bool {
	if text == "" {
		return false
	}
	total, ok := 0, 0
	for _, r := range text {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) ||
			unicode.IsPunct(r) || r == '$' || r == '€' || r == '£' {
			ok++
		}
	}
	return float64(ok)/float64(total) >= readableThreshold
}

// pdftotextPage extracts one page's text with the external pdftotext tool,
// preserving layout so column spacing survives.
func pdftotextPage(bin, path string, pageNum int) (string, error) {
	p := strconv.Itoa(pageNum)
	out, err := exec.Command(bin, "-layout", "-f", p, "-l", p, path, "-").Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	return string(out), nil
}
