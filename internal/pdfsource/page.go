package pdfsource

import (
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/FACorreiaa/bank-statement-converter/internal/domain/extract"
)

const (
	// rowTolerance groups glyphs whose baselines sit within this many
	// points into the same text row.
	rowTolerance = 3.0

	// wordGapFactor and columnGapFactor are multiples of the glyph font
	// size: a horizontal gap beyond the first is a word break, beyond the
	// second a column break rendered as a double space so the column
	// splitter can see it.
	wordGapFactor   = 0.3
	columnGapFactor = 2.0

	// thinEdge is the maximum thickness for a filled rectangle to count
	// as a drawn rule rather than a box.
	thinEdge = 1.0
)

// page adapts one PDF page to extract.Page. All vertical coordinates are
// converted to top-based form (smaller y = higher on the page) so band
// ordering matches reading order.
type page struct {
	file   *File
	number int
	height float64

	glyphs []pdf.Text
	rects  []pdf.Rect

	text     string
	textOnce bool
}

func newPage(f *File, p pdf.Page, number int) *page {
	content := p.Content()
	return &page{
		file:   f,
		number: number,
		height: pageHeight(p),
		glyphs: content.Text,
		rects:  content.Rect,
	}
}

// pageHeight resolves the MediaBox height, walking up the page tree when the
// box is inherited. Falls back to US Letter.
func pageHeight(p pdf.Page) float64 {
	v := p.V
	for !v.IsNull() {
		if box := v.Key("MediaBox"); !box.IsNull() && box.Len() == 4 {
			return box.Index(3).Float64() - box.Index(1).Float64()
		}
		v = v.Key("Parent")
	}
	return 792
}

func (p *page) top(y float64) float64 {
	return p.height - y
}

// Text implements extract.Page. The decoded glyph stream is assembled into
// layout-preserving lines; when the result is mostly unreadable (custom font
// encodings the reader cannot decode) the external pdftotext fallback is
// tried before giving up.
func (p *page) Text() (string, error) {
	if p.textOnce {
		return p.text, nil
	}

	text := p.assemble(p.glyphs)
	if !readable(text) && p.file.pdftotext != "" {
		fallback, err := pdftotextPage(p.file.pdftotext, p.file.path, p.number)
		if err != nil {
			p.file.logger.Warn("pdftotext fallback failed", "page", p.number, "error", err)
		} else if readable(fallback) {
			text = fallback
		}
	}

	p.text = text
	p.textOnce = true
	return text, nil
}

// Rules implements extract.Page: every thin filled rectangle on the page,
// reduced to its vertical extent in top-based coordinates.
func (p *page) Rules() []extract.Rule {
	var rules []extract.Rule
	for _, r := range p.rects {
		if math.Abs(r.Max.Y-r.Min.Y) > thinEdge {
			continue
		}
		rules = append(rules, extract.Rule{Y0: p.top(r.Min.Y), Y1: p.top(r.Max.Y)})
	}
	return rules
}

// CropText implements extract.Page: the page's text restricted to the
// horizontal band [top, bottom), full page width.
func (p *page) CropText(top, bottom float64) (string, error) {
	var band []pdf.Text
	for _, g := range p.glyphs {
		y := p.top(g.Y)
		if y >= top && y < bottom {
			band = append(band, g)
		}
	}
	return p.assemble(band), nil
}

// assemble turns a glyph set into text lines: glyphs are grouped into rows
// by baseline, rows ordered top to bottom, and glyphs within a row joined
// with spacing proportional to their horizontal gaps.
func (p *page) assemble(glyphs []pdf.Text) string {
	if len(glyphs) == 0 {
		return ""
	}

	sorted := make([]pdf.Text, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		yi, yj := p.top(sorted[i].Y), p.top(sorted[j].Y)
		if math.Abs(yi-yj) > rowTolerance {
			return yi < yj
		}
		return sorted[i].X < sorted[j].X
	})

	var sb strings.Builder
	rowY := p.top(sorted[0].Y)
	lastEnd := math.Inf(-1)
	for i, g := range sorted {
		y := p.top(g.Y)
		if i > 0 && math.Abs(y-rowY) > rowTolerance {
			sb.WriteByte('\n')
			rowY = y
			lastEnd = math.Inf(-1)
		}

		if !math.IsInf(lastEnd, -1) {
			gap := g.X - lastEnd
			size := g.FontSize
			if size <= 0 {
				size = 10
			}
			switch {
			case gap > size*columnGapFactor:
				sb.WriteString("  ")
			case gap > size*wordGapFactor:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(g.S)
		lastEnd = g.X + g.W
	}
	return sb.String()
}
