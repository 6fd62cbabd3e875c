package pdfsource

import (
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// snapTolerance merges rule coordinates that differ by less than this many
// points into one grid line.
const snapTolerance = 2.0

// Tables implements extract.Page: native table grids delimited by the
// document's own drawn lines. A grid needs at least three horizontal and
// three vertical rules (two rows by two columns of cells); anything less
// returns nil and the caller falls back to heuristic extraction.
func (p *page) Tables() [][][]string {
	var hs, vs []float64
	for _, r := range p.rects {
		w := math.Abs(r.Max.X - r.Min.X)
		h := math.Abs(r.Max.Y - r.Min.Y)
		switch {
		case h <= thinEdge && w > thinEdge:
			hs = append(hs, p.top(r.Min.Y))
		case w <= thinEdge && h > thinEdge:
			vs = append(vs, r.Min.X)
		}
	}

	rows := snap(hs)
	cols := snap(vs)
	if len(rows) < 3 || len(cols) < 3 {
		return nil
	}

	grid := make([][]string, 0, len(rows)-1)
	nonEmpty := 0
	for i := 0; i+1 < len(rows); i++ {
		cells := make([]string, 0, len(cols)-1)
		for j := 0; j+1 < len(cols); j++ {
			text := p.cellText(cols[j], cols[j+1], rows[i], rows[i+1])
			if text != "" {
				nonEmpty++
			}
			cells = append(cells, text)
		}
		grid = append(grid, cells)
	}

	// A grid of drawn lines with almost no text inside is a decorative
	// frame, not a table.
	if nonEmpty < len(grid) {
		return nil
	}
	return [][][]string{grid}
}

// cellText gathers the glyphs inside one cell, in reading order.
func (p *page) cellText(x0, x1, top, bottom float64) string {
	var cell []pdf.Text
	for _, g := range p.glyphs {
		y := p.top(g.Y)
		if y < top || y >= bottom || g.X < x0 || g.X >= x1 {
			continue
		}
		cell = append(cell, g)
	}
	sort.SliceStable(cell, func(i, j int) bool {
		yi, yj := p.top(cell[i].Y), p.top(cell[j].Y)
		if math.Abs(yi-yj) > rowTolerance {
			return yi < yj
		}
		return cell[i].X < cell[j].X
	})

	var sb strings.Builder
	last := math.Inf(-1)
	for _, g := range cell {
		if !math.IsInf(last, -1) && g.X-last > g.FontSize*wordGapFactor {
			sb.WriteByte(' ')
		}
		sb.WriteString(g.S)
		last = g.X + g.W
	}
	return strings.TrimSpace(sb.String())
}

// snap sorts coordinates and merges near-duplicates.
func snap(coords []float64) []float64 {
	if len(coords) == 0 {
		return nil
	}
	sort.Float64s(coords)
	merged := []float64{coords[0]}
	for _, c := range coords[1:] {
		if c-merged[len(merged)-1] > snapTolerance {
			merged = append(merged, c)
		}
	}
	return merged
}
