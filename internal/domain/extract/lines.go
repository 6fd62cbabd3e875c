package extract

import (
	"log/slog"
	"math"
	"sort"
)

// Horizontal rules drawn at a slight slant are artifacts, not row
// separators.
const ruleTolerance = 1.0

// minRules is the smallest rule count that can bound a table: a header band
// and at least one data band need three lines.
const minRules = 3

// LineTableStrategy recovers a table from a page whose rows are separated by
// drawn horizontal rules. It crops the band between each adjacent pair of
// rules and splits the band's text into columns; the first band is the
// header.
type LineTableStrategy struct {
	logger *slog.Logger
}

// NewLineTableStrategy creates a rule-band table extractor.
func NewLineTableStrategy(logger *slog.Logger) *LineTableStrategy {
	return &LineTableStrategy{logger: logger}
}

// Name implements Strategy.
func (*LineTableStrategy) Name() string { return "rule-bands" }

// Extract implements Strategy. Every failure mode here is soft: a page
// without enough rules, a crop error, or a ragged row all mean "no table"
// and hand control to the next strategy.
func (s *LineTableStrategy) Extract(page Page) (*RawTable, bool) {
	ys := horizontalRuleYs(page.Rules())
	if len(ys) < minRules {
		return nil, false
	}

	var rows [][]string
	for i := 0; i+1 < len(ys); i++ {
		text, err := page.CropText(ys[i], ys[i+1])
		if err != nil {
			s.logger.Warn("band crop failed", "strategy", s.Name(), "band", i, "error", err)
			return nil, false
		}
		if text == "" {
			continue
		}
		rows = append(rows, SplitColumns(text))
	}
	if len(rows) < 2 {
		return nil, false
	}

	header := rows[0]
	table := &RawTable{Columns: header}
	for _, cells := range rows[1:] {
		if len(cells) != len(header) {
			// Ragged band: the grid assumption does not hold.
			s.logger.Warn("band width mismatch", "strategy", s.Name(),
				"header_cols", len(header), "row_cols", len(cells))
			return nil, false
		}
		row := make(map[string]string, len(header))
		for i, label := range header {
			row[label] = cells[i]
		}
		table.Rows = append(table.Rows, row)
	}
	return table, true
}

// horizontalRuleYs keeps only true horizontal rules (both endpoints on the
// same y within tolerance) and returns their positions sorted ascending.
func horizontalRuleYs(rules []Rule) []float64 {
	var ys []float64
	for _, r := range rules {
		if math.Abs(r.Y0-r.Y1) < ruleTolerance {
			ys = append(ys, r.Y0)
		}
	}
	sort.Float64s(ys)
	return ys
}
