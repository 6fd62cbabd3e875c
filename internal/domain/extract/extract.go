// Package extract recovers tabular transaction data from statement pages.
// It implements a cascade of strategies: native table grids, horizontal-rule
// band extraction, and pattern-based row detection, plus column inference
// for OCR-recognized text.
package extract

import (
	"log/slog"
)

// Canonical field names shared across strategies.
const (
	ColDate        = "Date"
	ColDescription = "Description"
	ColAmount      = "Amount"
	ColBalance     = "Balance"
)

// Rule is a line segment drawn on a page, reduced to its vertical extent.
// Coordinates are top-based: smaller Y means higher on the page.
type Rule struct {
	Y0 float64
	Y1 float64
}

// Page is the slice of a source document the extraction strategies need.
// Implementations are expected to be cheap to call repeatedly.
type Page interface {
	// Text returns the page's recognized text, lines separated by '\n'.
	Text() (string, error)

	// Tables returns native table grids detected on the page (header row
	// first), or nil when the document provides none.
	Tables() [][][]string

	// Rules returns candidate horizontal rule segments on the page.
	Rules() []Rule

	// CropText returns the text inside the horizontal band [top, bottom),
	// full page width.
	CropText(top, bottom float64) (string, error)
}

// RawTable is one extracted table before schema normalization. Row values
// are keyed by the (not yet canonical) column labels; provenance is carried
// as Page/Table columns inside each row, mirroring how the merged record
// set is later stripped.
type RawTable struct {
	Columns []string
	Rows    []map[string]string
}

// Strategy tries to recover a table from a page. A false result is a soft
// failure: the caller moves on to the next strategy.
type Strategy interface {
	Name() string
	Extract(page Page) (*RawTable, bool)
}

// Cascade runs strategies in order and takes the first success.
type Cascade struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewCascade creates a cascade over the given strategies.
func NewCascade(logger *slog.Logger, strategies ...Strategy) *Cascade {
	return &Cascade{strategies: strategies, logger: logger}
}

// Run applies each strategy to the page until one yields a table.
// A nil result means every strategy soft-failed.
func (c *Cascade) Run(page Page) *RawTable {
	for _, s := range c.strategies {
		table, ok := s.Extract(page)
		if ok {
			c.logger.Info("table extracted", "strategy", s.Name(), "rows", len(table.Rows))
			return table
		}
		c.logger.Warn("strategy yielded no table", "strategy", s.Name())
	}
	return nil
}

// GridStrategy passes through the first native table grid detected by the
// document source. Grids arrive already structured, header row first.
type GridStrategy struct{}

// Name implements Strategy.
func (GridStrategy) Name() string { return "native-grid" }

// Extract implements Strategy.
func (GridStrategy) Extract(page Page) (*RawTable, bool) {
	grids := page.Tables()
	if len(grids) == 0 {
		return nil, false
	}
	return tableFromGrid(grids[0])
}

// AllGrids returns every native grid on the page as a RawTable, in order.
// Pages occasionally carry more than one table; the cascade only consumes
// the first, so the orchestrator uses this for the pass-through path.
func AllGrids(page Page) []*RawTable {
	var tables []*RawTable
	for _, grid := range page.Tables() {
		if t, ok := tableFromGrid(grid); ok {
			tables = append(tables, t)
		}
	}
	return tables
}

func tableFromGrid(grid [][]string) (*RawTable, bool) {
	if len(grid) < 2 {
		return nil, false
	}
	header := grid[0]
	table := &RawTable{Columns: header}
	for _, cells := range grid[1:] {
		row := make(map[string]string, len(header))
		for i, label := range header {
			if i < len(cells) {
				row[label] = cells[i]
			} else {
				row[label] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, true
}
