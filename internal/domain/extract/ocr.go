package extract

import (
	"log/slog"
	"strings"
)

// FieldSpan maps a canonical field to a half-open character-offset range
// [Start, End) within a fixed-width line.
type FieldSpan struct {
	Name  string
	Start int
	End   int
}

// ColumnSpec holds the ordered column layout inferred for one OCR batch.
// Specs are derived per batch and never persisted across batches.
type ColumnSpec struct {
	Spans []FieldSpan
}

// DefaultColumnSpec returns the generic fixed-width approximation of common
// statement layouts: date at the left edge, a wide description, then amount
// and balance near the right edge.
func DefaultColumnSpec() ColumnSpec {
	return ColumnSpec{Spans: []FieldSpan{
		{Name: ColDate, Start: 0, End: 10},
		{Name: ColDescription, Start: 11, End: 50},
		{Name: ColAmount, Start: 51, End: 65},
		{Name: ColBalance, Start: 66, End: 80},
	}}
}

// maxEnd is the largest end offset in the spec; lines shorter than this
// cannot be sliced positionally.
func (c ColumnSpec) maxEnd() int {
	max := 0
	for _, s := range c.Spans {
		if s.End > max {
			max = s.End
		}
	}
	return max
}

// InferColumns derives a column spec from one OCR page's candidate
// transaction lines. The header hint is the line immediately preceding the
// first candidate.
//
// TODO: use headerHint to adjust span boundaries. The hint is collected so a
// header-aware refinement can be added without changing callers, but today
// inference always returns the fixed default offsets.
func InferColumns(candidates []string, headerHint string) ColumnSpec {
	_ = candidates
	_ = headerHint
	return DefaultColumnSpec()
}

// SliceRow parses one candidate line against the spec.
//
// OCR recognition frequently shifts or drops characters, which makes fixed
// offsets unreliable for compressed lines while still useful for lines that
// kept their full-width spacing. A line shorter than the spec's maximum end
// offset therefore falls back to regex decomposition (date token plus
// amounts assigned from the tail); otherwise each field is sliced by its
// offset range and trimmed. Never errors: a span starting past the end of
// the line yields an empty field.
func (c ColumnSpec) SliceRow(line string) map[string]string {
	// Offsets count characters, not bytes: recognition output can carry
	// multibyte runes (currency signs, misread glyphs) and slicing one in
	// half would corrupt the field.
	runes := []rune(line)
	if len(runes) < c.maxEnd() {
		if row, ok := DecomposeLine(line); ok {
			return row
		}
		return nil
	}

	row := make(map[string]string, len(c.Spans))
	for _, span := range c.Spans {
		if span.Start >= len(runes) {
			row[span.Name] = ""
			continue
		}
		end := span.End
		if end > len(runes) {
			end = len(runes)
		}
		row[span.Name] = strings.TrimSpace(string(runes[span.Start:end]))
	}
	return row
}

// TableFromOCRText structures one OCR page's text into a table. It finds
// transaction candidates with the pattern detector, keeps the line before
// the first candidate as a header-label hint, infers column offsets for the
// batch, and parses each candidate through the dual-path row slicer.
// Zero candidates is a soft failure.
func TableFromOCRText(text string, logger *slog.Logger) (*RawTable, bool) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	var candidates []string
	headerHint := ""
	for i, line := range lines {
		if !IsTransactionLine(line) {
			continue
		}
		if len(candidates) == 0 && i > 0 {
			headerHint = lines[i-1]
		}
		candidates = append(candidates, line)
	}
	if len(candidates) == 0 {
		logger.Warn("no transaction rows identified in OCR text")
		return nil, false
	}

	spec := InferColumns(candidates, headerHint)

	table := &RawTable{Columns: []string{ColDate, ColDescription, ColAmount, ColBalance}}
	for _, line := range candidates {
		if row := spec.SliceRow(line); row != nil {
			table.Rows = append(table.Rows, row)
		}
	}
	if len(table.Rows) == 0 {
		return nil, false
	}
	return table, true
}
