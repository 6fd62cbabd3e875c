package extract

import (
	"log/slog"
	"regexp"
	"strings"
)

var (
	// datePattern matches statement-style numeric dates: 1-2 digit day and
	// month, 2 or 4 digit year, slash or dash separated.
	datePattern = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)

	// amountPattern matches currency amounts printed with two decimal
	// places, optional thousands separators and an optional dollar sign.
	amountPattern = regexp.MustCompile(`\$?\s*\d{1,3}(?:,\d{3})*\.\d{2}`)
)

// IsTransactionLine reports whether a line looks like a transaction: it must
// contain at least one date-shaped token and one currency-amount token.
func IsTransactionLine(line string) bool {
	return datePattern.MatchString(line) && amountPattern.MatchString(line)
}

// DecomposeLine breaks a candidate transaction line into its raw fields.
//
// The date is the first date token, verbatim. Statements commonly print the
// transaction amount followed by the running balance as the last two numeric
// fields, so with two or more amount tokens the second-to-last is Amount and
// the last is Balance; with exactly one it is Amount and Balance stays empty.
// The description is whatever sits between the end of the date token and the
// start of the designated amount token, trimmed.
//
// The second return is false when the line is not a transaction candidate;
// non-matching lines are simply skipped, never an error.
func DecomposeLine(line string) (map[string]string, bool) {
	dateLoc := datePattern.FindStringIndex(line)
	amountLocs := amountPattern.FindAllStringIndex(line, -1)
	if dateLoc == nil || len(amountLocs) == 0 {
		return nil, false
	}

	date := line[dateLoc[0]:dateLoc[1]]

	// Amounts assigned from the tail: earlier numbers on the line may be
	// reference numbers or unrelated figures.
	amountLoc := amountLocs[0]
	balance := ""
	if len(amountLocs) >= 2 {
		amountLoc = amountLocs[len(amountLocs)-2]
		last := amountLocs[len(amountLocs)-1]
		balance = line[last[0]:last[1]]
	}
	amount := line[amountLoc[0]:amountLoc[1]]

	description := ""
	if amountLoc[0] > dateLoc[1] {
		description = strings.TrimSpace(line[dateLoc[1]:amountLoc[0]])
	}

	return map[string]string{
		ColDate:        date,
		ColDescription: description,
		ColAmount:      strings.TrimSpace(amount),
		ColBalance:     strings.TrimSpace(balance),
	}, true
}

// PatternStrategy recognizes transaction rows in free text by the
// co-occurrence of a date token and a currency-amount token. It is the last
// fallback for text pages and the first stage for OCR text.
type PatternStrategy struct {
	logger *slog.Logger
}

// NewPatternStrategy creates a pattern-based row detector.
func NewPatternStrategy(logger *slog.Logger) *PatternStrategy {
	return &PatternStrategy{logger: logger}
}

// Name implements Strategy.
func (*PatternStrategy) Name() string { return "pattern-rows" }

// Extract implements Strategy. A page yielding zero candidate rows is a soft
// failure, not an error.
func (s *PatternStrategy) Extract(page Page) (*RawTable, bool) {
	text, err := page.Text()
	if err != nil {
		s.logger.Warn("text extraction failed", "strategy", s.Name(), "error", err)
		return nil, false
	}
	return TableFromText(text)
}

// TableFromText scans free text line by line and collects every transaction
// candidate into a table with the canonical column set.
func TableFromText(text string) (*RawTable, bool) {
	if text == "" {
		return nil, false
	}

	table := &RawTable{Columns: []string{ColDate, ColDescription, ColAmount, ColBalance}}
	for _, line := range strings.Split(text, "\n") {
		row, ok := DecomposeLine(line)
		if !ok {
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	if len(table.Rows) == 0 {
		return nil, false
	}
	return table, true
}
