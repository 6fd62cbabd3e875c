// Package normalize merges extracted row sets into one canonical record set.
// It canonicalizes column labels via synonym tables and rewrites date and
// amount fields into the canonical schema.
package normalize

import (
	"log/slog"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/FACorreiaa/bank-statement-converter/internal/domain/extract"
)

// Record is the final normalized transaction. Date is ISO YYYY-MM-DD, or the
// original string when no parse succeeded. Amount and Balance are always
// numeric; unparseable input degrades to 0.0, never to a raw string.
type Record struct {
	Date        string  `csv:"Date" json:"date"`
	Description string  `csv:"Description" json:"description"`
	Amount      float64 `csv:"Amount" json:"amount"`
	Balance     float64 `csv:"Balance" json:"balance"`
}

// Internal provenance labels attached by the orchestrator and stripped here.
const (
	ColPage  = "Page"
	ColTable = "Table"
)

// Synonym sets for canonical column labels, matched case-insensitively
// against the trimmed source label. Exact match only: "Trans Date" maps to
// Date, but "Transaction Date Posted" does not.
var columnSynonyms = map[string][]string{
	extract.ColDate:        {"date", "transaction date", "trans date", "posted date"},
	extract.ColDescription: {"description", "transaction", "details", "particulars", "narration"},
	extract.ColAmount:      {"amount", "transaction amount", "debit", "credit", "withdrawal", "deposit"},
	extract.ColBalance:     {"balance", "closing balance", "running balance"},
}

var canonicalOrder = []string{extract.ColDate, extract.ColDescription, extract.ColAmount, extract.ColBalance}

// Normalizer merges raw tables and rewrites them into canonical records.
type Normalizer struct {
	logger *slog.Logger
}

// New creates a schema normalizer reporting through the given logger.
func New(logger *slog.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize concatenates all tables preserving original relative order,
// drops all-empty rows, canonicalizes column labels, normalizes each field
// and strips provenance. It never errors: every per-field failure degrades
// to a safe default and is logged as a warning.
func (n *Normalizer) Normalize(tables []extract.RawTable) []Record {
	if len(tables) == 0 {
		n.logger.Warn("no tables to clean and normalize")
		return nil
	}

	seen := make(map[string]bool)
	var records []Record
	for _, table := range tables {
		for _, label := range table.Columns {
			seen[n.canonicalizeLabel(label)] = true
		}
		for _, row := range table.Rows {
			if rowEmpty(row) {
				continue
			}
			records = append(records, n.normalizeRow(table.Columns, row))
		}
	}

	for _, name := range canonicalOrder {
		if !seen[name] {
			n.logger.Warn("column not found in extracted data", "column", name)
		}
	}

	return records
}

// canonicalizeLabel trims a source label and maps it through the synonym
// table. Unmatched labels come back unchanged, with a warning carrying the
// nearest canonical name as a hint.
func (n *Normalizer) canonicalizeLabel(label string) string {
	trimmed := strings.TrimSpace(label)
	lower := strings.ToLower(trimmed)
	for _, canonical := range canonicalOrder {
		for _, synonym := range columnSynonyms[canonical] {
			if lower == synonym {
				return canonical
			}
		}
	}
	if trimmed != "" && trimmed != ColPage && trimmed != ColTable {
		n.warnUnknownLabel(trimmed)
	}
	return trimmed
}

func (n *Normalizer) warnUnknownLabel(label string) {
	matches := fuzzy.RankFindNormalizedFold(label, canonicalOrder)
	if len(matches) > 0 {
		best := matches[0]
		for _, m := range matches[1:] {
			if m.Distance < best.Distance {
				best = m
			}
		}
		n.logger.Warn("unrecognized column left untouched", "column", label, "closest", best.Target)
		return
	}
	n.logger.Warn("unrecognized column left untouched", "column", label)
}

// normalizeRow rewrites one raw row into a canonical record. Canonical
// fields absent from the row stay at their zero defaults; when two source
// columns collapse onto the same canonical name (debit and credit both map
// to Amount), the first non-empty value in source column order wins.
// Iterating columns rather than the row map keeps that choice stable
// across runs.
func (n *Normalizer) normalizeRow(columns []string, row map[string]string) Record {
	merged := make(map[string]string, len(canonicalOrder))
	for _, label := range columns {
		value, ok := row[label]
		if !ok {
			continue
		}
		canonical := canonicalName(label)
		if canonical == "" {
			continue // provenance or unrecognized column
		}
		if existing, ok := merged[canonical]; !ok || strings.TrimSpace(existing) == "" {
			merged[canonical] = value
		}
	}

	var rec Record
	if raw, ok := merged[extract.ColDate]; ok {
		rec.Date = n.normalizeDate(raw)
	}
	rec.Description = strings.TrimSpace(merged[extract.ColDescription])
	if raw, ok := merged[extract.ColAmount]; ok {
		rec.Amount = n.normalizeAmount(raw)
	}
	if raw, ok := merged[extract.ColBalance]; ok {
		rec.Balance = n.normalizeAmount(raw)
	}
	return rec
}

// canonicalName is the silent variant of canonicalizeLabel, used per row so
// an unknown label warns once per table rather than once per cell. It also
// filters the Page/Table provenance columns out of the record.
func canonicalName(label string) string {
	trimmed := strings.TrimSpace(label)
	if trimmed == ColPage || trimmed == ColTable {
		return ""
	}
	lower := strings.ToLower(trimmed)
	for _, canonical := range canonicalOrder {
		for _, synonym := range columnSynonyms[canonical] {
			if lower == synonym {
				return canonical
			}
		}
	}
	return ""
}

func rowEmpty(row map[string]string) bool {
	for label, value := range row {
		if label == ColPage || label == ColTable {
			continue
		}
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
