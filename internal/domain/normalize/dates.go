package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

// dateLayouts are tried in order; the first successful parse wins. The list
// spans day-first, month-first and year-first orders with slash, dash and
// dot separators, in 4-digit then 2-digit year variants. The unpadded
// layout elements ("2", "1") accept both "03/15/2024" and "3/15/2024";
// padded ones would reject the unpadded dates the row detector emits.
var dateLayouts = []string{
	"2/1/2006", "1/2/2006", "2006/1/2",
	"2-1-2006", "1-2-2006", "2006-1-2",
	"2.1.2006", "1.2.2006", "2006.1.2",
	"2/1/06", "1/2/06", "06/1/2",
	"2-1-06", "1-2-06", "06-1-2",
	"2.1.06", "1.2.06", "06.1.2",
}

var digitRuns = regexp.MustCompile(`\d+`)

// normalizeDate rewrites a date string to ISO YYYY-MM-DD. When no layout
// matches, a numeric-token fallback interprets the first three integer runs
// as day, month, year. If both paths fail the original string is returned
// unchanged and a warning is logged; this never errors.
func (n *Normalizer) normalizeDate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(isoDate)
		}
	}

	if iso, ok := dateFromComponents(s); ok {
		return iso
	}

	n.logger.Warn("failed to normalize date", "value", s)
	return s
}

// dateFromComponents salvages a date from the integer runs inside a string
// that matched no layout. The first three runs are read as day, month, year
// in that order; two-digit years below 50 land in the 2000s.
func dateFromComponents(s string) (string, bool) {
	runs := digitRuns.FindAllString(s, -1)
	if len(runs) < 3 {
		return "", false
	}

	day, month, year := atoi(runs[0]), atoi(runs[1]), atoi(runs[2])
	if year < 100 {
		if year < 50 {
			year += 2000
		} else {
			year += 1900
		}
	}
	if day < 1 || day > 31 || month < 1 || month > 12 || year < 1900 || year > 2100 {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
		if n > 10000 {
			return n // enough to fail range validation
		}
	}
	return n
}
