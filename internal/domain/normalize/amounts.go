package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

// normalizeAmount rewrites an amount string to a float. Currency symbols,
// thousands separators and any other decoration are stripped before parsing;
// empty or unparseable input degrades to 0.0 rather than erroring, so a
// canonical record's numeric fields are never left as raw strings.
func (n *Normalizer) normalizeAmount(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}

	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		n.logger.Warn("failed to normalize amount", "value", raw)
		return 0
	}
	return d.InexactFloat64()
}
