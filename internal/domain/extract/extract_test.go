package extract

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakePage implements Page for strategy tests.
type fakePage struct {
	text    string
	textErr error
	tables  [][][]string
	rules   []Rule
	bands   map[[2]int]string // [y0,y1] -> band text
	cropErr error
}

func (p *fakePage) Text() (string, error) { return p.text, p.textErr }
func (p *fakePage) Tables() [][][]string  { return p.tables }
func (p *fakePage) Rules() []Rule         { return p.rules }

func (p *fakePage) CropText(top, bottom float64) (string, error) {
	if p.cropErr != nil {
		return "", p.cropErr
	}
	return p.bands[[2]int{int(top), int(bottom)}], nil
}

func TestSplitColumns(t *testing.T) {
	t.Run("splits on multi-space runs", func(t *testing.T) {
		fields := SplitColumns("01/02/2023  Grocery Store  45.67   1,234.56")
		assert.Equal(t, []string{"01/02/2023", "Grocery Store", "45.67", "1,234.56"}, fields)
	})

	t.Run("single spaces are not separators", func(t *testing.T) {
		fields := SplitColumns("Grocery Store Purchase")
		assert.Equal(t, []string{"Grocery Store Purchase"}, fields)
	})

	t.Run("line without double spaces comes back whole and untrimmed", func(t *testing.T) {
		line := " leading and trailing "
		// A single leading/trailing space is not a multi-space run.
		assert.Equal(t, []string{line}, SplitColumns(line))
	})

	t.Run("tabs count as whitespace", func(t *testing.T) {
		fields := SplitColumns("a\t\tb")
		assert.Equal(t, []string{"a", "b"}, fields)
	})
}

func TestDecomposeLine(t *testing.T) {
	t.Run("date, description, amount and balance", func(t *testing.T) {
		row, ok := DecomposeLine("03/15/2024 Grocery Store $45.67 $1,234.56")
		require.True(t, ok)
		assert.Equal(t, "03/15/2024", row[ColDate])
		assert.Equal(t, "Grocery Store", row[ColDescription])
		assert.Equal(t, "$45.67", row[ColAmount])
		assert.Equal(t, "$1,234.56", row[ColBalance])
	})

	t.Run("single amount leaves balance empty", func(t *testing.T) {
		row, ok := DecomposeLine("03/15/2024 ATM Withdrawal 100.00")
		require.True(t, ok)
		assert.Equal(t, "100.00", row[ColAmount])
		assert.Equal(t, "", row[ColBalance])
		assert.Equal(t, "ATM Withdrawal", row[ColDescription])
	})

	t.Run("amounts assigned from the tail", func(t *testing.T) {
		// The leading 12.00 is a reference figure, not the amount.
		row, ok := DecomposeLine("01/02/2023 REF 12.00 Utility Bill 55.10 900.00")
		require.True(t, ok)
		assert.Equal(t, "55.10", row[ColAmount])
		assert.Equal(t, "900.00", row[ColBalance])
		assert.Equal(t, "REF 12.00 Utility Bill", row[ColDescription])
	})

	t.Run("no date means no candidate", func(t *testing.T) {
		_, ok := DecomposeLine("Opening balance 1,000.00")
		assert.False(t, ok)
	})

	t.Run("no amount means no candidate", func(t *testing.T) {
		_, ok := DecomposeLine("01/02/2023 Pending transaction")
		assert.False(t, ok)
	})

	t.Run("dash-separated two digit year", func(t *testing.T) {
		row, ok := DecomposeLine("1-2-23 Coffee 4.50")
		require.True(t, ok)
		assert.Equal(t, "1-2-23", row[ColDate])
	})
}

func TestPatternStrategy(t *testing.T) {
	strategy := NewPatternStrategy(testLogger())

	t.Run("collects candidate lines in order", func(t *testing.T) {
		page := &fakePage{text: strings.Join([]string{
			"Statement for account 12345",
			"03/14/2024 Coffee Shop $4.50 $995.50",
			"not a transaction",
			"03/15/2024 Grocery Store $45.67 $949.83",
		}, "\n")}

		table, ok := strategy.Extract(page)
		require.True(t, ok)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, "Coffee Shop", table.Rows[0][ColDescription])
		assert.Equal(t, "Grocery Store", table.Rows[1][ColDescription])
	})

	t.Run("zero candidates is a soft failure", func(t *testing.T) {
		page := &fakePage{text: "Summary page\nNo transactions here"}
		_, ok := strategy.Extract(page)
		assert.False(t, ok)
	})

	t.Run("text error is a soft failure", func(t *testing.T) {
		page := &fakePage{textErr: errors.New("boom")}
		_, ok := strategy.Extract(page)
		assert.False(t, ok)
	})
}

func TestLineTableStrategy(t *testing.T) {
	strategy := NewLineTableStrategy(testLogger())

	t.Run("extracts header and data bands", func(t *testing.T) {
		page := &fakePage{
			rules: []Rule{
				{Y0: 300, Y1: 300},
				{Y0: 100, Y1: 100},
				{Y0: 200, Y1: 200.4},
				{Y0: 50, Y1: 400}, // vertical line, ignored
			},
			bands: map[[2]int]string{
				{100, 200}: "Date  Description  Amount",
				{200, 300}: "01/02/2023  Coffee  4.50",
			},
		}

		table, ok := strategy.Extract(page)
		require.True(t, ok)
		assert.Equal(t, []string{"Date", "Description", "Amount"}, table.Columns)
		require.Len(t, table.Rows, 1)
		assert.Equal(t, "Coffee", table.Rows[0]["Description"])
	})

	t.Run("fewer than three rules falls through", func(t *testing.T) {
		page := &fakePage{rules: []Rule{{Y0: 100, Y1: 100}, {Y0: 200, Y1: 200}}}
		_, ok := strategy.Extract(page)
		assert.False(t, ok)
	})

	t.Run("crop failure is a soft failure", func(t *testing.T) {
		page := &fakePage{
			rules:   []Rule{{Y0: 100, Y1: 100}, {Y0: 200, Y1: 200}, {Y0: 300, Y1: 300}},
			cropErr: errors.New("crop failed"),
		}
		_, ok := strategy.Extract(page)
		assert.False(t, ok)
	})

	t.Run("ragged bands abandon the table", func(t *testing.T) {
		page := &fakePage{
			rules: []Rule{{Y0: 100, Y1: 100}, {Y0: 200, Y1: 200}, {Y0: 300, Y1: 300}},
			bands: map[[2]int]string{
				{100, 200}: "Date  Description  Amount",
				{200, 300}: "01/02/2023  Coffee",
			},
		}
		_, ok := strategy.Extract(page)
		assert.False(t, ok)
	})
}

func TestColumnSpec_SliceRow(t *testing.T) {
	spec := DefaultColumnSpec()

	t.Run("full-width line slices positionally", func(t *testing.T) {
		line := padField("03/15/2024", 10) + " " +
			padField("Grocery Store", 39) + " " +
			padField("45.67", 14) + " " +
			padField("1,234.56", 14)
		require.GreaterOrEqual(t, len(line), 80)

		row := spec.SliceRow(line)
		require.NotNil(t, row)
		assert.Equal(t, "03/15/2024", row[ColDate])
		assert.Equal(t, "Grocery Store", row[ColDescription])
		assert.Equal(t, "45.67", row[ColAmount])
		assert.Equal(t, "1,234.56", row[ColBalance])
	})

	t.Run("multibyte runes do not shift the slices", func(t *testing.T) {
		line := padField("03/15/2024", 10) + " " +
			padField("Café Münster €", 39) + " " +
			padField("45.67", 14) + " " +
			padField("1,234.56", 14)
		require.GreaterOrEqual(t, len([]rune(line)), 80)

		row := spec.SliceRow(line)
		require.NotNil(t, row)
		assert.Equal(t, "Café Münster €", row[ColDescription])
		assert.Equal(t, "45.67", row[ColAmount])
		assert.Equal(t, "1,234.56", row[ColBalance])
	})

	t.Run("short line falls back to regex salvage", func(t *testing.T) {
		row := spec.SliceRow("03/15/2024 Coffee 4.50 995.50")
		require.NotNil(t, row)
		assert.Equal(t, "03/15/2024", row[ColDate])
		assert.Equal(t, "Coffee", row[ColDescription])
		assert.Equal(t, "4.50", row[ColAmount])
		assert.Equal(t, "995.50", row[ColBalance])
	})

	t.Run("short garbled line yields nil instead of panicking", func(t *testing.T) {
		assert.Nil(t, spec.SliceRow("@@@###"))
	})

	t.Run("span past line end yields empty field", func(t *testing.T) {
		spec := ColumnSpec{Spans: []FieldSpan{
			{Name: ColDate, Start: 0, End: 4},
			{Name: ColBalance, Start: 90, End: 100},
		}}
		line := strings.Repeat("x", 90)
		row := spec.SliceRow(line)
		require.NotNil(t, row)
		assert.Equal(t, "xxxx", row[ColDate])
		assert.Equal(t, "", row[ColBalance])
	})
}

func TestTableFromOCRText(t *testing.T) {
	t.Run("structures candidate lines", func(t *testing.T) {
		text := strings.Join([]string{
			"ACME BANK",
			"Date        Description        Amount   Balance",
			"03/14/2024 Coffee Shop 4.50 995.50",
			"03/15/2024 Grocery Store 45.67 949.83",
		}, "\n")

		table, ok := TableFromOCRText(text, testLogger())
		require.True(t, ok)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, "03/14/2024", table.Rows[0][ColDate])
		assert.Equal(t, "949.83", table.Rows[1][ColBalance])
	})

	t.Run("no candidates is a soft failure", func(t *testing.T) {
		_, ok := TableFromOCRText("nothing here\nto see", testLogger())
		assert.False(t, ok)
	})

	t.Run("empty text is a soft failure", func(t *testing.T) {
		_, ok := TableFromOCRText("", testLogger())
		assert.False(t, ok)
	})
}

func TestCascade(t *testing.T) {
	logger := testLogger()
	cascade := NewCascade(logger,
		GridStrategy{},
		NewLineTableStrategy(logger),
		NewPatternStrategy(logger),
	)

	t.Run("native grid wins when present", func(t *testing.T) {
		page := &fakePage{tables: [][][]string{{
			{"Date", "Description", "Amount"},
			{"01/02/2023", "Coffee", "4.50"},
		}}}
		table := cascade.Run(page)
		require.NotNil(t, table)
		assert.Equal(t, "Coffee", table.Rows[0]["Description"])
	})

	t.Run("no grid and no rules falls through to pattern rows", func(t *testing.T) {
		page := &fakePage{text: "01/02/2023 Coffee 4.50 995.50"}
		table := cascade.Run(page)
		require.NotNil(t, table)
		assert.Equal(t, "Coffee", table.Rows[0][ColDescription])
	})

	t.Run("nothing extractable returns nil", func(t *testing.T) {
		page := &fakePage{text: "just prose"}
		assert.Nil(t, cascade.Run(page))
	})
}

func padField(s string, width int) string {
	return fmt.Sprintf("%-*s", width, s)
}
