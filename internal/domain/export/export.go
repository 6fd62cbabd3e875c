// Package export writes canonical record sets to spreadsheet or CSV files.
package export

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/bank-statement-converter/internal/domain/normalize"
)

// Format selects the output file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ErrUnsupportedFormat is returned when the requested output format is not
// one of the supported values. Unlike extraction failures this is a hard
// error.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// ParseFormat validates a user-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatXLSX, FormatCSV:
		return Format(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Writer serializes canonical records to a destination path.
type Writer struct {
	logger *slog.Logger
}

// NewWriter creates an export writer.
func NewWriter(logger *slog.Logger) *Writer {
	return &Writer{logger: logger}
}

// Write saves the record set to path in the given format and returns the
// written path. An empty record set writes nothing and returns an empty
// path; callers report that case as a failed conversion rather than an
// error.
func (w *Writer) Write(records []normalize.Record, path string, format Format) (string, error) {
	if len(records) == 0 {
		w.logger.Warn("no data to export")
		return "", nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	switch format {
	case FormatXLSX:
		if err := w.writeXLSX(records, path); err != nil {
			return "", err
		}
		w.logger.Info("data exported to Excel file", "path", path)
	case FormatCSV:
		if err := w.writeCSV(records, path); err != nil {
			return "", err
		}
		w.logger.Info("data exported to CSV file", "path", path)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	return path, nil
}

const sheetName = "Transactions"

func (w *Writer) writeXLSX(records []normalize.Record, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []interface{}{"Date", "Description", "Amount", "Balance"}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		row := []interface{}{rec.Date, rec.Description, rec.Amount, rec.Balance}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

func (w *Writer) writeCSV(records []normalize.Record, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&records, f); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
