// Package convert orchestrates one statement conversion: open the source
// document, recover tables page by page, normalize the merged rows and
// write the exported file.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/google/uuid"

	"github.com/FACorreiaa/bank-statement-converter/internal/domain/export"
	"github.com/FACorreiaa/bank-statement-converter/internal/domain/extract"
	"github.com/FACorreiaa/bank-statement-converter/internal/domain/normalize"
)

// ErrInputNotFound is returned when the input path does not exist.
// Unlike per-page extraction failures, this aborts the run.
var ErrInputNotFound = errors.New("input file not found")

// Source is an open statement document. Page indexes are 1-based.
type Source interface {
	NumPages() int
	Page(num int) (extract.Page, error)
	IsScanned() bool
	Close() error
}

// SourceOpener opens the document at path. Injected so tests can run the
// pipeline against fabricated pages.
type SourceOpener func(path string) (Source, error)

// TextRecognizer recovers page texts from a scanned document.
type TextRecognizer interface {
	PageTexts(ctx context.Context, path string) ([]string, error)
}

// Request describes one conversion job.
type Request struct {
	Input  string
	Output string
	Format export.Format
}

// Result summarizes a finished conversion. Records of zero with a nil
// error means the document yielded no recognizable transactions.
type Result struct {
	JobID      uuid.UUID
	OutputPath string
	Pages      int
	Tables     int
	Records    int
}

// Service wires the extraction cascade, the schema normalizer and the
// export writer into one conversion pipeline.
type Service struct {
	open       SourceOpener
	recognizer TextRecognizer
	normalizer *normalize.Normalizer
	writer     *export.Writer
	cascade    *extract.Cascade
	logger     *slog.Logger
}

// NewService creates a conversion service. recognizer may be nil when
// scanned documents are out of scope for the caller.
func NewService(open SourceOpener, recognizer TextRecognizer, logger *slog.Logger) *Service {
	return &Service{
		open:       open,
		recognizer: recognizer,
		normalizer: normalize.New(logger),
		writer:     export.NewWriter(logger),
		cascade: extract.NewCascade(logger,
			extract.GridStrategy{},
			extract.NewLineTableStrategy(logger),
			extract.NewPatternStrategy(logger),
		),
		logger: logger,
	}
}

// Convert runs one conversion end to end. A missing input or a failure of
// the document source itself is fatal; a page that yields no table is
// logged and skipped.
func (s *Service) Convert(ctx context.Context, req Request) (*Result, error) {
	if _, err := os.Stat(req.Input); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInputNotFound, req.Input)
	}

	jobID := uuid.New()
	s.logger.Info("starting conversion",
		slog.String("job_id", jobID.String()),
		slog.String("input", req.Input),
		slog.String("format", string(req.Format)))

	src, err := s.open(req.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", req.Input, err)
	}
	defer src.Close()

	var tables []extract.RawTable
	if src.IsScanned() {
		tables, err = s.extractScannedPages(ctx, req.Input)
		if err != nil {
			return nil, err
		}
	} else {
		tables = s.extractTextPages(ctx, src)
	}

	records := s.normalizer.Normalize(tables)
	outPath, err := s.writer.Write(records, req.Output, req.Format)
	if err != nil {
		return nil, err
	}

	res := &Result{
		JobID:      jobID,
		OutputPath: outPath,
		Pages:      src.NumPages(),
		Tables:     len(tables),
		Records:    len(records),
	}
	s.logger.Info("conversion finished",
		slog.String("job_id", jobID.String()),
		slog.Int("tables", res.Tables),
		slog.Int("records", res.Records))
	return res, nil
}

// extractTextPages walks a text-based document page by page. Each page is
// independent: a failed page is logged and the rest still convert.
func (s *Service) extractTextPages(ctx context.Context, src Source) []extract.RawTable {
	total := src.NumPages()
	var tables []extract.RawTable
	for num := 1; num <= total; num++ {
		if ctx.Err() != nil {
			s.logger.Warn("conversion canceled", slog.Int("pages_done", num-1))
			return tables
		}
		s.logger.Info("Processing page", slog.Int("page", num), slog.Int("total", total))

		page, err := src.Page(num)
		if err != nil {
			s.logger.Warn("failed to read page", slog.Int("page", num), slog.Any("error", err))
			continue
		}

		// Pages with native grids keep every grid; the fallback
		// strategies recover at most one table per page.
		if grids := extract.AllGrids(page); len(grids) > 0 {
			for i, t := range grids {
				tables = append(tables, s.stamp(*t, num, i+1))
			}
			continue
		}
		if t := s.cascade.Run(page); t != nil {
			tables = append(tables, s.stamp(*t, num, 1))
		}
	}
	return tables
}

// extractScannedPages runs the OCR path. The recognizer failing aborts the
// conversion: partial OCR output silently drops transactions.
func (s *Service) extractScannedPages(ctx context.Context, path string) ([]extract.RawTable, error) {
	if s.recognizer == nil {
		return nil, errors.New("scanned document but no OCR engine configured")
	}
	texts, err := s.recognizer.PageTexts(ctx, path)
	if err != nil {
		return nil, err
	}

	var tables []extract.RawTable
	for i, text := range texts {
		t, ok := extract.TableFromOCRText(text, s.logger)
		if !ok {
			s.logger.Warn("no transactions recognized on page", slog.Int("page", i+1))
			continue
		}
		tables = append(tables, s.stamp(*t, i+1, 1))
	}
	return tables, nil
}

// stamp annotates every row of a table with its page and table of origin.
// The normalizer strips these before export; they exist so merged rows stay
// traceable in logs and debugging sessions.
func (s *Service) stamp(t extract.RawTable, page, table int) extract.RawTable {
	t.Columns = append(t.Columns, normalize.ColPage, normalize.ColTable)
	for _, row := range t.Rows {
		row[normalize.ColPage] = strconv.Itoa(page)
		row[normalize.ColTable] = strconv.Itoa(table)
	}
	return t
}
