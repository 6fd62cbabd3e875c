// Package pdfsource adapts PDF documents to the page contract the extraction
// pipeline consumes: per-page text, native table grids, horizontal rule
// positions and band cropping. Text and geometry come from the pure-Go PDF
// reader; when decoded text is mostly unreadable the package falls back to
// the external pdftotext tool (poppler-utils) with layout preservation.
package pdfsource

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/FACorreiaa/bank-statement-converter/internal/domain/extract"
)

// scannedTextThreshold is the minimum number of extractable characters on
// page 1 for a document to count as text-based rather than scanned.
const scannedTextThreshold = 100

// File is an open PDF document.
type File struct {
	path   string
	file   *os.File
	reader *pdf.Reader
	pages  int
	logger *slog.Logger

	pdftotext string // external fallback binary, empty to disable
}

// Option configures an opened file.
type Option func(*File)

// WithPdftotext enables the external pdftotext fallback for pages whose
// decoded text is mostly unreadable.
func WithPdftotext(bin string) Option {
	return func(f *File) { f.pdftotext = bin }
}

// Open validates and opens a PDF document.
func Open(path string, logger *slog.Logger, opts ...Option) (*File, error) {
	// Cheap structural validation first; it also gives a page count that
	// does not require walking the page tree.
	pages, err := api.PageCountFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF %s: %w", path, err)
	}

	osFile, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}

	f := &File{
		path:   path,
		file:   osFile,
		reader: reader,
		pages:  pages,
		logger: logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Close releases the underlying file handle.
func (f *File) Close() error {
	return f.file.Close()
}

// NumPages returns the document's page count.
func (f *File) NumPages() int {
	return f.pages
}

// Page returns the 1-based page as an extraction page.
func (f *File) Page(num int) (extract.Page, error) {
	if num < 1 || num > f.pages {
		return nil, fmt.Errorf("page %d out of range [1, %d]", num, f.pages)
	}
	p := f.reader.Page(num)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d is missing", num)
	}
	return newPage(f, p, num), nil
}

// IsScanned classifies the document: text-based when page 1 yields at least
// scannedTextThreshold characters, scanned otherwise. Extraction errors
// classify as scanned, failing safe toward the OCR path.
func (f *File) IsScanned() bool {
	page, err := f.Page(1)
	if err != nil {
		f.logger.Warn("error checking if PDF is scanned", "error", err)
		return true
	}
	text, err := page.Text()
	if err != nil {
		f.logger.Warn("error checking if PDF is scanned", "error", err)
		return true
	}
	if len(text) > scannedTextThreshold {
		f.logger.Info("PDF appears to be text-based")
		return false
	}
	f.logger.Info("PDF appears to be scanned (image-based)")
	return true
}
