// Command convert turns a bank statement PDF into a structured XLSX or
// CSV file of transactions.
//
// Usage:
//
//	convert [flags] <input.pdf> <output.xlsx|output.csv>
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/FACorreiaa/bank-statement-converter/internal/domain/convert"
	"github.com/FACorreiaa/bank-statement-converter/internal/domain/export"
	"github.com/FACorreiaa/bank-statement-converter/internal/ocr"
	"github.com/FACorreiaa/bank-statement-converter/internal/pdfsource"
	"github.com/FACorreiaa/bank-statement-converter/pkg/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	formatFlag := flag.String("format", "", "output format: xlsx or csv (default from EXPORT_FORMAT)")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <input.pdf> <output file>\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		return fmt.Errorf("expected 2 arguments, got %d", flag.NArg())
	}
	input, output := flag.Arg(0), flag.Arg(1)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	name := *formatFlag
	if name == "" {
		name = cfg.Export.DefaultFormat
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg.Log, *verbose)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recognizer := ocr.NewReader(
		ocr.NewRasterizer(cfg.OCR.PdftoppmPath, cfg.OCR.DPI),
		ocr.NewTesseractEngine(cfg.OCR.TesseractPath, cfg.OCR.Language),
		uint8(cfg.OCR.Threshold),
		logger,
	)
	opener := func(path string) (convert.Source, error) {
		src, err := pdfsource.Open(path, logger, pdfsource.WithPdftotext(cfg.OCR.PdftotextPath))
		if err != nil {
			return nil, err
		}
		return src, nil
	}

	svc := convert.NewService(opener, recognizer, logger)
	res, err := svc.Convert(ctx, convert.Request{Input: input, Output: output, Format: format})
	if err != nil {
		return err
	}

	if res.Records == 0 {
		fmt.Println("Conversion failed. Check the log for details.")
		return nil
	}
	fmt.Printf("Converted %d transactions from %d pages to %s\n", res.Records, res.Pages, res.OutputPath)
	return nil
}

// newLogger builds the application logger. With a log file configured,
// records go to both stderr and the file.
func newLogger(cfg config.LogConfig, verbose bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if verbose || cfg.Verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	closeLog := func() {}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", cfg.File, err)
		}
		w = io.MultiWriter(os.Stderr, f)
		closeLog = func() { f.Close() }
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeLog, nil
}
