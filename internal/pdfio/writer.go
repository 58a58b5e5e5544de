package pdfio

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/jung-kurt/gofpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Writer assembles encoded pages into the output PDF. Pages may be
// added in any order; the output preserves ascending page index order.
// The file is written to a temp path and renamed into place only after
// assembly and optimization succeed, so an interrupted run never
// leaves a truncated output behind.
type Writer struct {
	outputPath string
	pages      []*EncodedPage
	logger     *slog.Logger
}

// NewWriter creates a writer targeting outputPath.
func NewWriter(outputPath string, logger *slog.Logger) *Writer {
	return &Writer{
		outputPath: outputPath,
		logger:     logger,
	}
}

// Add queues one encoded page for assembly.
func (w *Writer) Add(page *EncodedPage) {
	w.pages = append(w.pages, page)
}

// PageCount returns the number of pages queued so far.
func (w *Writer) PageCount() int {
	return len(w.pages)
}

// Write assembles the queued pages and publishes the output file
// atomically.
func (w *Writer) Write() error {
	if len(w.pages) == 0 {
		return fmt.Errorf("no pages to assemble")
	}

	sort.Slice(w.pages, func(i, j int) bool {
		return w.pages[i].Index < w.pages[j].Index
	})

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
	})

	for _, page := range w.pages {
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: page.WidthPt, Ht: page.HeightPt})

		name := fmt.Sprintf("page-%d", page.Index)
		opts := gofpdf.ImageOptions{ImageType: page.Format}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(page.Data))
		pdf.ImageOptions(name, 0, 0, page.WidthPt, page.HeightPt, false, opts, 0, "")
	}

	if pdf.Err() {
		return fmt.Errorf("failed to assemble output PDF: %w", pdf.Error())
	}

	tmpPath := w.outputPath + ".partial"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp output file: %w", err)
	}

	if err := pdf.OutputAndClose(tmpFile); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write output PDF: %w", err)
	}

	// Squeeze the assembled file: garbage-collect unused objects and
	// deflate streams. A failed optimize pass is not fatal; the
	// unoptimized file is still correct.
	optimizedPath := tmpPath + ".opt"
	if err := api.OptimizeFile(tmpPath, optimizedPath, nil); err != nil {
		w.logger.Warn("Output optimization failed, keeping unoptimized file", "error", err)
		os.Remove(optimizedPath)
	} else {
		os.Remove(tmpPath)
		tmpPath = optimizedPath
	}

	if err := os.Rename(tmpPath, w.outputPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to publish output file: %w", err)
	}

	return nil
}
