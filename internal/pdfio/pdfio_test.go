package pdfio

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

// makeTestPDF writes an A4 PDF with the given number of pages, each
// carrying enough drawing to survive rasterization checks.
func makeTestPDF(t *testing.T, path string, pages int) {
	t.Helper()

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", 24)
	for i := 0; i < pages; i++ {
		pdf.AddPage()
		pdf.SetFillColor(40, 40, 40)
		pdf.Rect(72, 72, 200, 100, "F")
		pdf.Text(72, 220, "scanned page")
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatalf("Failed to create test PDF: %v", err)
	}
}

func encodedTestPage(t *testing.T, index int) *EncodedPage {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 100, 140))
	for y := 0; y < 140; y++ {
		for x := 0; x < 100; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(40 * index), G: 128, B: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		t.Fatalf("Failed to encode test page: %v", err)
	}

	return &EncodedPage{
		Index:    index,
		Data:     buf.Bytes(),
		Format:   "JPEG",
		WidthPt:  595.28,
		HeightPt: 841.89,
	}
}

func TestOpenFileNotFound(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.pdf"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound, got %v", err)
	}
}

func TestOpenInvalidPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.pdf")
	if err := os.WriteFile(path, []byte("this is not a pdf at all"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	_, err := Open(path)
	if err == nil {
		t.Fatal("Expected error for invalid PDF")
	}
	if !errors.Is(err, ErrInvalidPDF) {
		t.Errorf("Expected ErrInvalidPDF, got %v", err)
	}
}

func TestOpenPageCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "three.pdf")
	makeTestPDF(t, path, 3)

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer doc.Close()

	if got := doc.PageCount(); got != 3 {
		t.Errorf("Expected 3 pages, got %d", got)
	}
}

func TestPageSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a4.pdf")
	makeTestPDF(t, path, 1)

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer doc.Close()

	w, h, err := doc.PageSize(0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// A4 in PDF points, allowing for rounding in the page box.
	if w < 594 || w > 596 {
		t.Errorf("Expected A4 width around 595 pt, got %g", w)
	}
	if h < 841 || h > 843 {
		t.Errorf("Expected A4 height around 842 pt, got %g", h)
	}
}

func TestRasterizeOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.pdf")
	makeTestPDF(t, path, 1)

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer doc.Close()

	tests := []struct {
		name      string
		pageIndex int
	}{
		{name: "index equals page count", pageIndex: 1},
		{name: "index beyond page count", pageIndex: 99},
		{name: "negative index", pageIndex: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := doc.Rasterize(tt.pageIndex, 72)
			if err == nil {
				t.Fatal("Expected error for out-of-range page index")
			}
			if !errors.Is(err, ErrPageOutOfRange) {
				t.Errorf("Expected ErrPageOutOfRange, got %v", err)
			}
		})
	}
}

func TestRasterizeDimensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raster.pdf")
	makeTestPDF(t, path, 1)

	doc, err := Open(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer doc.Close()

	page, err := doc.Rasterize(0, 72)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// At 72 DPI a point maps to one pixel.
	if got := page.Pixels.Bounds().Dx(); got < 594 || got > 596 {
		t.Errorf("Expected around 595 px width at 72 DPI, got %d", got)
	}
	if page.DPI != 72 {
		t.Errorf("Expected DPI 72, got %d", page.DPI)
	}
	if page.Index != 0 {
		t.Errorf("Expected page index 0, got %d", page.Index)
	}
}

func TestWriterNoPages(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "out.pdf"), slog.Default())
	if err := w.Write(); err == nil {
		t.Error("Expected error when writing without pages")
	}
}

func TestWriterPreservesPageOrder(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.pdf")
	w := NewWriter(outPath, slog.Default())

	// Pages added out of order must still assemble in index order.
	w.Add(encodedTestPage(t, 2))
	w.Add(encodedTestPage(t, 0))
	w.Add(encodedTestPage(t, 1))

	if err := w.Write(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, err := os.Stat(outPath); err != nil {
		t.Fatalf("Expected output file to exist, got %v", err)
	}

	// No temp files left behind.
	if _, err := os.Stat(outPath + ".partial"); !os.IsNotExist(err) {
		t.Error("Expected temp file to be cleaned up")
	}

	doc, err := Open(outPath)
	if err != nil {
		t.Fatalf("Expected valid output PDF, got %v", err)
	}
	defer doc.Close()

	if got := doc.PageCount(); got != 3 {
		t.Errorf("Expected 3 pages, got %d", got)
	}

	w0, h0, err := doc.PageSize(0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if w0 < 594 || w0 > 596 || h0 < 841 || h0 > 843 {
		t.Errorf("Expected A4 page geometry, got %gx%g", w0, h0)
	}
}
