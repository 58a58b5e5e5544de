package pdfio

import (
	"fmt"
	"image"
	"os"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PageImage is the decoded raster of one page at a chosen DPI. It is
// owned exclusively by the processing step handling that page and is
// discarded after compression.
type PageImage struct {
	Index    int
	DPI      int
	WidthPt  float64
	HeightPt float64
	Pixels   image.Image
}

// EncodedPage is the compressed image of one page plus the original
// page geometry in PDF points, ready for output assembly.
type EncodedPage struct {
	Index    int
	Data     []byte
	Format   string // "JPEG" or "PNG"
	WidthPt  float64
	HeightPt float64
}

// Document wraps an open input PDF and exposes page count and
// per-page rasterization.
type Document struct {
	path      string
	doc       *fitz.Document
	pageCount int
}

// Open opens and validates an input PDF. The file is checked with
// pdfcpu before MuPDF touches it so that corrupt input is reported
// before any run starts.
func Open(path string) (*Document, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}

	if err := api.ValidateFile(path, nil); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPDF, path, err)
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPDF, path, err)
	}

	return &Document{
		path:      path,
		doc:       doc,
		pageCount: doc.NumPage(),
	}, nil
}

// Path returns the file path the document was opened from.
func (d *Document) Path() string {
	return d.path
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.pageCount
}

// PageSize returns the native page dimensions in PDF points.
func (d *Document) PageSize(pageIndex int) (width, height float64, err error) {
	if pageIndex < 0 || pageIndex >= d.pageCount {
		return 0, 0, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, pageIndex, d.pageCount)
	}

	bound, err := d.doc.Bound(pageIndex)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read page %d bounds: %w", pageIndex, err)
	}

	return float64(bound.Dx()), float64(bound.Dy()), nil
}

// Rasterize decodes one page into a pixel image at the given DPI.
func (d *Document) Rasterize(pageIndex, dpi int) (*PageImage, error) {
	if pageIndex < 0 || pageIndex >= d.pageCount {
		return nil, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, pageIndex, d.pageCount)
	}

	widthPt, heightPt, err := d.PageSize(pageIndex)
	if err != nil {
		return nil, err
	}

	img, err := d.doc.ImageDPI(pageIndex, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("failed to rasterize page %d at %d DPI: %w", pageIndex, dpi, err)
	}

	return &PageImage{
		Index:    pageIndex,
		DPI:      dpi,
		WidthPt:  widthPt,
		HeightPt: heightPt,
		Pixels:   img,
	}, nil
}

// Close releases the underlying document handle.
func (d *Document) Close() error {
	return d.doc.Close()
}
