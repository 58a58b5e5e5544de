package compress

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"

	xdraw "golang.org/x/image/draw"

	"scanpress/internal/common"
	"scanpress/internal/pdfio"
)

// Output image formats understood by the output assembler.
const (
	FormatJPEG = "JPEG"
	FormatPNG  = "PNG"
)

// Settings controls the re-encoding of an enhanced page image.
type Settings struct {
	TargetDPI   int `json:"dpi"`
	JPEGQuality int `json:"quality"`
}

// DefaultSettings returns the standard scanned-document settings.
func DefaultSettings() Settings {
	return Settings{
		TargetDPI:   common.DefaultDPI,
		JPEGQuality: common.DefaultJPEGQuality,
	}
}

// Validate rejects settings that must never reach a run.
func (s Settings) Validate() error {
	if s.TargetDPI <= 0 {
		return fmt.Errorf("target DPI must be > 0, got %d", s.TargetDPI)
	}
	if s.JPEGQuality < 1 || s.JPEGQuality > 100 {
		return fmt.Errorf("JPEG quality must be in [1, 100], got %d", s.JPEGQuality)
	}
	return nil
}

// Compressor re-encodes enhanced page images at the target resolution
// and quality. When lossless is set (binarized output) pages are
// encoded as PNG instead of JPEG, which would smear hard black/white
// edges.
type Compressor struct {
	settings Settings
	lossless bool
	logger   *slog.Logger
}

// New creates a compressor, validating the settings up front.
func New(settings Settings, lossless bool, logger *slog.Logger) (*Compressor, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Compressor{
		settings: settings,
		lossless: lossless,
		logger:   logger,
	}, nil
}

// Compress resamples the page to the target DPI if needed and encodes
// it, returning the bytes for output assembly.
func (c *Compressor) Compress(page *pdfio.PageImage) (*pdfio.EncodedPage, error) {
	if page == nil || page.Pixels == nil {
		return nil, fmt.Errorf("%w: page %v has no raster", pdfio.ErrEncode, page)
	}

	img := page.Pixels
	if page.DPI != c.settings.TargetDPI {
		img = resample(img, page.DPI, c.settings.TargetDPI)
	}

	format := FormatJPEG
	var buf bytes.Buffer
	var err error
	if c.lossless {
		format = FormatPNG
		err = png.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.settings.JPEGQuality})
	}
	if err != nil {
		return nil, fmt.Errorf("%w: page %d as %s: %v", pdfio.ErrEncode, page.Index, format, err)
	}

	c.logger.Debug("Page compressed",
		"page", page.Index,
		"format", format,
		"bytes", buf.Len())

	return &pdfio.EncodedPage{
		Index:    page.Index,
		Data:     buf.Bytes(),
		Format:   format,
		WidthPt:  page.WidthPt,
		HeightPt: page.HeightPt,
	}, nil
}

// resample rescales by the DPI ratio with Catmull-Rom interpolation.
// Downscaling is the expected direction; upscaling works but is not
// what the settings surface is tuned for.
func resample(img image.Image, fromDPI, toDPI int) image.Image {
	b := img.Bounds()
	w := b.Dx() * toDPI / fromDPI
	h := b.Dy() * toDPI / fromDPI
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if w == b.Dx() && h == b.Dy() {
		return img
	}

	switch img.(type) {
	case *image.Gray:
		dst := image.NewGray(image.Rect(0, 0, w, h))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
		return dst
	default:
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
		return dst
	}
}
