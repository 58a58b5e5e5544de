package pipeline

import (
	"fmt"
	"log/slog"

	"scanpress/internal/compress"
	"scanpress/internal/enhance"
	"scanpress/internal/pdfio"
)

// PreviewPage renders a single page through the same enhance/compress
// chain a run would use and returns the encoded image. Because the
// bytes go through the real encoder, the preview carries the actual
// compression artifacts the output will have.
func PreviewPage(inputPath string, pageIndex int, enhancement enhance.Settings, compression compress.Settings, logger *slog.Logger) (*pdfio.EncodedPage, error) {
	chain, err := enhance.NewChain(enhancement)
	if err != nil {
		return nil, fmt.Errorf("invalid enhancement settings: %w", err)
	}

	compressor, err := compress.New(compression, enhancement.Binarize, logger)
	if err != nil {
		return nil, fmt.Errorf("invalid compression settings: %w", err)
	}

	doc, err := pdfio.Open(inputPath)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	raster, err := doc.Rasterize(pageIndex, compression.TargetDPI)
	if err != nil {
		return nil, err
	}

	raster.Pixels = chain.Apply(raster.Pixels)

	return compressor.Compress(raster)
}
