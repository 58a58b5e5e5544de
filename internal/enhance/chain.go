package enhance

import "image"

type stepKind int

const (
	stepGrayscale stepKind = iota
	stepContrast
	stepBrightness
	stepSharpen
	stepDenoise
	stepBinarize
)

// step is one enabled transform. Steps carry their own parameters so a
// chain is self-contained once built.
type step struct {
	kind      stepKind
	factor    float64
	threshold int
}

// Chain is the ordered list of enabled transforms for one run. The
// order is fixed by construction: grayscale, contrast, brightness,
// sharpen, denoise, binarize. Each transform changes the pixel
// statistics the next one sees, and binarization is destructive, so it
// always runs last on the fully enhanced image.
type Chain struct {
	steps []step
}

// NewChain validates the settings and builds the transform chain.
// Disabled transforms are not represented at all; an all-disabled
// chain is a passthrough.
func NewChain(s Settings) (*Chain, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	c := &Chain{}
	if s.Grayscale {
		c.steps = append(c.steps, step{kind: stepGrayscale})
	}
	if s.Contrast {
		c.steps = append(c.steps, step{kind: stepContrast, factor: s.ContrastFactor})
	}
	if s.Brightness {
		c.steps = append(c.steps, step{kind: stepBrightness, factor: s.BrightnessFactor})
	}
	if s.Sharpen {
		c.steps = append(c.steps, step{kind: stepSharpen})
	}
	if s.Denoise {
		c.steps = append(c.steps, step{kind: stepDenoise})
	}
	if s.Binarize {
		c.steps = append(c.steps, step{kind: stepBinarize, threshold: s.BinarizeThreshold})
	}
	return c, nil
}

// Len returns the number of enabled transforms.
func (c *Chain) Len() int {
	return len(c.steps)
}

// Apply runs the chain over one page raster. The input image is never
// mutated; Apply is deterministic for identical input and settings.
func (c *Chain) Apply(img image.Image) image.Image {
	out := img
	for _, st := range c.steps {
		switch st.kind {
		case stepGrayscale:
			out = grayscale(out)
		case stepContrast:
			out = adjustContrast(out, st.factor)
		case stepBrightness:
			out = adjustBrightness(out, st.factor)
		case stepSharpen:
			out = sharpen(out)
		case stepDenoise:
			out = medianFilter(out)
		case stepBinarize:
			out = binarize(out, st.threshold)
		}
	}
	return out
}
