package enhance

import (
	"fmt"

	"scanpress/internal/common"
)

// Settings is an immutable snapshot of the enhancement toggles the
// Presentation Layer exposes as checkboxes and sliders.
type Settings struct {
	Grayscale         bool    `json:"grayscale"`
	Contrast          bool    `json:"enhance_contrast"`
	ContrastFactor    float64 `json:"contrast_factor"`
	Brightness        bool    `json:"enhance_brightness"`
	BrightnessFactor  float64 `json:"brightness_factor"`
	Sharpen           bool    `json:"sharpen"`
	Denoise           bool    `json:"denoise"`
	Binarize          bool    `json:"binarize"`
	BinarizeThreshold int     `json:"binarize_threshold"`
}

// DefaultSettings returns enhancement settings with every transform
// disabled and neutral factors.
func DefaultSettings() Settings {
	return Settings{
		ContrastFactor:    1.0,
		BrightnessFactor:  1.0,
		BinarizeThreshold: common.DefaultBinarizeThreshold,
	}
}

// Validate rejects settings that must never reach a run.
func (s Settings) Validate() error {
	if s.BinarizeThreshold < 0 || s.BinarizeThreshold > 255 {
		return fmt.Errorf("binarize threshold must be in [0, 255], got %d", s.BinarizeThreshold)
	}
	if s.Contrast && s.ContrastFactor <= 0 {
		return fmt.Errorf("contrast factor must be > 0, got %g", s.ContrastFactor)
	}
	if s.Brightness && s.BrightnessFactor <= 0 {
		return fmt.Errorf("brightness factor must be > 0, got %g", s.BrightnessFactor)
	}
	return nil
}
