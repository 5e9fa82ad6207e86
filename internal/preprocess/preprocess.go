// Package preprocess cleans raw page rasters before OCR. Scanned receipts
// and documents arrive small, noisy and slightly rotated; each stage here
// targets one of those defects. Stage order is fixed, every stage can be
// switched off independently.
package preprocess

import (
	"fmt"
	"image"
	"log/slog"
)

// Config holds preprocessing toggles and factors.
type Config struct {
	MinWidth  int     // upscale when the narrower dimension is below this
	Sharpness float64 // 1.0 = unchanged
	Contrast  float64 // 1.0 = unchanged

	DisableUpscale   bool
	DisableEnhance   bool
	DisableGrayscale bool
	DisableDenoise   bool
	DisableBinarize  bool
	DisableDeskew    bool
}

func (c *Config) defaults() {
	if c.MinWidth <= 0 {
		c.MinWidth = 1000
	}
	if c.Sharpness <= 0 {
		c.Sharpness = 2.0
	}
	if c.Contrast <= 0 {
		c.Contrast = 1.5
	}
}

// Pipeline applies the preprocessing stages to single page images.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Pipeline with the given configuration.
func New(cfg Config, logger *slog.Logger) *Pipeline {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{cfg: cfg, logger: logger}
}

// Run produces a cleaned raster for OCR. An error (or panic) in any stage
// aborts preprocessing for this page only; callers must fall back to the
// raw image rather than fail the document.
func (p *Pipeline) Run(src image.Image) (out image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("preprocess panic: %v", r)
		}
	}()
	if src == nil {
		return nil, fmt.Errorf("nil source image")
	}
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("empty source image %v", b)
	}

	rgba := toRGBA(src)

	if !p.cfg.DisableUpscale {
		rgba = upscale(rgba, p.cfg.MinWidth)
	}
	if !p.cfg.DisableEnhance {
		rgba = sharpen(rgba, p.cfg.Sharpness)
		rgba = adjustContrast(rgba, p.cfg.Contrast)
	}

	if p.cfg.DisableGrayscale && p.cfg.DisableBinarize && p.cfg.DisableDeskew {
		return rgba, nil
	}

	gray := grayscale(rgba)
	if !p.cfg.DisableDenoise {
		gray = denoise(gray)
	}
	if !p.cfg.DisableBinarize {
		gray = adaptiveThreshold(gray, thresholdWindow, thresholdBias)
	}
	if !p.cfg.DisableDeskew {
		rotated, angle := deskew(gray)
		if rotated != gray {
			p.logger.Debug("deskew applied", "angle_deg", angle)
		}
		gray = rotated
	}
	return gray, nil
}
