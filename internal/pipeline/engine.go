// Filter pipeline engine: dispatches a style to its fixed stage composition
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"image-stylizer/internal/ops"
	"image-stylizer/internal/raster"
)

// Engine renders stylized images. It keeps no state between calls and is safe for concurrent use
// as long as callers do not share mutable source buffers.
type Engine struct {
	ops ops.Provider
	log logrus.FieldLogger
}

// New returns an engine backed by the given primitive provider
func New(provider ops.Provider, log logrus.FieldLogger) (*Engine, error) {
	if provider == nil {
		return nil, errors.New("image operations provider is required")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Engine{
		ops: provider,
		log: log.WithField("provider", provider.Name()),
	}, nil
}

// Render produces the stylized rendition of src. The source is never modified and the result
// always has the source dimensions in RGBA layout.
func (e *Engine) Render(src *raster.Image, style Style, params Params) (*raster.Image, error) {
	if err := src.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if src.Layout != raster.RGBA {
		return nil, fmt.Errorf("%w: source must be rgba, got %s", ErrInvalidInput, src.Layout)
	}

	p := params.Clamped()
	log := e.log.WithFields(logrus.Fields{
		"style":  style.String(),
		"width":  src.Width,
		"height": src.Height,
	})

	start := time.Now()
	var (
		result *raster.Image
		err    error
	)

	switch style {
	case StyleNone:
		result = src.Clone()
	case StyleGrayscale:
		result, err = e.renderGrayscale(log, src)
	case StyleEtching:
		result, err = e.renderEtching(log, src, p)
	case StyleStamp:
		result, err = e.renderStamp(log, src, p)
	case StyleComic:
		result, err = e.renderComic(log, src, p)
	default:
		return nil, fmt.Errorf("%w: unknown style %d", ErrInvalidInput, int(style))
	}

	if err != nil {
		log.WithError(err).Error("Render failed")
		return nil, err
	}
	if !result.SameSize(src) || result.Layout != raster.RGBA {
		return nil, fmt.Errorf("%s produced %dx%d %s, want %dx%d rgba",
			style, result.Width, result.Height, result.Layout, src.Width, src.Height)
	}

	log.WithField("duration", time.Since(start)).Debug("Render completed")
	return result, nil
}

// stage runs a single step, logging its knobs and duration, and names it in any error
func (e *Engine) stage(log logrus.FieldLogger, name string, fields logrus.Fields, fn func() (*raster.Image, error)) (*raster.Image, error) {
	start := time.Now()
	out, err := fn()
	if err != nil {
		return nil, fmt.Errorf("%s stage: %w", name, err)
	}

	log.WithFields(fields).WithFields(logrus.Fields{
		"stage":    name,
		"duration": time.Since(start),
		"output":   fmt.Sprintf("%dx%d", out.Width, out.Height),
	}).Debug("Stage completed")
	return out, nil
}
