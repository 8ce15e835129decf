package pipeline

import (
	"github.com/sirupsen/logrus"

	"image-stylizer/internal/ops"
	"image-stylizer/internal/raster"
)

func (e *Engine) renderGrayscale(log logrus.FieldLogger, src *raster.Image) (*raster.Image, error) {
	return e.stage(log, "grayscale", nil, func() (*raster.Image, error) {
		return lumaRGBA(src), nil
	})
}

// renderEtching draws dark edge lines on a white background
func (e *Engine) renderEtching(log logrus.FieldLogger, src *raster.Image, p Params) (*raster.Image, error) {
	f := fraction(p.EtchingThreshold)

	img, err := e.toLuminance(log, src)
	if err != nil {
		return nil, err
	}

	k := fitOddKernel(etchingKernel, img.Width, img.Height)
	img, err = e.stage(log, "smooth", logrus.Fields{"kernel": k}, func() (*raster.Image, error) {
		return e.ops.GaussianBlur(img, k, 0)
	})
	if err != nil {
		return nil, err
	}

	if img, err = e.detectEdges(log, img, f); err != nil {
		return nil, err
	}
	if img, err = e.binarize(log, img, etchingLevel(f)); err != nil {
		return nil, err
	}
	if img, err = e.invert(log, img); err != nil {
		return nil, err
	}

	return e.toDisplay(log, img)
}

// renderStamp produces thick two-tone edge art without halftone
func (e *Engine) renderStamp(log logrus.FieldLogger, src *raster.Image, p Params) (*raster.Image, error) {
	img, err := e.toLuminance(log, src)
	if err != nil {
		return nil, err
	}

	if img, err = e.smoothSharp(log, img, fraction(p.SmoothSharp)); err != nil {
		return nil, err
	}
	if img, err = e.detectEdges(log, img, fraction(p.DenseSparse)); err != nil {
		return nil, err
	}
	if img, err = e.binarize(log, img, stampLevel(fraction(p.LightDark))); err != nil {
		return nil, err
	}
	if img, err = e.thicken(log, img, fraction(p.ThickThin), stampPolicy); err != nil {
		return nil, err
	}

	return e.toDisplay(log, img)
}

// renderComic produces halftone dots. Sources wider or taller than comicMaxSide are worked on
// at reduced size and scaled back at the end.
func (e *Engine) renderComic(log logrus.FieldLogger, src *raster.Image, p Params) (*raster.Image, error) {
	working := src
	downscaled := src.Width > comicMaxSide || src.Height > comicMaxSide
	if downscaled {
		w, h := scaledSide(src.Width, comicScale), scaledSide(src.Height, comicScale)
		var err error
		working, err = e.stage(log, "downscale", logrus.Fields{"interpolation": ops.InterpolationArea.String()}, func() (*raster.Image, error) {
			return e.ops.Resize(src, w, h, ops.InterpolationArea)
		})
		if err != nil {
			return nil, err
		}
	}

	img, err := e.toLuminance(log, working)
	if err != nil {
		return nil, err
	}

	if img, err = e.smoothSharp(log, img, fraction(p.SmoothSharp)); err != nil {
		return nil, err
	}
	if img, err = e.adjustTone(log, img, fraction(p.LightDark)); err != nil {
		return nil, err
	}
	if img, err = e.halftone(log, img, fraction(p.ThickThin)); err != nil {
		return nil, err
	}

	if downscaled {
		img, err = e.stage(log, "upscale", logrus.Fields{"interpolation": ops.InterpolationNearest.String()}, func() (*raster.Image, error) {
			return e.ops.Resize(img, src.Width, src.Height, ops.InterpolationNearest)
		})
		if err != nil {
			return nil, err
		}
	}

	return e.toDisplay(log, img)
}
