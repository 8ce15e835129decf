package pipeline

import (
	"math"

	"github.com/sirupsen/logrus"

	"image-stylizer/internal/raster"
)

const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// lumaRGBA sets R, G and B of every pixel to its rounded luma, keeping alpha
func lumaRGBA(src *raster.Image) *raster.Image {
	dst := src.Clone()
	for i := 0; i < len(dst.Pix); i += 4 {
		luma := lumaR*float64(dst.Pix[i]) + lumaG*float64(dst.Pix[i+1]) + lumaB*float64(dst.Pix[i+2])
		v := saturate(luma)
		dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2] = v, v, v
	}
	return dst
}

// toLuminance collapses RGBA into the single channel the later stages work on
func (e *Engine) toLuminance(log logrus.FieldLogger, src *raster.Image) (*raster.Image, error) {
	return e.stage(log, "grayscale", nil, func() (*raster.Image, error) {
		return e.ops.ToGray(src)
	})
}

// toDisplay expands a single channel result back into RGBA
func (e *Engine) toDisplay(log logrus.FieldLogger, src *raster.Image) (*raster.Image, error) {
	return e.stage(log, "rgba", nil, func() (*raster.Image, error) {
		return e.ops.ToRGBA(src)
	})
}

func saturate(v float64) byte {
	v = math.Round(v)
	if v <= 0 {
		return 0
	}
	if v >= maxSampleValue {
		return maxSampleValue
	}
	return byte(v)
}
