package pipeline

import (
	"github.com/sirupsen/logrus"

	"image-stylizer/internal/ops"
	"image-stylizer/internal/raster"
)

// ditherMatrix is the 4x4 clustered-dot order, row major
var ditherMatrix = [16]int{
	0, 8, 2, 10,
	12, 4, 14, 6,
	3, 11, 1, 9,
	15, 7, 13, 5,
}

// ditherThresholds holds the matrix normalized to the sample range
var ditherThresholds = func() [16]float64 {
	var t [16]float64
	for i, v := range ditherMatrix {
		t[i] = (float64(v) / 16) * maxSampleValue
	}
	return t
}()

// dither compares every sample against the matrix cell it falls on
func dither(src *raster.Image) *raster.Image {
	dst := raster.New(src.Width, src.Height, raster.Luminance)
	for y := 0; y < src.Height; y++ {
		row := (y % 4) * 4
		for x := 0; x < src.Width; x++ {
			if float64(src.GrayAt(x, y)) > ditherThresholds[row+x%4] {
				dst.Pix[y*src.Width+x] = maxSampleValue
			}
		}
	}
	return dst
}

// halftone shrinks the working image, dithers it, dilates the dots and scales them back
// with nearest-neighbour sampling so the dots keep hard edges
func (e *Engine) halftone(log logrus.FieldLogger, src *raster.Image, thickThin float64) (*raster.Image, error) {
	w, h := scaledSide(src.Width, halftoneScale), scaledSide(src.Height, halftoneScale)

	small, err := e.stage(log, "halftone downscale", logrus.Fields{"interpolation": ops.InterpolationArea.String()}, func() (*raster.Image, error) {
		return e.ops.Resize(src, w, h, ops.InterpolationArea)
	})
	if err != nil {
		return nil, err
	}

	dots, err := e.stage(log, "dither", nil, func() (*raster.Image, error) {
		return dither(small), nil
	})
	if err != nil {
		return nil, err
	}

	dots, err = e.thicken(log, dots, thickThin, comicPolicy)
	if err != nil {
		return nil, err
	}

	return e.stage(log, "halftone upscale", logrus.Fields{"interpolation": ops.InterpolationNearest.String()}, func() (*raster.Image, error) {
		return e.ops.Resize(dots, src.Width, src.Height, ops.InterpolationNearest)
	})
}
