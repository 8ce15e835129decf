package pipeline

import (
	"github.com/sirupsen/logrus"

	"image-stylizer/internal/raster"
)

// detectEdges runs the hysteresis edge detector with thresholds derived from a density fraction
func (e *Engine) detectEdges(log logrus.FieldLogger, src *raster.Image, f float64) (*raster.Image, error) {
	low, high := cannyThresholds(f)
	return e.stage(log, "edges", logrus.Fields{"low": low, "high": high}, func() (*raster.Image, error) {
		return e.ops.Canny(src, low, high)
	})
}

// binarize reduces a single channel buffer to 0/255 at a fixed cut level
func (e *Engine) binarize(log logrus.FieldLogger, src *raster.Image, level float64) (*raster.Image, error) {
	return e.stage(log, "binarize", logrus.Fields{"level": level}, func() (*raster.Image, error) {
		return e.ops.Threshold(src, level)
	})
}

// invert renders dark lines on a light background
func (e *Engine) invert(log logrus.FieldLogger, src *raster.Image) (*raster.Image, error) {
	return e.stage(log, "invert", nil, func() (*raster.Image, error) {
		return e.ops.Invert(src)
	})
}
