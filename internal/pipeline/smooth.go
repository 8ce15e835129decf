package pipeline

import (
	"github.com/sirupsen/logrus"

	"image-stylizer/internal/raster"
)

// smoothSharp blurs below the boundary and applies unsharp masking at or above it
func (e *Engine) smoothSharp(log logrus.FieldLogger, src *raster.Image, f float64) (*raster.Image, error) {
	if f < smoothSharpBoundary {
		k := fitOddKernel(blurKernelSize(f), src.Width, src.Height)
		return e.stage(log, "smooth", logrus.Fields{"kernel": k}, func() (*raster.Image, error) {
			return e.ops.GaussianBlur(src, k, 0)
		})
	}

	k := fitOddKernel(unsharpKernel, src.Width, src.Height)
	alpha, beta := unsharpWeights(f)
	return e.stage(log, "sharpen", logrus.Fields{"kernel": k, "alpha": alpha, "beta": beta}, func() (*raster.Image, error) {
		blurred, err := e.ops.GaussianBlur(src, k, 0)
		if err != nil {
			return nil, err
		}
		return e.ops.AddWeighted(src, alpha, blurred, beta)
	})
}
