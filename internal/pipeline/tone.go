package pipeline

import (
	"github.com/sirupsen/logrus"

	"image-stylizer/internal/raster"
)

// adjustTone applies the contrast gain and brightness offset derived from light/dark
func (e *Engine) adjustTone(log logrus.FieldLogger, src *raster.Image, lightDark float64) (*raster.Image, error) {
	alpha, beta := contrastCoefficients(lightDark)
	return e.stage(log, "tone", logrus.Fields{"alpha": alpha, "beta": beta}, func() (*raster.Image, error) {
		return e.ops.ScaleAbs(src, alpha, beta)
	})
}
