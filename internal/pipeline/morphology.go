package pipeline

import (
	"github.com/sirupsen/logrus"

	"image-stylizer/internal/raster"
)

// dilationPolicy selects the per-style kernel formula
type dilationPolicy int

const (
	stampPolicy dilationPolicy = iota
	comicPolicy
)

func (p dilationPolicy) String() string {
	if p == comicPolicy {
		return "comic"
	}
	return "stamp"
}

// thicken dilates a two-tone buffer. Under the stamp policy values at or below the boundary
// return src itself: strokes are never eroded.
func (e *Engine) thicken(log logrus.FieldLogger, src *raster.Image, thickThin float64, policy dilationPolicy) (*raster.Image, error) {
	var k int
	switch policy {
	case stampPolicy:
		var active bool
		if k, active = stampDilationKernel(thickThin); !active {
			log.WithFields(logrus.Fields{"stage": "morphology", "policy": policy.String()}).Debug("Stage skipped")
			return src, nil
		}
	case comicPolicy:
		k = comicDilationKernel(thickThin)
	}

	k = fitKernel(k, src.Width, src.Height)
	return e.stage(log, "morphology", logrus.Fields{"kernel": k, "policy": policy.String()}, func() (*raster.Image, error) {
		return e.ops.Dilate(src, k)
	})
}
