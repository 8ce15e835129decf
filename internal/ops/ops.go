// Primitive image operations consumed by the filter pipeline
package ops

import (
	"errors"

	"image-stylizer/internal/raster"
)

// Interpolation selects the resampling method used by Resize
type Interpolation int

const (
	// InterpolationArea averages the covered source area, used when shrinking
	InterpolationArea Interpolation = iota
	// InterpolationNearest copies the nearest source sample, keeping hard binary edges
	InterpolationNearest
)

func (i Interpolation) String() string {
	switch i {
	case InterpolationArea:
		return "area"
	case InterpolationNearest:
		return "nearest"
	default:
		return "unknown"
	}
}

// ErrUnsupportedLayout is returned when an operation receives a buffer layout it cannot process
var ErrUnsupportedLayout = errors.New("unsupported buffer layout")

// Provider exposes the conventional image-processing primitives as synchronous functions.
//
// Every operation reads its inputs without modifying them and returns a newly allocated image.
// 8-bit results saturate to [0,255].
type Provider interface {
	// Name identifies the backing implementation
	Name() string

	// ToGray collapses an RGBA image into a single luminance channel
	ToGray(src *raster.Image) (*raster.Image, error)

	// ToRGBA expands a luminance image into RGBA with an opaque alpha channel
	ToRGBA(src *raster.Image) (*raster.Image, error)

	// GaussianBlur smooths with a square odd kernel; sigma 0 derives the deviation from the kernel size
	GaussianBlur(src *raster.Image, ksize int, sigma float64) (*raster.Image, error)

	// AddWeighted computes a*alpha + b*beta per sample
	AddWeighted(a *raster.Image, alpha float64, b *raster.Image, beta float64) (*raster.Image, error)

	// ScaleAbs computes |src*alpha + beta| per sample
	ScaleAbs(src *raster.Image, alpha, beta float64) (*raster.Image, error)

	// Canny runs a hysteresis edge detector on a luminance image, producing 0/255 samples
	Canny(src *raster.Image, low, high float64) (*raster.Image, error)

	// Threshold sets samples strictly above level to 255 and the rest to 0
	Threshold(src *raster.Image, level float64) (*raster.Image, error)

	// Dilate applies a square structuring element with a centered anchor
	Dilate(src *raster.Image, ksize int) (*raster.Image, error)

	// Resize resamples to the given dimensions
	Resize(src *raster.Image, width, height int, interp Interpolation) (*raster.Image, error)

	// Invert replaces every sample x with 255-x
	Invert(src *raster.Image) (*raster.Image, error)
}
