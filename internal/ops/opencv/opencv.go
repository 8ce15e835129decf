// OpenCV-backed implementation of the primitive image operations
package opencv

import (
	"fmt"
	"image"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"image-stylizer/internal/ops"
	"image-stylizer/internal/raster"
)

// Provider runs primitives through gocv. It holds no mutable state and is safe for concurrent use.
type Provider struct {
	log logrus.FieldLogger
}

var _ ops.Provider = (*Provider)(nil)

// New checks the OpenCV runtime and returns a provider, or an error when OpenCV is unusable
func New(log logrus.FieldLogger) (*Provider, error) {
	p := &Provider{log: log}

	sample := raster.NewUniform(1, 1, raster.RGBA, 0, 0, 0, 255)
	if _, err := p.ToGray(sample); err != nil {
		return nil, fmt.Errorf("opencv runtime unavailable: %w", err)
	}

	log.WithFields(logrus.Fields{
		"gocv_version":   gocv.Version(),
		"opencv_version": gocv.OpenCVVersion(),
	}).Debug("OpenCV provider initialized")

	return p, nil
}

// Name identifies the backing implementation
func (p *Provider) Name() string {
	return "opencv"
}

// ToGray collapses an RGBA image into a single luminance channel
func (p *Provider) ToGray(src *raster.Image) (*raster.Image, error) {
	if src.Layout != raster.RGBA {
		return nil, fmt.Errorf("to gray: %w: %s", ops.ErrUnsupportedLayout, src.Layout)
	}
	return p.run("to gray", src, raster.Luminance, func(in gocv.Mat, out *gocv.Mat) error {
		return gocv.CvtColor(in, out, gocv.ColorRGBAToGray)
	})
}

// ToRGBA expands a luminance image into RGBA with an opaque alpha channel
func (p *Provider) ToRGBA(src *raster.Image) (*raster.Image, error) {
	if src.Layout != raster.Luminance {
		return nil, fmt.Errorf("to rgba: %w: %s", ops.ErrUnsupportedLayout, src.Layout)
	}
	return p.run("to rgba", src, raster.RGBA, func(in gocv.Mat, out *gocv.Mat) error {
		return gocv.CvtColor(in, out, gocv.ColorGrayToRGBA)
	})
}

// GaussianBlur smooths with a square odd kernel
func (p *Provider) GaussianBlur(src *raster.Image, ksize int, sigma float64) (*raster.Image, error) {
	if ksize < 1 || ksize%2 == 0 {
		return nil, fmt.Errorf("gaussian blur: kernel size must be odd and positive, got %d", ksize)
	}
	return p.run("gaussian blur", src, src.Layout, func(in gocv.Mat, out *gocv.Mat) error {
		return gocv.GaussianBlur(in, out, image.Point{X: ksize, Y: ksize}, sigma, sigma, gocv.BorderDefault)
	})
}

// AddWeighted computes a*alpha + b*beta per sample
func (p *Provider) AddWeighted(a *raster.Image, alpha float64, b *raster.Image, beta float64) (*raster.Image, error) {
	// OpenCV rejects operands that differ in size or type
	other, err := MatFromRaster(b)
	if err != nil {
		return nil, fmt.Errorf("add weighted: %w", err)
	}
	defer other.Close()

	return p.run("add weighted", a, a.Layout, func(in gocv.Mat, out *gocv.Mat) error {
		return gocv.AddWeighted(in, alpha, other, beta, 0, out)
	})
}

// ScaleAbs computes |src*alpha + beta| per sample
func (p *Provider) ScaleAbs(src *raster.Image, alpha, beta float64) (*raster.Image, error) {
	return p.run("scale abs", src, src.Layout, func(in gocv.Mat, out *gocv.Mat) error {
		return gocv.ConvertScaleAbs(in, out, alpha, beta)
	})
}

// Canny runs the OpenCV hysteresis edge detector with a 3x3 Sobel aperture
func (p *Provider) Canny(src *raster.Image, low, high float64) (*raster.Image, error) {
	if src.Layout != raster.Luminance {
		return nil, fmt.Errorf("canny: %w: %s", ops.ErrUnsupportedLayout, src.Layout)
	}
	return p.run("canny", src, raster.Luminance, func(in gocv.Mat, out *gocv.Mat) error {
		return gocv.Canny(in, out, float32(low), float32(high))
	})
}

// Threshold sets samples strictly above level to 255 and the rest to 0
func (p *Provider) Threshold(src *raster.Image, level float64) (*raster.Image, error) {
	return p.run("threshold", src, src.Layout, func(in gocv.Mat, out *gocv.Mat) error {
		gocv.Threshold(in, out, float32(level), 255, gocv.ThresholdBinary)
		return nil
	})
}

// Dilate applies a square structuring element with a centered anchor
func (p *Provider) Dilate(src *raster.Image, ksize int) (*raster.Image, error) {
	if ksize < 1 {
		return nil, fmt.Errorf("dilate: kernel size must be positive, got %d", ksize)
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: ksize, Y: ksize})
	defer kernel.Close()

	return p.run("dilate", src, src.Layout, func(in gocv.Mat, out *gocv.Mat) error {
		return gocv.Dilate(in, out, kernel)
	})
}

// Resize resamples to the given dimensions
func (p *Provider) Resize(src *raster.Image, width, height int, interp ops.Interpolation) (*raster.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("resize: invalid target dimensions %dx%d", width, height)
	}

	flag := gocv.InterpolationArea
	if interp == ops.InterpolationNearest {
		flag = gocv.InterpolationNearestNeighbor
	}

	return p.run("resize", src, src.Layout, func(in gocv.Mat, out *gocv.Mat) error {
		return gocv.Resize(in, out, image.Point{X: width, Y: height}, 0, 0, flag)
	})
}

// Invert replaces every sample x with 255-x
func (p *Provider) Invert(src *raster.Image) (*raster.Image, error) {
	return p.run("invert", src, src.Layout, func(in gocv.Mat, out *gocv.Mat) error {
		return gocv.BitwiseNot(in, out)
	})
}

// run converts src into a Mat, applies fn and converts the result back into a raster with the given layout
func (p *Provider) run(op string, src *raster.Image, layout raster.Layout, fn func(in gocv.Mat, out *gocv.Mat) error) (*raster.Image, error) {
	if err := src.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	in, err := MatFromRaster(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer in.Close()

	out := gocv.NewMat()
	defer out.Close()

	if err := fn(in, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if out.Empty() {
		return nil, fmt.Errorf("%s: opencv returned an empty result", op)
	}

	result, err := RasterFromMat(out, layout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func matType(layout raster.Layout) gocv.MatType {
	if layout == raster.Luminance {
		return gocv.MatTypeCV8UC1
	}
	return gocv.MatTypeCV8UC4
}

// MatFromRaster copies a raster into a new Mat the caller must Close
func MatFromRaster(img *raster.Image) (gocv.Mat, error) {
	mat, err := gocv.NewMatFromBytes(img.Height, img.Width, matType(img.Layout), img.Pix)
	if err != nil {
		return gocv.NewMat(), err
	}
	// Own the samples so the Mat never references Go memory after this call
	owned := mat.Clone()
	mat.Close()
	return owned, nil
}

// RasterFromMat copies an 8-bit Mat with the channel count of layout into a raster
func RasterFromMat(mat gocv.Mat, layout raster.Layout) (*raster.Image, error) {
	if mat.Channels() != layout.Channels() {
		return nil, fmt.Errorf("result has %d channels, want %d", mat.Channels(), layout.Channels())
	}

	img := &raster.Image{
		Width:  mat.Cols(),
		Height: mat.Rows(),
		Layout: layout,
		Pix:    mat.ToBytes(),
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	return img, nil
}
