package metrics

import (
	"image"
	"math"

	"gocv.io/x/gocv"

	"image-stylizer/internal/raster"
)

// inkLevel is the intensity below which a pixel counts as ink
const inkLevel = 128

// MSE is the mean squared luma difference
type MSE struct{}

func (m *MSE) Calculate(original, processed *raster.Image) (float64, error) {
	a, b, err := pair(original, processed)
	if err != nil {
		return 0, err
	}
	defer a.Close()
	defer b.Close()

	return mse(a, b), nil
}

func mse(a, b gocv.Mat) float64 {
	return gocv.NormWithMats(a, b, gocv.NormL2Sqr) / float64(a.Total())
}

func (m *MSE) Name() string              { return "MSE" }
func (m *MSE) Description() string       { return "Mean Squared Error" }
func (m *MSE) Range() (float64, float64) { return 0, 65025 }
func (m *MSE) HigherIsBetter() bool      { return false }

// PSNR is the peak signal-to-noise ratio of the luma planes, +Inf for identical images
type PSNR struct{}

func (p *PSNR) Calculate(original, processed *raster.Image) (float64, error) {
	a, b, err := pair(original, processed)
	if err != nil {
		return 0, err
	}
	defer a.Close()
	defer b.Close()

	m := mse(a, b)
	if m == 0 {
		return math.Inf(1), nil
	}
	return 20 * math.Log10(255/math.Sqrt(m)), nil
}

func (p *PSNR) Name() string              { return "PSNR" }
func (p *PSNR) Description() string       { return "Peak Signal-to-Noise Ratio" }
func (p *PSNR) Range() (float64, float64) { return 0, 100 }
func (p *PSNR) HigherIsBetter() bool      { return true }

// SSIM is the mean structural similarity of the luma planes over 11x11 gaussian windows
type SSIM struct{}

func (s *SSIM) Calculate(original, processed *raster.Image) (float64, error) {
	a, b, err := pair(original, processed)
	if err != nil {
		return 0, err
	}
	defer a.Close()
	defer b.Close()

	return ssim(a, b)
}

// ssimMaps tracks every intermediate matrix and the first failure
type ssimMaps struct {
	mats []*gocv.Mat
	err  error
}

func (m *ssimMaps) alloc() *gocv.Mat {
	mat := gocv.NewMat()
	m.mats = append(m.mats, &mat)
	return &mat
}

func (m *ssimMaps) Close() {
	for _, mat := range m.mats {
		mat.Close()
	}
}

func (m *ssimMaps) float(src gocv.Mat) *gocv.Mat {
	dst := m.alloc()
	if m.err == nil {
		m.err = src.ConvertTo(dst, gocv.MatTypeCV32F)
	}
	return dst
}

func (m *ssimMaps) blur(src *gocv.Mat) *gocv.Mat {
	dst := m.alloc()
	if m.err == nil {
		m.err = gocv.GaussianBlur(*src, dst, image.Pt(11, 11), 1.5, 1.5, gocv.BorderDefault)
	}
	return dst
}

func (m *ssimMaps) mul(x, y *gocv.Mat) *gocv.Mat {
	dst := m.alloc()
	if m.err == nil {
		m.err = gocv.Multiply(*x, *y, dst)
	}
	return dst
}

func (m *ssimMaps) sub(x, y *gocv.Mat) *gocv.Mat {
	dst := m.alloc()
	if m.err == nil {
		m.err = gocv.Subtract(*x, *y, dst)
	}
	return dst
}

// affine returns alpha*x + beta
func (m *ssimMaps) affine(x *gocv.Mat, alpha, beta float32) *gocv.Mat {
	dst := m.alloc()
	if m.err == nil {
		m.err = x.ConvertToWithParams(dst, gocv.MatTypeCV32F, alpha, beta)
	}
	return dst
}

// sum returns x + y + gamma
func (m *ssimMaps) sum(x, y *gocv.Mat, gamma float64) *gocv.Mat {
	dst := m.alloc()
	if m.err == nil {
		m.err = gocv.AddWeighted(*x, 1, *y, 1, gamma, dst)
	}
	return dst
}

func (m *ssimMaps) div(x, y *gocv.Mat) *gocv.Mat {
	dst := m.alloc()
	if m.err == nil {
		m.err = gocv.Divide(*x, *y, dst)
	}
	return dst
}

func ssim(a, b gocv.Mat) (float64, error) {
	const (
		c1 = 6.5025  // (0.01 * 255)^2
		c2 = 58.5225 // (0.03 * 255)^2
	)

	m := &ssimMaps{}
	defer m.Close()

	f1, f2 := m.float(a), m.float(b)

	mu1, mu2 := m.blur(f1), m.blur(f2)
	mu1Sq, mu2Sq, mu1Mu2 := m.mul(mu1, mu1), m.mul(mu2, mu2), m.mul(mu1, mu2)

	sigma1Sq := m.sub(m.blur(m.mul(f1, f1)), mu1Sq)
	sigma2Sq := m.sub(m.blur(m.mul(f2, f2)), mu2Sq)
	sigma12 := m.sub(m.blur(m.mul(f1, f2)), mu1Mu2)

	numerator := m.mul(m.affine(mu1Mu2, 2, c1), m.affine(sigma12, 2, c2))
	denominator := m.mul(m.sum(mu1Sq, mu2Sq, c1), m.sum(sigma1Sq, sigma2Sq, c2))
	ssimMap := m.div(numerator, denominator)
	if m.err != nil {
		return 0, m.err
	}

	return ssimMap.Mean().Val1, nil
}

func (s *SSIM) Name() string              { return "SSIM" }
func (s *SSIM) Description() string       { return "Structural Similarity Index" }
func (s *SSIM) Range() (float64, float64) { return 0, 1 }
func (s *SSIM) HigherIsBetter() bool      { return true }

// InkCoverage is the fraction of processed pixels darker than mid gray
type InkCoverage struct{}

func (c *InkCoverage) Calculate(_, processed *raster.Image) (float64, error) {
	gray, err := lumaMat(processed)
	if err != nil {
		return 0, err
	}
	defer gray.Close()

	ink := gocv.NewMat()
	defer ink.Close()
	gocv.Threshold(gray, &ink, inkLevel-1, 255, gocv.ThresholdBinaryInv)

	return float64(gocv.CountNonZero(ink)) / float64(gray.Total()), nil
}

func (c *InkCoverage) Name() string              { return "Ink coverage" }
func (c *InkCoverage) Description() string       { return "Fraction of dark pixels in the rendition" }
func (c *InkCoverage) Range() (float64, float64) { return 0, 1 }
func (c *InkCoverage) HigherIsBetter() bool      { return false }

// MeanIntensity is the average luma of the rendition
type MeanIntensity struct{}

func (m *MeanIntensity) Calculate(_, processed *raster.Image) (float64, error) {
	gray, err := lumaMat(processed)
	if err != nil {
		return 0, err
	}
	defer gray.Close()

	mean, _, err := meanStdDev(gray)
	return mean, err
}

func (m *MeanIntensity) Name() string              { return "Mean intensity" }
func (m *MeanIntensity) Description() string       { return "Average luma of the rendition" }
func (m *MeanIntensity) Range() (float64, float64) { return 0, 255 }
func (m *MeanIntensity) HigherIsBetter() bool      { return true }

// Contrast is the luma standard deviation of the rendition relative to the source.
// A flat source yields 0 for a flat rendition and +Inf otherwise.
type Contrast struct{}

func (c *Contrast) Calculate(original, processed *raster.Image) (float64, error) {
	a, b, err := pair(original, processed)
	if err != nil {
		return 0, err
	}
	defer a.Close()
	defer b.Close()

	_, before, err := meanStdDev(a)
	if err != nil {
		return 0, err
	}
	_, after, err := meanStdDev(b)
	if err != nil {
		return 0, err
	}

	if before == 0 {
		if after == 0 {
			return 0, nil
		}
		return math.Inf(1), nil
	}
	return after / before, nil
}

func (c *Contrast) Name() string              { return "Contrast" }
func (c *Contrast) Description() string       { return "Luma standard deviation relative to the source" }
func (c *Contrast) Range() (float64, float64) { return 0, 10 }
func (c *Contrast) HigherIsBetter() bool      { return true }
