package mock

import (
	"fmt"
	"math"
	"sync"

	"image-stylizer/internal/ops"
	"image-stylizer/internal/raster"
)

// Call records a single primitive invocation and the knobs it received
type Call struct {
	Op     string
	Ksize  int
	Sigma  float64
	Alpha  float64
	Beta   float64
	Low    float64
	High   float64
	Level  float64
	Width  int
	Height int
	Interp ops.Interpolation
}

// Provider is a pure Go stand-in for the OpenCV provider.
//
// Blur is the identity, Canny uses a forward-difference gradient with one hysteresis pass,
// and area resizing averages the covered block; everything else matches OpenCV semantics.
type Provider struct {
	// FailOn makes the named operation return an error
	FailOn string

	mu    sync.Mutex
	calls []Call
}

var _ ops.Provider = (*Provider)(nil)

// Calls returns the recorded invocations in order
func (p *Provider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()

	calls := make([]Call, len(p.calls))
	copy(calls, p.calls)
	return calls
}

// CallsTo returns the recorded invocations of a single operation
func (p *Provider) CallsTo(op string) []Call {
	var calls []Call
	for _, call := range p.Calls() {
		if call.Op == op {
			calls = append(calls, call)
		}
	}
	return calls
}

// Reset clears the recorded invocations
func (p *Provider) Reset() {
	p.mu.Lock()
	p.calls = nil
	p.mu.Unlock()
}

func (p *Provider) record(call Call) error {
	p.mu.Lock()
	p.calls = append(p.calls, call)
	p.mu.Unlock()

	if p.FailOn == call.Op {
		return fmt.Errorf("%s failed", call.Op)
	}
	return nil
}

// Name identifies the backing implementation
func (p *Provider) Name() string {
	return "mock"
}

// ToGray collapses RGBA into luminance using rounded luma weights
func (p *Provider) ToGray(src *raster.Image) (*raster.Image, error) {
	if err := p.record(Call{Op: "ToGray"}); err != nil {
		return nil, err
	}
	if src.Layout != raster.RGBA {
		return nil, ops.ErrUnsupportedLayout
	}

	dst := raster.New(src.Width, src.Height, raster.Luminance)
	for i := range dst.Pix {
		r, g, b := float64(src.Pix[i*4]), float64(src.Pix[i*4+1]), float64(src.Pix[i*4+2])
		dst.Pix[i] = saturate(0.299*r + 0.587*g + 0.114*b)
	}
	return dst, nil
}

// ToRGBA replicates luminance into R, G and B with an opaque alpha
func (p *Provider) ToRGBA(src *raster.Image) (*raster.Image, error) {
	if err := p.record(Call{Op: "ToRGBA"}); err != nil {
		return nil, err
	}
	if src.Layout != raster.Luminance {
		return nil, ops.ErrUnsupportedLayout
	}

	dst := raster.New(src.Width, src.Height, raster.RGBA)
	for i, v := range src.Pix {
		dst.Pix[i*4], dst.Pix[i*4+1], dst.Pix[i*4+2], dst.Pix[i*4+3] = v, v, v, 255
	}
	return dst, nil
}

// GaussianBlur records the kernel and returns a copy of src
func (p *Provider) GaussianBlur(src *raster.Image, ksize int, sigma float64) (*raster.Image, error) {
	if err := p.record(Call{Op: "GaussianBlur", Ksize: ksize, Sigma: sigma}); err != nil {
		return nil, err
	}
	return src.Clone(), nil
}

// AddWeighted computes a*alpha + b*beta per sample
func (p *Provider) AddWeighted(a *raster.Image, alpha float64, b *raster.Image, beta float64) (*raster.Image, error) {
	if err := p.record(Call{Op: "AddWeighted", Alpha: alpha, Beta: beta}); err != nil {
		return nil, err
	}
	if !a.SameSize(b) || a.Layout != b.Layout {
		return nil, fmt.Errorf("operands differ")
	}

	dst := raster.New(a.Width, a.Height, a.Layout)
	for i := range dst.Pix {
		dst.Pix[i] = saturate(float64(a.Pix[i])*alpha + float64(b.Pix[i])*beta)
	}
	return dst, nil
}

// ScaleAbs computes |src*alpha + beta| per sample
func (p *Provider) ScaleAbs(src *raster.Image, alpha, beta float64) (*raster.Image, error) {
	if err := p.record(Call{Op: "ScaleAbs", Alpha: alpha, Beta: beta}); err != nil {
		return nil, err
	}

	dst := raster.New(src.Width, src.Height, src.Layout)
	for i, v := range src.Pix {
		dst.Pix[i] = saturate(math.Abs(float64(v)*alpha + beta))
	}
	return dst, nil
}

// Canny marks pixels whose forward-difference gradient passes the thresholds
func (p *Provider) Canny(src *raster.Image, low, high float64) (*raster.Image, error) {
	if err := p.record(Call{Op: "Canny", Low: low, High: high}); err != nil {
		return nil, err
	}
	if src.Layout != raster.Luminance {
		return nil, ops.ErrUnsupportedLayout
	}

	w, h := src.Width, src.Height
	grad := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := float64(src.GrayAt(x, y))
			dx := float64(src.GrayAt(min(x+1, w-1), y)) - v
			dy := float64(src.GrayAt(x, min(y+1, h-1))) - v
			grad[y*w+x] = math.Abs(dx) + math.Abs(dy)
		}
	}

	dst := raster.New(w, h, raster.Luminance)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g := grad[y*w+x]
			if g > high || (g > low && hasStrongNeighbour(grad, w, h, x, y, high)) {
				dst.Pix[y*w+x] = 255
			}
		}
	}
	return dst, nil
}

func hasStrongNeighbour(grad []float64, w, h, x, y int, high float64) bool {
	for ny := max(y-1, 0); ny <= min(y+1, h-1); ny++ {
		for nx := max(x-1, 0); nx <= min(x+1, w-1); nx++ {
			if grad[ny*w+nx] > high {
				return true
			}
		}
	}
	return false
}

// Threshold sets samples strictly above level to 255 and the rest to 0
func (p *Provider) Threshold(src *raster.Image, level float64) (*raster.Image, error) {
	if err := p.record(Call{Op: "Threshold", Level: level}); err != nil {
		return nil, err
	}

	dst := raster.New(src.Width, src.Height, src.Layout)
	for i, v := range src.Pix {
		if float64(v) > level {
			dst.Pix[i] = 255
		}
	}
	return dst, nil
}

// Dilate takes the maximum over a square window anchored at ksize/2
func (p *Provider) Dilate(src *raster.Image, ksize int) (*raster.Image, error) {
	if err := p.record(Call{Op: "Dilate", Ksize: ksize}); err != nil {
		return nil, err
	}
	if src.Layout != raster.Luminance {
		return nil, ops.ErrUnsupportedLayout
	}

	anchor := ksize / 2
	w, h := src.Width, src.Height
	dst := raster.New(w, h, raster.Luminance)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var m byte
			for ky := 0; ky < ksize; ky++ {
				for kx := 0; kx < ksize; kx++ {
					sx, sy := x+kx-anchor, y+ky-anchor
					if sx < 0 || sy < 0 || sx >= w || sy >= h {
						continue
					}
					m = max(m, src.GrayAt(sx, sy))
				}
			}
			dst.Pix[y*w+x] = m
		}
	}
	return dst, nil
}

// Resize resamples with block averaging or nearest-neighbour lookup
func (p *Provider) Resize(src *raster.Image, width, height int, interp ops.Interpolation) (*raster.Image, error) {
	if err := p.record(Call{Op: "Resize", Width: width, Height: height, Interp: interp}); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target dimensions %dx%d", width, height)
	}

	ch := src.Channels()
	dst := raster.New(width, height, src.Layout)
	sx := float64(src.Width) / float64(width)
	sy := float64(src.Height) / float64(height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if interp == ops.InterpolationNearest {
				nx := min(int(math.Floor(float64(x)*sx)), src.Width-1)
				ny := min(int(math.Floor(float64(y)*sy)), src.Height-1)
				copy(dst.Pix[dst.Offset(x, y):dst.Offset(x, y)+ch], src.Pix[src.Offset(nx, ny):src.Offset(nx, ny)+ch])
				continue
			}

			x0, x1 := blockRange(x, sx, src.Width)
			y0, y1 := blockRange(y, sy, src.Height)
			for c := 0; c < ch; c++ {
				sum, n := 0.0, 0
				for yy := y0; yy < y1; yy++ {
					for xx := x0; xx < x1; xx++ {
						sum += float64(src.Pix[src.Offset(xx, yy)+c])
						n++
					}
				}
				dst.Pix[dst.Offset(x, y)+c] = saturate(sum / float64(n))
			}
		}
	}
	return dst, nil
}

func blockRange(i int, scale float64, limit int) (int, int) {
	lo := min(int(math.Floor(float64(i)*scale)), limit-1)
	hi := min(int(math.Ceil(float64(i+1)*scale)), limit)
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

// Invert replaces every sample x with 255-x
func (p *Provider) Invert(src *raster.Image) (*raster.Image, error) {
	if err := p.record(Call{Op: "Invert"}); err != nil {
		return nil, err
	}

	dst := raster.New(src.Width, src.Height, src.Layout)
	for i, v := range src.Pix {
		dst.Pix[i] = 255 - v
	}
	return dst, nil
}

func saturate(v float64) byte {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
