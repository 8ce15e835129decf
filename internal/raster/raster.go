// Core raster buffer shared by every pipeline stage
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Layout describes how samples are packed for a single pixel
type Layout int

const (
	// RGBA stores four 8-bit samples per pixel in R, G, B, A order
	RGBA Layout = iota
	// Luminance stores a single 8-bit intensity sample per pixel
	Luminance
)

// MaxDimension bounds either side of a buffer to keep allocations sane
const MaxDimension = 16384

// ErrInvalidBuffer is returned when an image does not satisfy its size invariants
var ErrInvalidBuffer = errors.New("invalid raster buffer")

// Channels returns the number of samples per pixel
func (l Layout) Channels() int {
	if l == Luminance {
		return 1
	}
	return 4
}

func (l Layout) String() string {
	switch l {
	case RGBA:
		return "rgba"
	case Luminance:
		return "luminance"
	default:
		return fmt.Sprintf("layout(%d)", int(l))
	}
}

// Image owns a contiguous buffer of 8-bit samples
type Image struct {
	Width  int
	Height int
	Layout Layout
	Pix    []byte
}

// New allocates a zeroed image of the given size and layout
func New(width, height int, layout Layout) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Layout: layout,
		Pix:    make([]byte, width*height*layout.Channels()),
	}
}

// NewUniform allocates an image where every sample of every pixel is set from values,
// which must have one entry per channel
func NewUniform(width, height int, layout Layout, values ...byte) *Image {
	img := New(width, height, layout)
	ch := layout.Channels()
	for i := 0; i < len(img.Pix); i += ch {
		copy(img.Pix[i:i+ch], values)
	}
	return img
}

// Validate checks dimensions and buffer length
func (img *Image) Validate() error {
	if img == nil {
		return fmt.Errorf("%w: image is nil", ErrInvalidBuffer)
	}
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("%w: invalid dimensions %dx%d", ErrInvalidBuffer, img.Width, img.Height)
	}
	if img.Width > MaxDimension || img.Height > MaxDimension {
		return fmt.Errorf("%w: image too large %dx%d (max: %d)", ErrInvalidBuffer, img.Width, img.Height, MaxDimension)
	}
	if img.Layout != RGBA && img.Layout != Luminance {
		return fmt.Errorf("%w: unsupported layout %s", ErrInvalidBuffer, img.Layout)
	}
	if want := img.Width * img.Height * img.Layout.Channels(); len(img.Pix) != want {
		return fmt.Errorf("%w: buffer holds %d samples, want %d", ErrInvalidBuffer, len(img.Pix), want)
	}
	return nil
}

// Channels returns the number of samples per pixel
func (img *Image) Channels() int {
	return img.Layout.Channels()
}

// Stride returns the number of samples in one row
func (img *Image) Stride() int {
	return img.Width * img.Layout.Channels()
}

// Offset returns the index of the first sample of pixel (x, y)
func (img *Image) Offset(x, y int) int {
	return y*img.Stride() + x*img.Layout.Channels()
}

// GrayAt returns the sample of a luminance pixel
func (img *Image) GrayAt(x, y int) byte {
	return img.Pix[y*img.Width+x]
}

// SameSize reports whether both images have identical dimensions
func (img *Image) SameSize(other *Image) bool {
	return img.Width == other.Width && img.Height == other.Height
}

// Clone returns a deep copy
func (img *Image) Clone() *Image {
	pix := make([]byte, len(img.Pix))
	copy(pix, img.Pix)
	return &Image{
		Width:  img.Width,
		Height: img.Height,
		Layout: img.Layout,
		Pix:    pix,
	}
}

// Equal reports whether two images have identical geometry, layout and samples
func (img *Image) Equal(other *Image) bool {
	if img == nil || other == nil {
		return img == other
	}
	return img.SameSize(other) && img.Layout == other.Layout && bytes.Equal(img.Pix, other.Pix)
}

// FromImage copies any image.Image into an RGBA raster with straight, non-premultiplied alpha
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	nrgba, ok := src.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) || nrgba.Stride != 4*b.Dx() {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), src, b.Min, draw.Src)
	}

	img := New(b.Dx(), b.Dy(), RGBA)
	copy(img.Pix, nrgba.Pix)
	return img
}

// ToImage copies the raster into a standard library image
func (img *Image) ToImage() image.Image {
	rect := image.Rect(0, 0, img.Width, img.Height)
	if img.Layout == Luminance {
		gray := image.NewGray(rect)
		copy(gray.Pix, img.Pix)
		return gray
	}

	nrgba := image.NewNRGBA(rect)
	copy(nrgba.Pix, img.Pix)
	return nrgba
}
