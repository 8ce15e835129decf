package raster_test

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"image-stylizer/internal/raster"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		Name  string
		Image *raster.Image
		Valid bool
	}{
		{"rgba", raster.New(3, 2, raster.RGBA), true},
		{"luminance", raster.New(1, 1, raster.Luminance), true},
		{"nil", nil, false},
		{"zero width", &raster.Image{Width: 0, Height: 4, Layout: raster.RGBA}, false},
		{"zero height", &raster.Image{Width: 4, Height: 0, Layout: raster.Luminance}, false},
		{"short buffer", &raster.Image{Width: 2, Height: 2, Layout: raster.RGBA, Pix: make([]byte, 15)}, false},
		{"wrong layout", &raster.Image{Width: 1, Height: 1, Layout: raster.Layout(7), Pix: make([]byte, 4)}, false},
		{"too large", &raster.Image{Width: raster.MaxDimension + 1, Height: 1, Layout: raster.Luminance}, false},
	}

	for _, test := range tests {
		err := test.Image.Validate()
		if test.Valid && err != nil {
			t.Errorf("%s: unexpected error %s", test.Name, err)
		}
		if !test.Valid {
			if err == nil {
				t.Errorf("%s: expected error", test.Name)
			} else if !errors.Is(err, raster.ErrInvalidBuffer) {
				t.Errorf("%s: wrong error %s", test.Name, err)
			}
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	img := raster.NewUniform(2, 2, raster.RGBA, 10, 20, 30, 255)
	clone := img.Clone()
	if !img.Equal(clone) {
		t.Fatal("clone differs from source")
	}

	clone.Pix[0] = 99
	if img.Pix[0] != 10 {
		t.Fatal("clone shares the source buffer")
	}
	if img.Equal(clone) {
		t.Fatal("modified clone still equal")
	}
}

func TestNewUniform(t *testing.T) {
	img := raster.NewUniform(3, 1, raster.RGBA, 1, 2, 3, 4)
	want := []byte{1, 2, 3, 4, 1, 2, 3, 4, 1, 2, 3, 4}
	for i := range want {
		if img.Pix[i] != want[i] {
			t.Fatalf("wrong sample at %d: %d", i, img.Pix[i])
		}
	}

	gray := raster.NewUniform(2, 2, raster.Luminance, 77)
	if gray.GrayAt(1, 1) != 77 {
		t.Fatalf("wrong gray sample %d", gray.GrayAt(1, 1))
	}
}

func TestImageRoundTrip(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 5, 8, 7))
	for y := 5; y < 7; y++ {
		for x := 5; x < 8; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 10), B: 200, A: uint8(100 + x)})
		}
	}

	img := raster.FromImage(src)
	if img.Width != 3 || img.Height != 2 || img.Layout != raster.RGBA {
		t.Fatalf("wrong geometry %dx%d %s", img.Width, img.Height, img.Layout)
	}

	off := img.Offset(1, 1)
	if img.Pix[off] != 60 || img.Pix[off+1] != 60 || img.Pix[off+2] != 200 || img.Pix[off+3] != 106 {
		t.Fatalf("wrong pixel %v", img.Pix[off:off+4])
	}

	back := raster.FromImage(img.ToImage())
	if !back.Equal(img) {
		t.Fatal("round trip through image.NRGBA changed samples")
	}

	// Premultiplied sources come out with straight alpha
	premultiplied := image.NewRGBA(image.Rect(0, 0, 1, 1))
	premultiplied.SetRGBA(0, 0, color.RGBA{R: 64, G: 32, B: 0, A: 128})
	straight := raster.FromImage(premultiplied)
	if straight.Pix[0] != 127 || straight.Pix[1] != 63 || straight.Pix[2] != 0 || straight.Pix[3] != 128 {
		t.Fatalf("wrong straight alpha pixel %v", straight.Pix)
	}

	gray := raster.NewUniform(2, 2, raster.Luminance, 128)
	if _, ok := gray.ToImage().(*image.Gray); !ok {
		t.Fatal("luminance raster should convert to *image.Gray")
	}
}
