package opencv_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"image-stylizer/internal/ops"
	"image-stylizer/internal/ops/opencv"
	"image-stylizer/internal/pipeline"
	"image-stylizer/internal/raster"
)

func setup(t *testing.T) *opencv.Provider {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	provider, err := opencv.New(log)
	if err != nil {
		t.Fatal(err)
	}
	return provider
}

func uniform(t *testing.T, img *raster.Image, expected byte) {
	t.Helper()
	for i, v := range img.Pix {
		if v != expected {
			t.Fatalf("sample %d: expected %d, got %d", i, expected, v)
		}
	}
}

func TestColorConversion(t *testing.T) {
	provider := setup(t)

	gray, err := provider.ToGray(raster.NewUniform(3, 2, raster.RGBA, 128, 128, 128, 255))
	if err != nil {
		t.Fatal(err)
	}
	if gray.Layout != raster.Luminance || gray.Width != 3 || gray.Height != 2 {
		t.Fatalf("wrong result: %dx%d %s", gray.Width, gray.Height, gray.Layout)
	}
	uniform(t, gray, 128)

	rgba, err := provider.ToRGBA(gray)
	if err != nil {
		t.Fatal(err)
	}
	if !rgba.Equal(raster.NewUniform(3, 2, raster.RGBA, 128, 128, 128, 255)) {
		t.Fatalf("wrong rgba: %v", rgba.Pix)
	}

	if _, err := provider.ToRGBA(rgba); !errors.Is(err, ops.ErrUnsupportedLayout) {
		t.Fatalf("expected unsupported layout, got %v", err)
	}
}

func TestThresholdIsStrict(t *testing.T) {
	provider := setup(t)

	src := raster.New(3, 1, raster.Luminance)
	copy(src.Pix, []byte{95, 96, 97})

	out, err := provider.Threshold(src, 96)
	if err != nil {
		t.Fatal(err)
	}

	expected := []byte{0, 0, 255}
	for i := range expected {
		if out.Pix[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, out.Pix)
		}
	}
}

func TestInvert(t *testing.T) {
	provider := setup(t)

	out, err := provider.Invert(raster.NewUniform(2, 2, raster.Luminance, 40))
	if err != nil {
		t.Fatal(err)
	}
	uniform(t, out, 215)
}

func TestDilateGrowsWhite(t *testing.T) {
	provider := setup(t)

	src := raster.New(5, 5, raster.Luminance)
	src.Pix[2*5+2] = 255

	out, err := provider.Dilate(src, 3)
	if err != nil {
		t.Fatal(err)
	}

	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			want := byte(0)
			if x >= 1 && x <= 3 && y >= 1 && y <= 3 {
				want = 255
			}
			if got := out.GrayAt(x, y); got != want {
				t.Errorf("(%d,%d): expected %d, got %d", x, y, want, got)
			}
		}
	}
	if src.Pix[0] != 0 || src.Pix[2*5+2] != 255 {
		t.Fatal("source modified")
	}
}

func TestCannyFlat(t *testing.T) {
	provider := setup(t)

	out, err := provider.Canny(raster.NewUniform(8, 8, raster.Luminance, 128), 37.5, 112.5)
	if err != nil {
		t.Fatal(err)
	}
	uniform(t, out, 0)
}

func TestResize(t *testing.T) {
	provider := setup(t)

	tests := []struct {
		interp        ops.Interpolation
		width, height int
	}{
		{ops.InterpolationArea, 2, 3},
		{ops.InterpolationNearest, 9, 11},
	}

	for _, test := range tests {
		out, err := provider.Resize(raster.NewUniform(4, 6, raster.Luminance, 100), test.width, test.height, test.interp)
		if err != nil {
			t.Errorf("%s: %s", test.interp, err)
			continue
		}
		if out.Width != test.width || out.Height != test.height {
			t.Errorf("%s: wrong size %dx%d", test.interp, out.Width, out.Height)
			continue
		}
		uniform(t, out, 100)
	}

	if _, err := provider.Resize(raster.New(2, 2, raster.Luminance), 0, 2, ops.InterpolationArea); err == nil {
		t.Fatal("expected error")
	}
}

func TestAddWeightedOperandMismatch(t *testing.T) {
	provider := setup(t)

	tests := []struct {
		Name string
		A    *raster.Image
		B    *raster.Image
	}{
		{"size", raster.New(4, 4, raster.Luminance), raster.New(3, 3, raster.Luminance)},
		{"layout", raster.New(4, 4, raster.Luminance), raster.New(4, 4, raster.RGBA)},
	}

	for _, test := range tests {
		out, err := provider.AddWeighted(test.A, 1.5, test.B, -0.5)
		if err == nil {
			t.Errorf("%s: expected an opencv error", test.Name)
			continue
		}
		if out != nil {
			t.Errorf("%s: partial result returned", test.Name)
		}
		if !strings.HasPrefix(err.Error(), "add weighted: ") {
			t.Errorf("%s: error not wrapped with the operation: %v", test.Name, err)
		}
	}

	out, err := provider.AddWeighted(raster.NewUniform(2, 2, raster.Luminance, 100), 1.5, raster.NewUniform(2, 2, raster.Luminance, 100), -0.5)
	if err != nil {
		t.Fatal(err)
	}
	uniform(t, out, 100)
}

func TestKernelValidation(t *testing.T) {
	provider := setup(t)
	src := raster.New(4, 4, raster.Luminance)

	if _, err := provider.GaussianBlur(src, 4, 0); err == nil {
		t.Error("expected error for even kernel")
	}
	if _, err := provider.Dilate(src, 0); err == nil {
		t.Error("expected error for empty kernel")
	}
	if _, err := provider.GaussianBlur(src, 3, 0); err != nil {
		t.Error(err)
	}
}

func TestEngineFlatEtching(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	engine, err := pipeline.New(setup(t), log)
	if err != nil {
		t.Fatal(err)
	}

	out, err := engine.Render(raster.NewUniform(4, 4, raster.RGBA, 128, 128, 128, 255), pipeline.StyleEtching, pipeline.Params{EtchingThreshold: 25})
	if err != nil {
		t.Fatal(err)
	}
	uniform(t, out, 255)
}

func TestEngineStylesOnOpenCV(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	engine, err := pipeline.New(setup(t), log)
	if err != nil {
		t.Fatal(err)
	}

	src := raster.New(37, 23, raster.RGBA)
	for i := range src.Pix {
		src.Pix[i] = byte(i * 29 % 256)
	}

	for _, style := range pipeline.Styles() {
		for _, size := range [][2]int{{1, 1}, {37, 23}} {
			img := src
			if size[0] == 1 {
				img = raster.NewUniform(1, 1, raster.RGBA, 10, 20, 30, 255)
			}

			out, err := engine.Render(img, style, pipeline.DefaultParams(style))
			if err != nil {
				t.Errorf("%s %v: %s", style, size, err)
				continue
			}
			if !out.SameSize(img) || out.Layout != raster.RGBA {
				t.Errorf("%s %v: wrong output %dx%d %s", style, size, out.Width, out.Height, out.Layout)
			}
		}
	}
}
