package metrics_test

import (
	"encoding/json"
	"math"
	"testing"

	"image-stylizer/internal/metrics"
	"image-stylizer/internal/raster"
)

// halfInk is a 4x1 image with two black and two white pixels
func halfInk() *raster.Image {
	img := raster.New(4, 1, raster.RGBA)
	copy(img.Pix, []byte{0, 0, 0, 255, 0, 0, 0, 255, 255, 255, 255, 255, 255, 255, 255, 255})
	return img
}

func TestCalculate(t *testing.T) {
	evaluator := metrics.NewEvaluator()
	gray := raster.NewUniform(4, 1, raster.RGBA, 128, 128, 128, 255)

	tests := []struct {
		Metric    string
		Original  *raster.Image
		Processed *raster.Image
		Expected  float64
	}{
		{"ink_coverage", gray, halfInk(), 0.5},
		{"ink_coverage", gray, gray, 0},
		{"mean_intensity", gray, halfInk(), 127.5},
		{"mse", gray, gray, 0},
		{"mse", raster.NewUniform(2, 2, raster.Luminance, 10), raster.NewUniform(2, 2, raster.Luminance, 20), 100},
		{"psnr", gray, gray, math.Inf(1)},
		{"psnr", raster.NewUniform(2, 2, raster.Luminance, 0), raster.NewUniform(2, 2, raster.Luminance, 255), 0},
		{"contrast", gray, gray, 0},
		{"contrast", gray, halfInk(), math.Inf(1)},
		{"contrast", halfInk(), halfInk(), 1},
		{"mean_intensity", nil, raster.NewUniform(2, 2, raster.RGBA, 255, 0, 0, 255), 76},
		{"ink_coverage", nil, raster.NewUniform(2, 2, raster.RGBA, 255, 0, 0, 255), 1},
	}

	for _, test := range tests {
		value, err := evaluator.Calculate(test.Metric, test.Original, test.Processed)
		if err != nil {
			t.Errorf("%s: %s", test.Metric, err)
			continue
		}
		if value != test.Expected {
			t.Errorf("%s: expected %v, got %v", test.Metric, test.Expected, value)
		}
	}
}

func TestSSIM(t *testing.T) {
	evaluator := metrics.NewEvaluator()

	gradient := raster.New(16, 16, raster.Luminance)
	for i := range gradient.Pix {
		gradient.Pix[i] = byte(i)
	}
	inverted := gradient.Clone()
	for i, v := range inverted.Pix {
		inverted.Pix[i] = 255 - v
	}

	same, err := evaluator.Calculate("ssim", gradient, gradient)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(same-1) > 1e-6 {
		t.Errorf("identical images should score 1, got %v", same)
	}

	different, err := evaluator.Calculate("ssim", gradient, inverted)
	if err != nil {
		t.Fatal(err)
	}
	if different >= 0.5 {
		t.Errorf("an inverted image should score well below 1, got %v", different)
	}
}

func TestCalculateErrors(t *testing.T) {
	evaluator := metrics.NewEvaluator()

	if _, err := evaluator.Calculate("fmeasure", halfInk(), halfInk()); err == nil {
		t.Error("expected error for unknown metric")
	}
	if _, err := evaluator.Calculate("mse", halfInk(), raster.New(2, 2, raster.RGBA)); err == nil {
		t.Error("expected error for mismatched sizes")
	}
	if _, err := evaluator.Calculate("ssim", halfInk(), raster.New(4, 2, raster.RGBA)); err == nil {
		t.Error("expected error for mismatched sizes")
	}
	if _, err := evaluator.Calculate("ink_coverage", nil, &raster.Image{}); err == nil {
		t.Error("expected error for an empty image")
	}
}

func TestGenerateReport(t *testing.T) {
	evaluator := metrics.NewEvaluator()
	img := halfInk()

	report := evaluator.GenerateReport(img, img)
	if len(report.Metrics) != len(evaluator.Names()) {
		t.Fatalf("expected %d metrics, got %v", len(evaluator.Names()), report.Metrics)
	}
	if report.Metrics["psnr"] != 100 {
		t.Errorf("identical images should report the top of the psnr range, got %v", report.Metrics["psnr"])
	}

	if _, err := json.Marshal(report); err != nil {
		t.Fatal(err)
	}
}

func TestNames(t *testing.T) {
	expected := []string{"contrast", "ink_coverage", "mean_intensity", "mse", "psnr", "ssim"}
	names := metrics.NewEvaluator().Names()

	if len(names) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, names)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, names)
		}
	}

	info := metrics.NewEvaluator().Info()
	if info["psnr"].Name != "PSNR" || !info["psnr"].HigherIsBetter {
		t.Errorf("wrong info: %+v", info["psnr"])
	}
}
