// Render statistics comparing a stylized result with its source
package metrics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gocv.io/x/gocv"

	"image-stylizer/internal/ops/opencv"
	"image-stylizer/internal/raster"
)

// Metric defines a single statistic over a source and its rendition
type Metric interface {
	// Calculate computes the metric value
	Calculate(original, processed *raster.Image) (float64, error)

	Name() string
	Description() string

	// Range returns the value range (min, max)
	Range() (float64, float64)

	// HigherIsBetter is true if higher values mean the rendition stays closer to the source
	HigherIsBetter() bool
}

// Evaluator manages and calculates multiple metrics
type Evaluator struct {
	metrics map[string]Metric
}

// NewEvaluator creates an evaluator with every default metric registered
func NewEvaluator() *Evaluator {
	e := &Evaluator{
		metrics: make(map[string]Metric),
	}

	e.Register("psnr", &PSNR{})
	e.Register("mse", &MSE{})
	e.Register("ink_coverage", &InkCoverage{})
	e.Register("mean_intensity", &MeanIntensity{})
	e.Register("contrast", &Contrast{})
	e.Register("ssim", &SSIM{})

	return e
}

// Register adds or replaces a metric
func (e *Evaluator) Register(name string, metric Metric) {
	e.metrics[name] = metric
}

// Names lists the registered metrics in sorted order
func (e *Evaluator) Names() []string {
	names := make([]string, 0, len(e.metrics))
	for name := range e.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Calculate calculates a specific metric
func (e *Evaluator) Calculate(name string, original, processed *raster.Image) (float64, error) {
	metric, exists := e.metrics[name]
	if !exists {
		return 0, fmt.Errorf("metric not found: %s", name)
	}

	return metric.Calculate(original, processed)
}

// CalculateAll calculates all registered metrics, skipping the ones that fail
func (e *Evaluator) CalculateAll(original, processed *raster.Image) map[string]float64 {
	results := make(map[string]float64)

	for name, metric := range e.metrics {
		if value, err := metric.Calculate(original, processed); err == nil {
			results[name] = value
		}
	}

	return results
}

// MetricInfo provides metadata about a metric
type MetricInfo struct {
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Range          [2]float64 `json:"range"`
	HigherIsBetter bool       `json:"higher_is_better"`
}

// Info returns information about all metrics
func (e *Evaluator) Info() map[string]MetricInfo {
	info := make(map[string]MetricInfo)

	for name, metric := range e.metrics {
		lo, hi := metric.Range()
		info[name] = MetricInfo{
			Name:           metric.Name(),
			Description:    metric.Description(),
			Range:          [2]float64{lo, hi},
			HigherIsBetter: metric.HigherIsBetter(),
		}
	}

	return info
}

// Report holds the statistics of one rendition
type Report struct {
	Metrics   map[string]float64 `json:"metrics"`
	Timestamp string             `json:"timestamp"`
}

// GenerateReport calculates every metric. Infinite values, such as the PSNR of identical
// images, are reported as the top of the metric range so the report stays JSON encodable.
func (e *Evaluator) GenerateReport(original, processed *raster.Image) Report {
	metrics := e.CalculateAll(original, processed)
	for name, value := range metrics {
		if math.IsInf(value, 1) {
			_, hi := e.metrics[name].Range()
			metrics[name] = hi
		}
	}

	return Report{
		Metrics:   metrics,
		Timestamp: time.Now().Format("2006-01-02 15:04:05"),
	}
}

// lumaMat converts img to a single channel 8 bit matrix owned by the caller
func lumaMat(img *raster.Image) (gocv.Mat, error) {
	if err := img.Validate(); err != nil {
		return gocv.NewMat(), err
	}

	src, err := opencv.MatFromRaster(img)
	if err != nil {
		return gocv.NewMat(), err
	}
	if img.Layout == raster.Luminance {
		return src, nil
	}
	defer src.Close()

	gray := gocv.NewMat()
	if err := gocv.CvtColor(src, &gray, gocv.ColorRGBAToGray); err != nil {
		gray.Close()
		return gocv.NewMat(), err
	}
	return gray, nil
}

// pair returns the luma planes of both images, which must have the same size
func pair(original, processed *raster.Image) (gocv.Mat, gocv.Mat, error) {
	if original != nil && processed != nil && !original.SameSize(processed) {
		return gocv.NewMat(), gocv.NewMat(), fmt.Errorf("image dimensions mismatch")
	}

	a, err := lumaMat(original)
	if err != nil {
		return gocv.NewMat(), gocv.NewMat(), fmt.Errorf("original: %w", err)
	}
	b, err := lumaMat(processed)
	if err != nil {
		a.Close()
		return gocv.NewMat(), gocv.NewMat(), fmt.Errorf("processed: %w", err)
	}
	return a, b, nil
}

// meanStdDev returns the luma mean and standard deviation of img
func meanStdDev(gray gocv.Mat) (float64, float64, error) {
	mean := gocv.NewMat()
	defer mean.Close()
	stddev := gocv.NewMat()
	defer stddev.Close()

	if err := gocv.MeanStdDev(gray, &mean, &stddev); err != nil {
		return 0, 0, err
	}
	return mean.GetDoubleAt(0, 0), stddev.GetDoubleAt(0, 0), nil
}
