package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"image-stylizer/internal/imageio"
	"image-stylizer/internal/logger"
	"image-stylizer/internal/metrics"
	"image-stylizer/internal/ops/opencv"
	"image-stylizer/internal/params"
	"image-stylizer/internal/pipeline"
	"image-stylizer/internal/preview"
	"image-stylizer/internal/raster"
)

const (
	AppName    = "stylize"
	AppVersion = "1.0.0"

	previewDelay = 150 * time.Millisecond
)

// Comandline flags
var (
	debugMode   = flag.Bool("debug", false, "Enable debug mode with verbose logging")
	input       = flag.String("in", "", "source image path")
	output      = flag.String("out", "", "output image path")
	styleName   = flag.String("style", "stamp", "style to apply (none, grayscale, etching, stamp, comic)")
	smoothSharp = flag.Float64("smooth-sharp", 0, "smooth/sharp control, 0-100 (default: style default)")
	lightDark   = flag.Float64("light-dark", 0, "light/dark control, 0-100 (default: style default)")
	thickThin   = flag.Float64("thick-thin", 0, "thick/thin control, 0-100 (default: style default)")
	denseSparse = flag.Float64("dense-sparse", 0, "dense/sparse control, 0-100 (default: style default)")
	threshold   = flag.Float64("threshold", pipeline.DefaultEtchingThreshold, "etching threshold, -50-100")
	stats       = flag.Bool("stats", false, "print render statistics as JSON on stdout")
	interactive = flag.Bool("interactive", false, "read parameter edits from stdin and re-render on change")
)

func main() {
	flag.Parse()

	// stdout carries the -stats report only
	log := logger.NewWithOutput(os.Stderr, *debugMode)
	log.WithFields(logrus.Fields{
		"version":    AppVersion,
		"debug_mode": *debugMode,
	}).Info("Starting " + AppName)

	if *input == "" || *output == "" {
		log.Fatal("both -in and -out are required")
	}
	if !imageio.IsSupported(*output) {
		log.Fatalf("unsupported output format %q, supported formats: %s", *output, strings.Join(imageio.SupportedFormats(), ", "))
	}

	style, controls, err := parseControls()
	if err != nil {
		log.Fatal(err)
	}

	provider, err := opencv.New(log)
	if err != nil {
		log.Fatalf("error initializing image operations: %s", err)
	}

	engine, err := pipeline.New(provider, log)
	if err != nil {
		log.Fatalf("error initializing pipeline: %s", err)
	}

	loader := imageio.New(log)
	src, err := loader.Load(*input)
	if err != nil {
		log.Fatalf("error loading image: %s", err)
	}

	if *interactive {
		runInteractive(log, engine, loader, src, style, controls)
		return
	}

	rendered, err := engine.Render(src, style, controls)
	if err != nil {
		log.Fatalf("error rendering image: %s", err)
	}

	if err := loader.Save(rendered, *output); err != nil {
		log.Fatalf("error saving image: %s", err)
	}

	if *stats {
		if err := printStats(os.Stdout, src, rendered); err != nil {
			log.WithError(err).Error("Error printing statistics")
		}
	}
}

// parseControls starts from the defaults of the selected style and applies the flags that were set
func parseControls() (pipeline.Style, pipeline.Params, error) {
	style, err := pipeline.ParseStyle(*styleName)
	if err != nil {
		return style, pipeline.Params{}, err
	}

	controls := pipeline.DefaultParams(style)
	fields := map[string]struct {
		value *float64
		field *int
	}{
		"smooth-sharp": {smoothSharp, &controls.SmoothSharp},
		"light-dark":   {lightDark, &controls.LightDark},
		"thick-thin":   {thickThin, &controls.ThickThin},
		"dense-sparse": {denseSparse, &controls.DenseSparse},
		"threshold":    {threshold, &controls.EtchingThreshold},
	}

	flag.Visit(func(f *flag.Flag) {
		control, ok := fields[f.Name]
		if !ok || err != nil {
			return
		}
		*control.field, err = pipeline.ParamFromFloat(f.Name, *control.value)
	})

	return style, controls.Clamped(), err
}

func printStats(w io.Writer, src, rendered *raster.Image) error {
	report := metrics.NewEvaluator().GenerateReport(src, rendered)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// runInteractive re-renders whenever a line such as "light_dark=40" or "style=comic" is read.
// "quit" or end of input stops once the latest request was delivered.
func runInteractive(log *logrus.Logger, engine *pipeline.Engine, loader *imageio.Loader, src *raster.Image, style pipeline.Style, controls pipeline.Params) {
	delivered := newDeliveries()

	debouncer := preview.New(previewDelay, func(style pipeline.Style, controls pipeline.Params) (*raster.Image, error) {
		return engine.Render(src, style, controls)
	}, func(result preview.Result) {
		defer delivered.record(result.Generation)

		entry := log.WithFields(logrus.Fields{
			"generation": result.Generation,
			"style":      result.Style.String(),
			"params":     params.BuildQuery(result.Params),
			"duration":   result.Duration,
		})
		if result.Err != nil {
			entry.WithError(result.Err).Error("Preview failed")
			return
		}

		if err := loader.Save(result.Image, *output); err != nil {
			entry.WithError(err).Error("Error saving preview")
			return
		}
		entry.Info("Preview saved")

		if *stats {
			if err := printStats(os.Stdout, src, result.Image); err != nil {
				entry.WithError(err).Error("Error printing statistics")
			}
		}
	}, log)
	defer debouncer.Close()

	latest := debouncer.Update(style, controls)
	fmt.Fprintln(os.Stderr, "enter edits as name=value, for example light_dark=40 or style=comic; quit to exit")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" {
			break
		}

		next, nextControls, err := applyEdit(line, style, controls)
		if err != nil {
			log.WithError(err).Warn("Ignoring edit")
			continue
		}
		style, controls = next, nextControls
		latest = debouncer.Update(style, controls)
	}

	timeout := time.After(time.Minute)
	for !delivered.reached(latest) {
		select {
		case <-delivered.signal:
		case <-timeout:
			log.Warn("Timed out waiting for the last preview")
			return
		}
	}
}

// deliveries tracks the newest delivered preview generation
type deliveries struct {
	mu     sync.Mutex
	newest uint64
	signal chan struct{}
}

func newDeliveries() *deliveries {
	return &deliveries{signal: make(chan struct{}, 1)}
}

// record notes a delivery. An older generation arriving late never lowers the mark.
func (d *deliveries) record(generation uint64) {
	d.mu.Lock()
	if generation > d.newest {
		d.newest = generation
	}
	d.mu.Unlock()

	select {
	case d.signal <- struct{}{}:
	default:
	}
}

func (d *deliveries) reached(generation uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.newest >= generation
}

// applyEdit applies one name=value edit. Switching style resets the controls to its defaults.
func applyEdit(line string, style pipeline.Style, controls pipeline.Params) (pipeline.Style, pipeline.Params, error) {
	name, value, ok := strings.Cut(line, "=")
	if !ok {
		return style, controls, fmt.Errorf("expected name=value, got %q", line)
	}
	name, value = strings.TrimSpace(name), strings.TrimSpace(value)

	if name == "style" {
		next, err := pipeline.ParseStyle(value)
		if err != nil {
			return style, controls, err
		}
		return next, pipeline.DefaultParams(next), nil
	}

	fields := map[string]*int{
		params.SmoothSharp:      &controls.SmoothSharp,
		params.LightDark:        &controls.LightDark,
		params.ThickThin:        &controls.ThickThin,
		params.DenseSparse:      &controls.DenseSparse,
		params.EtchingThreshold: &controls.EtchingThreshold,
	}

	field, ok := fields[name]
	if !ok {
		return style, controls, fmt.Errorf("unknown control %q", name)
	}

	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return style, controls, err
	}
	if *field, err = pipeline.ParamFromFloat(name, v); err != nil {
		return style, controls, err
	}

	return style, controls.Clamped(), nil
}
