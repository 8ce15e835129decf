// Coalesces rapid parameter changes so only the latest request is rendered
package preview

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"image-stylizer/internal/pipeline"
	"image-stylizer/internal/raster"
)

// RenderFunc produces the rendition for one request
type RenderFunc func(style pipeline.Style, params pipeline.Params) (*raster.Image, error)

// Result is delivered for the latest request only
type Result struct {
	Generation uint64
	Style      pipeline.Style
	Params     pipeline.Params
	Image      *raster.Image
	Err        error
	Duration   time.Duration
}

// Debouncer waits for the parameters to settle before rendering.
//
// Every Update restarts the delay. A render that finishes after a newer Update was issued
// is discarded instead of delivered. Deliveries never overlap and their generations only grow.
type Debouncer struct {
	delay   time.Duration
	render  RenderFunc
	deliver func(Result)
	log     logrus.FieldLogger

	deliverMu sync.Mutex

	mu         sync.Mutex
	timer      *time.Timer
	generation uint64
	closed     bool
}

// New returns a debouncer calling render after delay and passing the outcome to deliver
func New(delay time.Duration, render RenderFunc, deliver func(Result), log logrus.FieldLogger) *Debouncer {
	return &Debouncer{
		delay:   delay,
		render:  render,
		deliver: deliver,
		log:     log,
	}
}

// Update schedules a render of the given request, superseding any earlier one
func (d *Debouncer) Update(style pipeline.Style, params pipeline.Params) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return d.generation
	}

	d.generation++
	generation := d.generation
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.run(generation, style, params)
	})

	return generation
}

// Close stops any pending render and drops results still in flight
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *Debouncer) current(generation uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.closed && generation == d.generation
}

func (d *Debouncer) run(generation uint64, style pipeline.Style, params pipeline.Params) {
	if !d.current(generation) {
		return
	}

	start := time.Now()
	img, err := d.render(style, params)
	result := Result{
		Generation: generation,
		Style:      style,
		Params:     params,
		Image:      img,
		Err:        err,
		Duration:   time.Since(start),
	}

	d.deliverMu.Lock()
	defer d.deliverMu.Unlock()

	if !d.current(generation) {
		d.log.WithFields(logrus.Fields{
			"generation": generation,
			"style":      style.String(),
		}).Debug("Dropping stale preview")
		return
	}

	d.deliver(result)
}
