package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"image-stylizer/internal/cache"
	"image-stylizer/internal/imageio"
	"image-stylizer/internal/metrics"
	"image-stylizer/internal/pipeline"
	"image-stylizer/internal/queue"
	"image-stylizer/internal/tracing"
)

// Processor renders tasks into encoded images
type Processor interface {
	Render(ctx context.Context, task *Task) ([]byte, error)
}

// QueueProcessor runs render tasks on a fixed pool of workers
type QueueProcessor struct {
	queue   *queue.Queue
	results cache.Provider
	tracer  *tracing.Tracer
	log     logrus.FieldLogger
}

var (
	queueSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "render_queue_size",
		Help: "Number of render tasks waiting for or held by a worker.",
	})
	renderedImages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "render_images_total",
		Help: "Number of rendered images by style.",
	}, []string{"style"})
	resultCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "render_result_cache_hits_total",
		Help: "Number of render requests served from the result cache.",
	})
)

// New initializes a new processor instance. results may be nil to disable output caching.
func New(ctx context.Context, log logrus.FieldLogger, tracer *tracing.Tracer, workers int, engine *pipeline.Engine, sources *Cache, results cache.Provider) *QueueProcessor {
	workerQueue := queue.New(ctx, workers, taskProcessor(log, tracer, engine, sources))
	instance := &QueueProcessor{
		queue:   workerQueue,
		results: results,
		tracer:  tracer,
		log:     log,
	}

	go workerQueue.Run()
	log.Infof("starting render worker queue with %d workers", workers)

	return instance
}

// Render validates a task, serves it from the result cache if possible, and otherwise renders it on the queue
func (p *QueueProcessor) Render(ctx context.Context, task *Task) ([]byte, error) {
	ctx, span := p.tracer.Start(ctx, "render.QueueProcessor.Render")
	defer span.End()

	if err := task.Validate(); err != nil {
		return nil, err
	}

	key := task.Key()
	if p.results != nil {
		data, err := p.results.Get(ctx, key)
		if err == nil {
			resultCacheHits.Inc()
			return data, nil
		}
		if !errors.Is(err, cache.ErrNotFound) {
			p.log.WithError(err).WithField("key", key).Warn("error reading render result cache")
		}
	}

	queueSize.Inc()
	result, err := p.queue.Process(ctx, task)
	queueSize.Dec()
	if err != nil {
		return nil, err
	}

	data, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("error getting result")
	}
	renderedImages.WithLabelValues(task.Style.String()).Inc()

	if p.results != nil {
		if err := p.results.Set(ctx, key, data); err != nil {
			p.log.WithError(err).WithField("key", key).Warn("error writing render result cache")
		}
	}

	return data, nil
}

func taskProcessor(log logrus.FieldLogger, tracer *tracing.Tracer, engine *pipeline.Engine, sources *Cache) func(ctx context.Context, data interface{}) (interface{}, error) {
	return func(ctx context.Context, data interface{}) (interface{}, error) {
		task, ok := data.(*Task)
		if !ok {
			return nil, fmt.Errorf("invalid data")
		}

		ctx, span := tracer.Start(ctx, "render.taskProcessor")
		defer span.End()

		source := task.Source
		if task.SourceID != "" {
			var err error
			source, err = sources.Get(ctx, task.SourceID)
			if err != nil {
				return nil, fmt.Errorf("error getting source image: %w", err)
			}
		}

		start := time.Now()
		img, err := imageio.Decode(source)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", pipeline.ErrInvalidInput, err)
		}

		rendered, err := engine.Render(img, task.Style, task.Params)
		if err != nil {
			return nil, err
		}

		encoded, err := imageio.Encode(rendered, task.Extension)
		if err != nil {
			return nil, err
		}

		fields := logrus.Fields{
			"style":    task.Style.String(),
			"width":    img.Width,
			"height":   img.Height,
			"format":   task.Extension,
			"duration": time.Since(start),
		}
		if coverage, err := (&metrics.InkCoverage{}).Calculate(img, rendered); err == nil {
			fields["ink_coverage"] = coverage
		}
		log.WithFields(fields).Debug("Rendered image")

		return encoded, nil
	}
}
