// Periodic health checks of the render service dependencies
package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"image-stylizer/internal/cache"
	"image-stylizer/internal/pipeline"
	"image-stylizer/internal/raster"
	"image-stylizer/internal/storage"
)

const checkInterval = 10 * time.Second
const checkTimeout = 8 * time.Second

// Component states reported in Status
const (
	StateHealthy   = "healthy"
	StateUnhealthy = "unhealthy"
	StateUnknown   = "unknown"
)

// Renderer is the part of the pipeline engine the checker exercises
type Renderer interface {
	Render(src *raster.Image, style pipeline.Style, params pipeline.Params) (*raster.Image, error)
}

// Checker periodically checks every configured component. Nil components are skipped.
type Checker struct {
	Ctx      context.Context
	Storage  storage.Provider
	ImageID  string // stored image fetched by the storage check
	Cache    cache.Provider
	Renderer Renderer
	Log      logrus.FieldLogger

	status Status
	mutex  sync.RWMutex
}

// Status contains the healthcheck status
type Status struct {
	Healthy bool   `json:"healthy"`
	Cache   string `json:"cache,omitempty"`
	Storage string `json:"storage,omitempty"`
	Render  string `json:"render,omitempty"`
}

// component is one dependency check and the Status field reporting it
type component struct {
	name  string
	field func(*Status) *string
	check func(ctx context.Context) error
}

// Run performs a first check, then keeps checking in the background until Ctx ends
func (c *Checker) Run() {
	c.runCheck()

	ticker := time.NewTicker(checkInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.runCheck()
			case <-c.Ctx.Done():
				return
			}
		}
	}()
}

// Status returns the outcome of the latest check
func (c *Checker) Status() Status {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.status
}

func (c *Checker) components() []component {
	var components []component

	if c.Cache != nil {
		components = append(components, component{"cache", func(s *Status) *string { return &s.Cache }, c.checkCache})
	}
	if c.Storage != nil {
		components = append(components, component{"storage", func(s *Status) *string { return &s.Storage }, c.checkStorage})
	}
	if c.Renderer != nil {
		components = append(components, component{"render", func(s *Status) *string { return &s.Render }, c.checkRender})
	}

	return components
}

func (c *Checker) checkCache(ctx context.Context) error {
	if _, err := c.Cache.Get(ctx, "healthcheck"); !errors.Is(err, cache.ErrNotFound) {
		return fmt.Errorf("unexpected cache response: %v", err)
	}
	return nil
}

func (c *Checker) checkStorage(ctx context.Context) error {
	_, err := c.Storage.Get(ctx, c.ImageID)
	return err
}

// checkRender runs a small stamp render through the engine
func (c *Checker) checkRender(context.Context) error {
	src := raster.NewUniform(16, 16, raster.RGBA, 90, 140, 200, 255)
	out, err := c.Renderer.Render(src, pipeline.StyleStamp, pipeline.DefaultParams(pipeline.StyleStamp))
	if err != nil {
		return err
	}
	if !out.SameSize(src) {
		return fmt.Errorf("render returned %dx%d for a %dx%d source", out.Width, out.Height, src.Width, src.Height)
	}
	return nil
}

func (c *Checker) runCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	components := c.components()
	status := Status{Healthy: true}
	for _, comp := range components {
		*comp.field(&status) = StateUnknown
	}

	done := make(chan Status, 1)
	go func() {
		done <- c.check(ctx, components, status)
	}()

	select {
	case <-ctx.Done():
		status.Healthy = false
		c.Log.Error("healthcheck timed out")
	case status = <-done:
	}

	c.mutex.Lock()
	c.status = status
	c.mutex.Unlock()
}

// check fills in status one component at a time, leaving the rest unknown once ctx ends
func (c *Checker) check(ctx context.Context, components []component, status Status) Status {
	for _, comp := range components {
		if ctx.Err() != nil {
			status.Healthy = false
			return status
		}

		if err := comp.check(ctx); err != nil {
			status.Healthy = false
			*comp.field(&status) = StateUnhealthy
			c.Log.WithError(err).WithField("component", comp.name).Error("healthcheck error")
			continue
		}
		*comp.field(&status) = StateHealthy
	}

	return status
}
