package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"image-stylizer/internal/handler"
	"image-stylizer/internal/health"
	"image-stylizer/internal/render"
	"image-stylizer/internal/tracing"
)

// DefaultMaxUploadSize bounds the body of a render request
const DefaultMaxUploadSize = 32 << 20

// API is a http api
type API struct {
	Processor      render.Processor
	HealthChecker  *health.Checker
	Log            logrus.FieldLogger
	Tracer         *tracing.Tracer
	HandlerTimeout time.Duration
	MaxUploadSize  int64
}

// Utility methods for logging
func (a *API) logError(r *http.Request, message string, err error) {
	a.Log.WithFields(handler.LogFields(r, logrus.Fields{"error": err})).Error(message)
}

// Router returns a http router
func (a *API) Router() http.Handler {
	router := mux.NewRouter()

	router.NotFoundHandler = handler.Handler(a.notFoundHandler)

	// Redirect trailing slashes
	router.StrictSlash(true)

	// Healthcheck and metrics
	router.Handle("/health", handler.Health(a.HealthChecker)).Methods("GET", "HEAD").Name("health")
	router.Handle("/metrics", handler.MetricsHandler()).Methods("GET").Name("metrics")

	// Style list
	router.Handle("/styles", handler.Handler(a.stylesHandler)).Methods("GET").Name("styles")

	// Query parameters:
	// ?smooth_sharp={0-100}
	// ?light_dark={0-100}
	// ?thick_thin={0-100}
	// ?dense_sparse={0-100}
	// ?etching_threshold={-50-100}

	// Stored image routes
	router.Handle("/id/{id}/{style:[A-Za-z]+}{extension:(?:\\..*)?}", handler.Handler(a.imageHandler)).Methods("GET").Name("image")

	// Uploaded image routes, the request body is the source image
	router.Handle("/render/{style:[A-Za-z]+}{extension:(?:\\..*)?}", handler.Handler(a.renderHandler)).Methods("POST").Name("render")

	routeMatcher := &handler.MuxRouteMatcher{Router: router}

	// Set up handlers for tracing, handling panics, metrics, request logging, setting CORS headers, and handler execution timeout
	return handler.Tracer(a.Tracer,
		handler.Recovery(a.Log,
			handler.Metrics(
				handler.Logger(a.Log,
					handler.CORS([]string{"Stylize-Style"},
						http.TimeoutHandler(router, a.HandlerTimeout, "Something went wrong. Timed out."))),
				routeMatcher)),
		routeMatcher)
}

// Handle not found errors
var notFoundError = handler.NotFound("page not found")

func (a *API) notFoundHandler(w http.ResponseWriter, r *http.Request) *handler.Error {
	return notFoundError
}
