package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"image-stylizer/internal/handler"
	"image-stylizer/internal/health"
	"image-stylizer/internal/logger"
	"image-stylizer/internal/tracing/test"

	mockCache "image-stylizer/internal/cache/mock"
	memoryCache "image-stylizer/internal/cache/memory"
)

func TestHandler(t *testing.T) {
	ok := handler.Handler(func(w http.ResponseWriter, r *http.Request) *handler.Error {
		w.Write([]byte("ok"))
		return nil
	})
	bad := handler.Handler(func(w http.ResponseWriter, r *http.Request) *handler.Error {
		return handler.BadRequest("Invalid style")
	})
	internal := handler.Handler(func(w http.ResponseWriter, r *http.Request) *handler.Error {
		return handler.InternalServerError()
	})

	tests := []struct {
		Name                string
		Handler             http.Handler
		Accept              string
		ExpectedStatus      int
		ExpectedBody        string
		ExpectedContentType string
	}{
		{"success", ok, "", http.StatusOK, "ok", "text/plain; charset=utf-8"},
		{"bad request", bad, "", http.StatusBadRequest, "Invalid style\n", "text/plain; charset=utf-8"},
		{"bad request json", bad, "application/json", http.StatusBadRequest, "{\"error\":\"Invalid style\"}\n", "application/json"},
		{"internal error", internal, "", http.StatusInternalServerError, "Something went wrong\n", "text/plain; charset=utf-8"},
	}

	for _, test := range tests {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/", nil)
		if test.Accept != "" {
			req.Header.Set("Accept", test.Accept)
		}

		test.Handler.ServeHTTP(w, req)

		if w.Code != test.ExpectedStatus {
			t.Errorf("%s: wrong status %d", test.Name, w.Code)
		}
		if w.Body.String() != test.ExpectedBody {
			t.Errorf("%s: wrong body %q", test.Name, w.Body.String())
		}
		if contentType := w.Header().Get("Content-Type"); contentType != test.ExpectedContentType {
			t.Errorf("%s: wrong content type %q", test.Name, contentType)
		}
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Stylize-Style", "comic")
	})
	h := handler.CORS([]string{"Stylize-Style"}, next)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://example.com")
	h.ServeHTTP(w, req)

	if origin := w.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("wrong allowed origin %q", origin)
	}
	if exposed := w.Header().Get("Access-Control-Expose-Headers"); exposed != "Stylize-Style" {
		t.Errorf("wrong exposed headers %q", exposed)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("OPTIONS", "/", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	h.ServeHTTP(w, req)

	if methods := w.Header().Get("Access-Control-Allow-Methods"); methods != "POST" {
		t.Errorf("wrong allowed methods %q", methods)
	}
}

func TestHealth(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := logger.Discard()
	healthy := &health.Checker{Ctx: ctx, Cache: memoryCache.New(0), Log: log}
	healthy.Run()
	unhealthy := &health.Checker{Ctx: ctx, Cache: &mockCache.Provider{}, Log: log}
	unhealthy.Run()

	tests := []struct {
		Name           string
		Method         string
		Checker        *health.Checker
		ExpectedStatus int
		ExpectedBody   string
	}{
		{"healthy", "GET", healthy, http.StatusOK, "{\"healthy\":true,\"cache\":\"healthy\"}\n"},
		{"unhealthy", "GET", unhealthy, http.StatusServiceUnavailable, "{\"healthy\":false,\"cache\":\"unhealthy\"}\n"},
		{"healthy head", "HEAD", healthy, http.StatusOK, ""},
		{"unhealthy head", "HEAD", unhealthy, http.StatusServiceUnavailable, ""},
	}

	for _, test := range tests {
		w := httptest.NewRecorder()
		handler.Health(test.Checker).ServeHTTP(w, httptest.NewRequest(test.Method, "/health", nil))

		if w.Code != test.ExpectedStatus {
			t.Errorf("%s: wrong status %d", test.Name, w.Code)
		}
		if w.Body.String() != test.ExpectedBody {
			t.Errorf("%s: wrong body %q", test.Name, w.Body.String())
		}
		if contentType := w.Header().Get("Content-Type"); contentType != "application/json" {
			t.Errorf("%s: wrong content type %q", test.Name, contentType)
		}
	}
}

func TestMiddlewareChain(t *testing.T) {
	log := logger.Discard()
	tracer := test.Tracer(log)

	router := mux.NewRouter()
	router.Handle("/render/{style}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})).Name("render")
	matcher := &handler.MuxRouteMatcher{Router: router}

	h := handler.Tracer(tracer, handler.Metrics(handler.Logger(log, router), matcher), matcher)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("POST", "/render/comic", nil))
	if w.Code != http.StatusCreated {
		t.Errorf("wrong status %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler.MetricsHandler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(w.Body.String(), `http_request_duration_seconds_count{code="201",path="render"} 1`) {
		t.Error("request duration was not recorded")
	}
}

func TestMuxRouteMatcher(t *testing.T) {
	router := mux.NewRouter()
	router.Handle("/styles", http.NotFoundHandler()).Name("styles")
	router.Handle("/id/{id}/{style}", http.NotFoundHandler())
	router.Handle("/render/{style}", http.NotFoundHandler()).Methods("POST").Name("render")
	matcher := &handler.MuxRouteMatcher{Router: router}

	notFound := mux.NewRouter()
	notFound.NotFoundHandler = http.NotFoundHandler()
	notFoundMatcher := &handler.MuxRouteMatcher{Router: notFound}

	tests := []struct {
		Method   string
		URL      string
		Matcher  *handler.MuxRouteMatcher
		Expected string
	}{
		{"GET", "/styles", matcher, "styles"},
		{"GET", "/id/1/comic", matcher, "/id/{id}/{style}"},
		{"POST", "/render/comic", matcher, "render"},
		{"GET", "/render/comic", matcher, handler.RouteMethodNotAllowed},
		{"GET", "/nothing", matcher, handler.RouteUnknown},
		{"GET", "/nothing", notFoundMatcher, handler.RouteUnknown},
	}

	for _, test := range tests {
		if route := test.Matcher.Match(httptest.NewRequest(test.Method, test.URL, nil)); route != test.Expected {
			t.Errorf("%s %s: wrong route %q", test.Method, test.URL, route)
		}
	}
}
