package handler

import (
	"fmt"
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/sirupsen/logrus"

	"image-stylizer/internal/tracing"
)

// Logger is a handler that logs requests
func Logger(log logrus.FieldLogger, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respMetrics := httpsnoop.CaptureMetricsFn(w, func(ww http.ResponseWriter) {
			h.ServeHTTP(ww, r)
		})

		entry := log.WithFields(LogFields(r, logrus.Fields{
			"http-method": r.Method,
			"remote-addr": r.RemoteAddr,
			"user-agent":  r.UserAgent(),
			"uri":         r.URL.String(),
			"status-code": respMetrics.Code,
			"elapsed":     fmt.Sprintf("%.9fs", respMetrics.Duration.Seconds()),
		}))

		switch {
		case respMetrics.Code >= 500:
			entry.Error("Request completed")
		default:
			entry.Debug("Request completed")
		}
	})
}

// LogFields adds the trace information of a request to fields
func LogFields(r *http.Request, fields logrus.Fields) logrus.Fields {
	traceID, spanID := tracing.TraceInfo(r.Context())

	out := logrus.Fields{
		"trace-id": traceID,
		"span-id":  spanID,
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}
