package handler

import (
	"net/http"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"image-stylizer/internal/tracing"
)

// Recovery is a handler for handling panics
func Recovery(log logrus.FieldLogger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				traceID, spanID := tracing.TraceInfo(r.Context())
				log.WithFields(logrus.Fields{
					"trace-id":   traceID,
					"span-id":    spanID,
					"panic":      err,
					"stacktrace": string(debug.Stack()),
				}).Error("panic handling request")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
