package handler

import (
	"encoding/json"
	"net/http"

	"image-stylizer/internal/health"
)

// Health reports the latest check of checker. Unhealthy services answer 503 so load balancers
// take them out of rotation, and HEAD requests get the status code alone.
func Health(checker *health.Checker) Handler {
	return func(w http.ResponseWriter, r *http.Request) *Error {
		status := checker.Status()

		header := w.Header()
		header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
		header.Set("Content-Type", "application/json")

		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}
		w.WriteHeader(code)

		if r.Method == http.MethodHead {
			return nil
		}
		if err := json.NewEncoder(w).Encode(status); err != nil {
			return InternalServerError()
		}
		return nil
	}
}
