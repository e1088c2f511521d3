package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/casa-acolhe/records-service/internal/telemetry"
)

// statusRecorder captures the status code written by the handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// MetricsMiddleware records request count and duration per route. A nil
// Metrics disables recording without affecting request handling.
func MetricsMiddleware(m *telemetry.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			route := r.URL.Path
			if current := mux.CurrentRoute(r); current != nil {
				if tmpl, err := current.GetPathTemplate(); err == nil {
					route = tmpl
				}
			}

			durationMs := float64(time.Since(start).Microseconds()) / 1000.0
			m.RecordHTTPRequest(r.Context(), r.Method, route, rec.status, durationMs)
		})
	}
}
