package middleware

import (
	"net/http"
	"time"

	"clinical-scheduling/internal/infrastructure/monitoring"

	"github.com/gorilla/mux"
)

const unmatchedRoute = "unmatched"

type MetricsMiddleware struct {
	metrics *monitoring.Metrics
}

func NewMetricsMiddleware(metrics *monitoring.Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: metrics}
}

// Handle records count and latency labelled with the matched route template,
// which CaptureRoute reports from inside the router.
func (m *MetricsMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		info, r := withRequestInfo(r)
		rec := newResponseRecorder(w)

		defer func() {
			route := info.Route
			if route == "" {
				route = unmatchedRoute
			}
			m.metrics.ObserveRequest(r.Method, route, rec.Status(), time.Since(start))
		}()

		next.ServeHTTP(rec, r)
	})
}

// CaptureRoute is installed with mux.Router.Use and runs only for matched routes.
func CaptureRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if info := requestInfoFrom(r.Context()); info != nil {
			if route := mux.CurrentRoute(r); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					info.Route = tpl
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}
