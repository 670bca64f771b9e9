package middleware

import (
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var histogramRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "expensely",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	},
	[]string{"method", "route", "status"},
)

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		histogramRequestDuration.
			WithLabelValues(r.Method, routePattern(r), strconv.Itoa(status(ww))).
			Observe(time.Since(start).Seconds())
	})
}
