package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matijazezelj/fuelnet/internal/source"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fuelnet_http_requests_total",
		Help: "HTTP requests by route pattern and status code",
	}, []string{"route", "code"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fuelnet_http_request_duration_seconds",
		Help:    "HTTP request duration by route pattern",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	}, []string{"route"})

	networkStations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fuelnet_network_stations",
		Help: "Stations in the served network",
	})

	networkConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fuelnet_network_connections",
		Help: "Connections in the served network",
	})

	networkReloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fuelnet_network_reloads_total",
		Help: "Times the served network was replaced",
	})
)

func observeNetwork(n *source.Network) {
	if n == nil {
		return
	}
	networkStations.Set(float64(n.Graph.Len()))
	networkConnections.Set(float64(n.Graph.EdgeCount()))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument records request counts and latency labelled by the matched
// ServeMux pattern. It must wrap the mux directly so r.Pattern is visible.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
