package metrics

import (
	"net/http"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsManager holds the custom Prometheus collectors on their own
// registry.
type MetricsManager struct {
	Registry *prometheus.Registry

	ListingsCreatedTotal   prometheus.Counter
	ListingsPublishedTotal prometheus.Counter
	EditsStagedTotal       prometheus.Counter
	ConnectionsTotal       *prometheus.CounterVec
	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestLatency     *prometheus.HistogramVec
}

func NewMetricsManager(namespace string) *MetricsManager {
	registry := prometheus.NewRegistry()

	listingsCreatedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_created_total",
		Help:      "Total number of listings created.",
	})
	listingsPublishedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_published_total",
		Help:      "Total number of listings approved for publication.",
	})
	editsStagedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "edits_staged_total",
		Help:      "Total number of edits staged for moderation.",
	})
	connectionsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "connections_total",
		Help:      "Total number of connection decisions by outcome.",
	}, []string{"status"})
	httpRequestsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by route and status code.",
	}, []string{"method", "route", "status"})
	httpRequestLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_latency_seconds",
		Help:      "Latency of HTTP requests by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	registry.MustRegister(
		listingsCreatedTotal,
		listingsPublishedTotal,
		editsStagedTotal,
		connectionsTotal,
		httpRequestsTotal,
		httpRequestLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &MetricsManager{
		Registry:               registry,
		ListingsCreatedTotal:   listingsCreatedTotal,
		ListingsPublishedTotal: listingsPublishedTotal,
		EditsStagedTotal:       editsStagedTotal,
		ConnectionsTotal:       connectionsTotal,
		HTTPRequestsTotal:      httpRequestsTotal,
		HTTPRequestLatency:     httpRequestLatency,
	}
}

// StartMetricsServer exposes /metrics on its own port. An empty port
// disables the server.
func StartMetricsServer(port string, appLogger *logger.Logger, registry *prometheus.Registry) error {
	if port == "" {
		appLogger.Info("metrics server port not configured, skipping")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	appLogger.Info("metrics server starting", zap.String("port", port))

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
	return server.ListenAndServe()
}
