// Package metrics provides Prometheus instrumentation for the catalog
// service: HTTP request metrics plus ingestion counters.
//
// Example:
//
//	import "github.com/dkozyrev/softvault/pkg/metrics"
//
//	err := metrics.InitMetrics(config.Metrics)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	metrics.RequestCounter.WithLabelValues("POST", "/api/files/upload").Inc()
package metrics

import (
	"net/http"
	_ "net/http/pprof" // registers pprof endpoints on DefaultServeMux

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dkozyrev/softvault/pkg/configs"
)

var (
	// RequestCounter counts HTTP requests by method and endpoint.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint"},
	)

	// RequestDuration tracks HTTP request latency.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ActiveConnections gauges in-flight connections.
	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_connections",
			Help: "Number of active connections",
		},
	)

	// UploadCounter counts uploaded files by outcome: stored, duplicate, failed.
	UploadCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_uploads_total",
			Help: "Total number of uploaded files by outcome",
		},
		[]string{"outcome"},
	)

	// UploadBytes sums the sizes of stored blobs.
	UploadBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_upload_bytes_total",
			Help: "Total bytes written to blob storage",
		},
	)

	// ExtractionCounter counts metadata extraction runs by extractor and outcome.
	ExtractionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_extractions_total",
			Help: "Total number of metadata extraction attempts by extractor and outcome",
		},
		[]string{"extractor", "outcome"},
	)

	// DownloadCounter counts version downloads.
	DownloadCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_downloads_total",
			Help: "Total number of version downloads",
		},
	)

	// DirectoryLookups counts directory role lookups by source: cache, ldap, error.
	DirectoryLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_lookups_total",
			Help: "Total number of directory role lookups by source",
		},
		[]string{"source"},
	)

	registry = prometheus.NewRegistry()
)

// InitMetrics registers collectors on the service registry.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	if config.RuntimeMetrics {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	registry.MustRegister(
		RequestCounter, RequestDuration, ActiveConnections,
		UploadCounter, UploadBytes, ExtractionCounter, DownloadCounter,
		DirectoryLookups,
	)

	return nil
}

// StartMetricsServer mounts the metrics endpoint on the debug engine.
func StartMetricsServer(config configs.MetricsConfig, debugEngine *gin.Engine) error {
	if !config.Enabled {
		return nil
	}

	debugEngine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	if config.Pprof {
		debugEngine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	return nil
}

// GetRegistry returns the Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return registry
}

// NewCounter creates and registers a counter vector.
func NewCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
	registry.MustRegister(counter)

	return counter
}

// NewGauge creates and registers a gauge vector.
func NewGauge(name, help string, labels []string) *prometheus.GaugeVec {
	gauge := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
	registry.MustRegister(gauge)

	return gauge
}

// NewHistogram creates and registers a histogram vector.
func NewHistogram(name, help string, labels []string) *prometheus.HistogramVec {
	histogram := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
	registry.MustRegister(histogram)

	return histogram
}
