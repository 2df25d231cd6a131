package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/inferloop/statlab/pkg/constants"
)

// Status label values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// PrometheusMetrics provides Prometheus-based metrics collection
type PrometheusMetrics struct {
	logger   *logrus.Logger
	registry *prometheus.Registry
	server   *http.Server
	config   *PrometheusConfig

	// Computation metrics
	computationsTotal   *prometheus.CounterVec
	computationDuration *prometheus.HistogramVec
	sampleSize          *prometheus.HistogramVec
	gofDecisionsTotal   *prometheus.CounterVec
	errorsTotal         *prometheus.CounterVec

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// PrometheusConfig configures Prometheus metrics
type PrometheusConfig struct {
	Enabled          bool   `json:"enabled" mapstructure:"enabled"`
	Port             int    `json:"port" mapstructure:"port"`
	Path             string `json:"path" mapstructure:"path"`
	Namespace        string `json:"namespace" mapstructure:"namespace"`
	Subsystem        string `json:"subsystem" mapstructure:"subsystem"`
	RuntimeCollector bool   `json:"runtime_collector" mapstructure:"runtime_collector"`
}

// NewPrometheusMetrics creates a new Prometheus metrics instance backed by its own registry
func NewPrometheusMetrics(config *PrometheusConfig, logger *logrus.Logger) (*PrometheusMetrics, error) {
	if config == nil {
		config = DefaultPrometheusConfig()
	}

	if logger == nil {
		logger = logrus.New()
	}

	pm := &PrometheusMetrics{
		logger:   logger,
		registry: prometheus.NewRegistry(),
		config:   config,
	}

	pm.initializeMetrics()

	if err := pm.registerMetrics(); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	return pm, nil
}

// Start serves the registry on its own port until Stop is called
func (pm *PrometheusMetrics) Start(ctx context.Context) error {
	if !pm.config.Enabled || pm.config.Port == 0 {
		pm.logger.Info("Standalone Prometheus endpoint disabled")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(pm.config.Path, pm.Handler())

	pm.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", pm.config.Port),
		Handler:           mux,
		ReadHeaderTimeout: constants.DefaultReadTimeout,
	}

	pm.logger.WithFields(logrus.Fields{
		"port": pm.config.Port,
		"path": pm.config.Path,
	}).Info("Starting Prometheus metrics server")

	go func() {
		if err := pm.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			pm.logger.WithError(err).Error("Prometheus metrics server error")
		}
	}()

	return nil
}

// Stop stops the Prometheus metrics server
func (pm *PrometheusMetrics) Stop(ctx context.Context) error {
	if pm.server == nil {
		return nil
	}

	pm.logger.Info("Stopping Prometheus metrics server")
	return pm.server.Shutdown(ctx)
}

// Handler exposes the registry in the Prometheus text format
func (pm *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(pm.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// RecordComputation counts one library call and its latency. sampleSize is skipped when zero.
func (pm *PrometheusMetrics) RecordComputation(operation, status string, sampleSize int, duration time.Duration) {
	pm.computationsTotal.WithLabelValues(operation, status).Inc()
	pm.computationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if sampleSize > 0 {
		pm.sampleSize.WithLabelValues(operation).Observe(float64(sampleSize))
	}
}

// RecordGoFDecision counts accept/reject outcomes per goodness-of-fit test
func (pm *PrometheusMetrics) RecordGoFDecision(test string, rejected bool) {
	decision := "accept"
	if rejected {
		decision = "reject"
	}
	pm.gofDecisionsTotal.WithLabelValues(test, decision).Inc()
}

// RecordError counts failures by component and error code
func (pm *PrometheusMetrics) RecordError(component, code string) {
	pm.errorsTotal.WithLabelValues(component, code).Inc()
}

// RecordHTTPRequest records one served request
func (pm *PrometheusMetrics) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	pm.httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	pm.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// initializeMetrics initializes all Prometheus metrics
func (pm *PrometheusMetrics) initializeMetrics() {
	namespace := pm.config.Namespace
	subsystem := pm.config.Subsystem

	pm.computationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "computations_total",
			Help:      "Total number of statistical computations",
		},
		[]string{"operation", "status"},
	)

	pm.computationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "computation_duration_seconds",
			Help:      "Statistical computation duration in seconds",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		},
		[]string{"operation"},
	)

	pm.sampleSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sample_size",
			Help:      "Number of observations per computation",
			Buckets:   prometheus.ExponentialBuckets(5, 4, 8),
		},
		[]string{"operation"},
	)

	pm.gofDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "gof_decisions_total",
			Help:      "Goodness-of-fit outcomes by test and decision",
		},
		[]string{"test", "decision"},
	)

	pm.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "errors_total",
			Help:      "Total number of errors",
		},
		[]string{"component", "code"},
	)

	pm.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	pm.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
}

// registerMetrics registers all metrics with the Prometheus registry
func (pm *PrometheusMetrics) registerMetrics() error {
	metrics := []prometheus.Collector{
		pm.computationsTotal,
		pm.computationDuration,
		pm.sampleSize,
		pm.gofDecisionsTotal,
		pm.errorsTotal,
		pm.httpRequestsTotal,
		pm.httpRequestDuration,
	}

	if pm.config.RuntimeCollector {
		metrics = append(metrics,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	for _, metric := range metrics {
		if err := pm.registry.Register(metric); err != nil {
			return fmt.Errorf("failed to register metric: %w", err)
		}
	}

	return nil
}

// GetRegistry returns the Prometheus registry
func (pm *PrometheusMetrics) GetRegistry() *prometheus.Registry {
	return pm.registry
}

// DefaultPrometheusConfig returns the configuration used when none is supplied
func DefaultPrometheusConfig() *PrometheusConfig {
	return &PrometheusConfig{
		Enabled:          true,
		Port:             constants.DefaultMetricsPort,
		Path:             "/metrics",
		Namespace:        constants.AppName,
		RuntimeCollector: false,
	}
}
