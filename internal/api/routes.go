package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/inferloop/statlab/internal/analytics"
	"github.com/inferloop/statlab/internal/api/handlers"
	"github.com/inferloop/statlab/internal/api/middleware"
	"github.com/inferloop/statlab/internal/observability/health"
	"github.com/inferloop/statlab/internal/observability/metrics"
	"github.com/inferloop/statlab/pkg/constants"
)

type Router struct {
	statisticsHandler *handlers.StatisticsHandler
	gofHandler        *handlers.GoodnessOfFitHandler
	healthHandler     *handlers.HealthHandler
	metrics           *metrics.PrometheusMetrics
	logger            *logrus.Logger
	loggingConfig     *middleware.LoggingConfig
	checker           *health.Checker
	version           string
	environment       string
}

// RouterOption customises a Router.
type RouterOption func(*Router)

// WithLoggingConfig replaces the default access-log configuration.
func WithLoggingConfig(config *middleware.LoggingConfig) RouterOption {
	return func(r *Router) { r.loggingConfig = config }
}

// WithEnvironment labels the health endpoint.
func WithEnvironment(env string) RouterOption {
	return func(r *Router) { r.environment = env }
}

// WithCheck registers an extra readiness check served under /health/ready.
func WithCheck(name string, fn health.CheckFunc) RouterOption {
	return func(r *Router) { r.checker.Register(name, 0, fn) }
}

func NewRouter(engine *analytics.Engine, pm *metrics.PrometheusMetrics, logger *logrus.Logger, version string, opts ...RouterOption) *Router {
	if logger == nil {
		logger = logrus.New()
	}

	router := &Router{
		statisticsHandler: handlers.NewStatisticsHandler(engine, logger),
		gofHandler:        handlers.NewGoodnessOfFitHandler(engine, logger),
		metrics:           pm,
		logger:            logger,
		checker:           health.NewChecker(logger),
		version:           version,
		environment:       "production",
	}
	router.checker.Register("engine", 0, engineCheck(engine))
	for _, opt := range opts {
		opt(router)
	}
	router.healthHandler = handlers.NewHealthHandler(version, router.environment, router.checker)
	return router
}

// engineCheck describes a fixed sample and verifies the mean comes back right.
func engineCheck(engine *analytics.Engine) health.CheckFunc {
	return func(ctx context.Context) error {
		result, err := engine.Describe(ctx, []float64{1, 2, 3}, 0)
		if err != nil {
			return err
		}
		if result.Summary.Mean != 2 {
			return fmt.Errorf("engine returned mean %g for {1, 2, 3}", result.Summary.Mean)
		}
		return nil
	}
}

func (router *Router) SetupRoutes() *mux.Router {
	r := mux.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.NewLoggingMiddleware(router.loggingConfig, router.logger).Middleware(),
		middleware.Metrics(router.metrics),
	)

	r.HandleFunc("/health", router.healthHandler.GetHealth).Methods(http.MethodGet)
	r.HandleFunc("/health/live", router.healthHandler.GetLiveness).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", router.healthHandler.GetReadiness).Methods(http.MethodGet)
	r.HandleFunc("/version", router.healthHandler.GetVersion).Methods(http.MethodGet)
	if router.metrics != nil {
		r.Handle("/metrics", router.metrics.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix(constants.APIPrefix).Subrouter()
	stats := router.statisticsHandler

	api.HandleFunc("/describe", stats.Describe).Methods(http.MethodPost)

	intervals := api.PathPrefix("/intervals").Subrouter()
	intervals.HandleFunc("/mean", stats.MeanInterval).Methods(http.MethodPost)
	intervals.HandleFunc("/two-sample", stats.TwoSampleInterval).Methods(http.MethodPost)
	intervals.HandleFunc("/proportion", stats.ProportionInterval).Methods(http.MethodPost)
	intervals.HandleFunc("/two-proportion", stats.TwoProportionInterval).Methods(http.MethodPost)

	tests := api.PathPrefix("/tests").Subrouter()
	tests.HandleFunc("/z", stats.ZTest).Methods(http.MethodPost)
	tests.HandleFunc("/t", stats.TTest).Methods(http.MethodPost)

	api.HandleFunc("/power", stats.Power).Methods(http.MethodPost)

	sampleSize := api.PathPrefix("/sample-size").Subrouter()
	sampleSize.HandleFunc("/power", stats.SampleSizeForPower).Methods(http.MethodPost)
	sampleSize.HandleFunc("/margin", stats.SampleSizeForMargin).Methods(http.MethodPost)

	api.HandleFunc("/estimate", stats.Estimate).Methods(http.MethodPost)

	gof := api.PathPrefix("/gof").Subrouter()
	gof.HandleFunc("", router.gofHandler.Execute).Methods(http.MethodPost)
	gof.HandleFunc("/suite", router.gofHandler.Suite).Methods(http.MethodPost)

	api.HandleFunc("/generate", router.gofHandler.Generate).Methods(http.MethodPost)

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"service": constants.AppName,
			"version": router.version,
			"status":  "running",
			"endpoints": map[string]string{
				"health":     "/health",
				"metrics":    "/metrics",
				"describe":   constants.APIPrefix + "/describe",
				"intervals":  constants.APIPrefix + "/intervals",
				"tests":      constants.APIPrefix + "/tests",
				"power":      constants.APIPrefix + "/power",
				"sampleSize": constants.APIPrefix + "/sample-size",
				"estimate":   constants.APIPrefix + "/estimate",
				"gof":        constants.APIPrefix + "/gof",
				"generate":   constants.APIPrefix + "/generate",
			},
		})
	}).Methods(http.MethodGet)

	return r
}
