package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/inferloop/statlab/internal/observability/health"
)

// HealthHandler reports liveness and build information
type HealthHandler struct {
	startTime   time.Time
	version     string
	environment string
	checker     *health.Checker
}

// HealthStatus is the body of GET /health
type HealthStatus struct {
	Status      string       `json:"status"`
	Timestamp   time.Time    `json:"timestamp"`
	Version     string       `json:"version"`
	Environment string       `json:"environment"`
	Uptime      string       `json:"uptime"`
	System      SystemHealth `json:"system"`
}

// SystemHealth summarises the Go runtime
type SystemHealth struct {
	GoVersion  string `json:"goVersion"`
	CPUs       int    `json:"cpus"`
	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heapAlloc"`
	NumGC      uint32 `json:"numGC"`
}

func NewHealthHandler(version, environment string, checker *health.Checker) *HealthHandler {
	return &HealthHandler{
		startTime:   time.Now(),
		version:     version,
		environment: environment,
		checker:     checker,
	}
}

func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	writeJSON(w, r, http.StatusOK, HealthStatus{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Version:     h.version,
		Environment: h.environment,
		Uptime:      time.Since(h.startTime).Round(time.Second).String(),
		System: SystemHealth{
			GoVersion:  runtime.Version(),
			CPUs:       runtime.NumCPU(),
			Goroutines: runtime.NumGoroutine(),
			HeapAlloc:  memStats.HeapAlloc,
			NumGC:      memStats.NumGC,
		},
	})
}

func (h *HealthHandler) GetLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startTime).Round(time.Second).String(),
	})
}

func (h *HealthHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"version":     h.version,
		"environment": h.environment,
		"goVersion":   runtime.Version(),
	})
}

// GetReadiness runs the registered checks and answers 503 when any of them fails.
func (h *HealthHandler) GetReadiness(w http.ResponseWriter, r *http.Request) {
	if h.checker == nil {
		writeJSON(w, r, http.StatusOK, health.Report{Status: health.StatusHealthy, Timestamp: time.Now().UTC()})
		return
	}

	report := h.checker.Run(r.Context())
	status := http.StatusOK
	if report.Status != health.StatusHealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, r, status, report)
}
