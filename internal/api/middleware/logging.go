package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// LoggingConfig contains logging middleware configuration
type LoggingConfig struct {
	Enabled              bool          `json:"enabled" mapstructure:"enabled"`
	IncludeUserAgent     bool          `json:"include_user_agent" mapstructure:"include_user_agent"`
	ExcludePaths         []string      `json:"exclude_paths" mapstructure:"exclude_paths"`
	LogSlowRequests      bool          `json:"log_slow_requests" mapstructure:"log_slow_requests"`
	SlowRequestThreshold time.Duration `json:"slow_request_threshold" mapstructure:"slow_request_threshold"`
}

// LoggingMiddleware writes one access-log line per request
type LoggingMiddleware struct {
	config *LoggingConfig
	logger *logrus.Logger
}

// responseWriter wraps http.ResponseWriter to capture the status and size
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
}

// DefaultLoggingConfig returns the access-log defaults
func DefaultLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Enabled:              true,
		IncludeUserAgent:     true,
		ExcludePaths:         []string{"/metrics"},
		LogSlowRequests:      true,
		SlowRequestThreshold: time.Second,
	}
}

// NewLoggingMiddleware creates a new logging middleware. Formatter and level belong to
// the injected logger.
func NewLoggingMiddleware(config *LoggingConfig, logger *logrus.Logger) *LoggingMiddleware {
	if logger == nil {
		logger = logrus.New()
	}
	if config == nil {
		config = DefaultLoggingConfig()
	}

	return &LoggingMiddleware{
		config: config,
		logger: logger,
	}
}

// Middleware returns the HTTP middleware function
func (lm *LoggingMiddleware) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lm.config.Enabled || lm.shouldExclude(r) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rw := wrapResponseWriter(w)

			next.ServeHTTP(rw, r)

			lm.logRequest(r, rw, time.Since(start))
		})
	}
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// shouldExclude checks if the request should be excluded from logging
func (lm *LoggingMiddleware) shouldExclude(r *http.Request) bool {
	for _, excludePath := range lm.config.ExcludePaths {
		if strings.HasPrefix(r.URL.Path, excludePath) {
			return true
		}
	}
	return false
}

// getClientIP extracts the real client IP address
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}

	return r.RemoteAddr
}

// logRequest logs the request and response information
func (lm *LoggingMiddleware) logRequest(r *http.Request, rw *responseWriter, duration time.Duration) {
	fields := logrus.Fields{
		"method":      r.Method,
		"path":        r.URL.Path,
		"route":       routeTemplate(r),
		"status":      rw.statusCode,
		"size":        rw.size,
		"duration":    duration,
		"duration_ms": float64(duration.Nanoseconds()) / 1e6,
		"remote_addr": getClientIP(r),
	}

	if requestID := RequestIDFromContext(r.Context()); requestID != "" {
		fields["request_id"] = requestID
	}
	if lm.config.IncludeUserAgent && r.UserAgent() != "" {
		fields["user_agent"] = r.UserAgent()
	}

	var logLevel logrus.Level
	var message string

	switch {
	case rw.statusCode >= 500:
		logLevel = logrus.ErrorLevel
		message = "HTTP request error"
	case rw.statusCode >= 400:
		logLevel = logrus.WarnLevel
		message = "HTTP request client error"
	case lm.config.LogSlowRequests && duration > lm.config.SlowRequestThreshold:
		logLevel = logrus.WarnLevel
		message = "HTTP request slow"
	default:
		logLevel = logrus.InfoLevel
		message = "HTTP request"
	}

	lm.logger.WithFields(fields).Log(logLevel, message)
}

// routeTemplate returns the matched mux route template, or the raw path when no route matched.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

// WriteHeader captures the status code
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Write counts the response size
func (rw *responseWriter) Write(data []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(data)
	rw.size += size
	return size, err
}
