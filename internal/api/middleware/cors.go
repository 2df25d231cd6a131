package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// CORSConfig contains CORS configuration
type CORSConfig struct {
	Enabled         bool          `json:"enabled" mapstructure:"enabled"`
	AllowedOrigins  []string      `json:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods  []string      `json:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders  []string      `json:"allowed_headers" mapstructure:"allowed_headers"`
	ExposedHeaders  []string      `json:"exposed_headers" mapstructure:"exposed_headers"`
	MaxAge          time.Duration `json:"max_age" mapstructure:"max_age"`
	AllowAllOrigins bool          `json:"allow_all_origins" mapstructure:"allow_all_origins"`
}

// CORSMiddleware lets browser front ends call the API from another origin
type CORSMiddleware struct {
	config *CORSConfig
	logger *logrus.Logger
}

// DefaultCORSConfig allows any origin to POST JSON
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		Enabled:         true,
		AllowAllOrigins: true,
		AllowedMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:  []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders:  []string{RequestIDHeader},
		MaxAge:          24 * time.Hour,
	}
}

// NewCORSMiddleware creates a new CORS middleware
func NewCORSMiddleware(config *CORSConfig, logger *logrus.Logger) *CORSMiddleware {
	if logger == nil {
		logger = logrus.New()
	}
	if config == nil {
		config = DefaultCORSConfig()
	}
	if len(config.AllowedMethods) == 0 {
		config.AllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	}

	return &CORSMiddleware{
		config: config,
		logger: logger,
	}
}

// Middleware returns the HTTP middleware function. It must wrap the router itself so
// preflight requests are answered before route matching.
func (cm *CORSMiddleware) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cm.config.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			origin := r.Header.Get("Origin")
			cm.setCORSHeaders(w, origin)

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				cm.handlePreflight(w, r, origin)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// setCORSHeaders sets the appropriate CORS headers
func (cm *CORSMiddleware) setCORSHeaders(w http.ResponseWriter, origin string) {
	headers := w.Header()

	if cm.config.AllowAllOrigins {
		headers.Set("Access-Control-Allow-Origin", "*")
	} else if cm.isOriginAllowed(origin) {
		headers.Set("Access-Control-Allow-Origin", origin)
		headers.Add("Vary", "Origin")
	}

	if len(cm.config.ExposedHeaders) > 0 {
		headers.Set("Access-Control-Expose-Headers", strings.Join(cm.config.ExposedHeaders, ", "))
	}
}

// handlePreflight handles CORS preflight requests
func (cm *CORSMiddleware) handlePreflight(w http.ResponseWriter, r *http.Request, origin string) {
	if !cm.config.AllowAllOrigins && !cm.isOriginAllowed(origin) {
		cm.logger.WithFields(logrus.Fields{
			"origin": origin,
			"path":   r.URL.Path,
		}).Warn("CORS preflight request from disallowed origin")
		w.WriteHeader(http.StatusForbidden)
		return
	}

	headers := w.Header()
	headers.Set("Access-Control-Allow-Methods", strings.Join(cm.config.AllowedMethods, ", "))
	if len(cm.config.AllowedHeaders) > 0 {
		headers.Set("Access-Control-Allow-Headers", strings.Join(cm.config.AllowedHeaders, ", "))
	}
	if cm.config.MaxAge > 0 {
		headers.Set("Access-Control-Max-Age", strconv.Itoa(int(cm.config.MaxAge.Seconds())))
	}

	w.WriteHeader(http.StatusNoContent)
}

// isOriginAllowed checks if the origin is allowed
func (cm *CORSMiddleware) isOriginAllowed(origin string) bool {
	if origin == "" {
		return false
	}
	for _, allowedOrigin := range cm.config.AllowedOrigins {
		if matchOrigin(allowedOrigin, origin) {
			return true
		}
	}
	return false
}

// matchOrigin supports exact matches and *.example.com wildcards
func matchOrigin(allowedOrigin, origin string) bool {
	if allowedOrigin == origin {
		return true
	}
	if strings.HasPrefix(allowedOrigin, "*.") {
		domain := allowedOrigin[2:]
		return strings.HasSuffix(origin, "."+domain)
	}
	return false
}
