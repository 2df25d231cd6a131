package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inferloop/statlab/internal/analytics"
	"github.com/inferloop/statlab/internal/api/middleware"
	"github.com/inferloop/statlab/internal/observability/metrics"
	"github.com/inferloop/statlab/pkg/constants"
)

// Config contains the configuration for the statlab server
type Config struct {
	Server      ServerConfig             `json:"server" mapstructure:"server"`
	Logging     LoggingConfig            `json:"logging" mapstructure:"logging"`
	Metrics     metrics.PrometheusConfig `json:"metrics" mapstructure:"metrics"`
	Engine      analytics.EngineConfig   `json:"engine" mapstructure:"engine"`
	CORS        middleware.CORSConfig    `json:"cors" mapstructure:"cors"`
	AccessLog   middleware.LoggingConfig `json:"access_log" mapstructure:"access_log"`
	Environment string                   `json:"environment" mapstructure:"environment"`
	Version     string                   `json:"version" mapstructure:"version"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Host            string        `json:"host" mapstructure:"host"`
	Port            int           `json:"port" mapstructure:"port"`
	ReadTimeout     time.Duration `json:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout" mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	MaxHeaderBytes  int           `json:"max_header_bytes" mapstructure:"max_header_bytes"`
}

// LoggingConfig selects the logrus level and formatter
type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

// NewDefaultConfig creates a default server configuration
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            constants.DefaultHost,
			Port:            constants.DefaultPort,
			ReadTimeout:     constants.DefaultReadTimeout,
			WriteTimeout:    constants.DefaultWriteTimeout,
			IdleTimeout:     constants.DefaultIdleTimeout,
			ShutdownTimeout: constants.DefaultShutdownTimeout,
			MaxHeaderBytes:  1 << 20, // 1MB
		},
		Logging: LoggingConfig{
			Level:  constants.DefaultLogLevel,
			Format: constants.DefaultLogFormat,
		},
		Metrics:     *metrics.DefaultPrometheusConfig(),
		Engine:      *analytics.DefaultEngineConfig(),
		CORS:        *middleware.DefaultCORSConfig(),
		AccessLog:   *middleware.DefaultLoggingConfig(),
		Environment: "development",
		Version:     constants.AppVersion,
	}
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Metrics.Enabled && (c.Metrics.Port < 0 || c.Metrics.Port > 65535) {
		return fmt.Errorf("invalid metrics port: %d", c.Metrics.Port)
	}

	if c.Metrics.Enabled && c.Metrics.Port == c.Server.Port {
		return fmt.Errorf("metrics port %d collides with the API port", c.Metrics.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive")
	}

	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}

	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Logging.Level, err)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format %q: expected json or text", c.Logging.Format)
	}

	if c.Engine.MaxSampleSize <= 0 || c.Engine.MaxSampleSize > constants.MaxSampleSize {
		return fmt.Errorf("max sample size must lie in [1, %d]", constants.MaxSampleSize)
	}

	if c.Engine.ParallelWorkers <= 0 {
		return fmt.Errorf("parallel workers must be positive")
	}

	return nil
}

// GetAddress returns the server address
func (c *Config) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// NewLogger builds a logrus logger from the logging section. Validate first.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	if level, err := logrus.ParseLevel(c.Logging.Level); err == nil {
		logger.SetLevel(level)
	}
	if strings.ToLower(c.Logging.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
