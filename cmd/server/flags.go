package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inferloop/statlab/internal/server"
	"github.com/inferloop/statlab/pkg/constants"
)

// flagKeys maps command-line flags onto their configuration keys.
var flagKeys = map[string]string{
	"host":         "server.host",
	"port":         "server.port",
	"metrics-port": "metrics.port",
	"log-level":    "logging.level",
	"log-format":   "logging.format",
	"environment":  "environment",
	"max-sample":   "engine.max_sample_size",
	"workers":      "engine.parallel_workers",
}

func registerFlags(cmd *cobra.Command, defaults *server.Config) {
	flags := cmd.Flags()
	flags.String("config", "", "Path to configuration file (yaml, json or toml)")
	flags.String("host", defaults.Server.Host, "Server host")
	flags.Int("port", defaults.Server.Port, "Server port")
	flags.Int("metrics-port", defaults.Metrics.Port, "Prometheus metrics port (0 disables the standalone listener)")
	flags.String("log-level", defaults.Logging.Level, "Log level (debug, info, warn, error)")
	flags.String("log-format", defaults.Logging.Format, "Log format (json, text)")
	flags.String("environment", defaults.Environment, "Deployment environment reported by /health")
	flags.Int("max-sample", defaults.Engine.MaxSampleSize, "Largest sample accepted per request")
	flags.Int("workers", defaults.Engine.ParallelWorkers, "Goodness-of-fit tests run concurrently per suite")
	flags.Bool("version", false, "Show version information")
}

// loadConfig layers defaults, the config file, STATLAB_* environment variables and
// explicitly set flags, in increasing precedence.
func loadConfig(cmd *cobra.Command) (*server.Config, error) {
	config := server.NewDefaultConfig()
	v := viper.New()

	v.SetEnvPrefix(strings.ToUpper(constants.AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}

	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName(constants.AppName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/" + constants.AppName)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.Version = Version

	return config, config.Validate()
}
