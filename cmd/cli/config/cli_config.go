package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/inferloop/statlab/pkg/constants"
)

// CLIConfig holds the defaults applied when a command flag is left unset.
type CLIConfig struct {
	ConfidenceLevel float64 `mapstructure:"confidence_level"`
	Alpha           float64 `mapstructure:"alpha"`
	Tail            string  `mapstructure:"tail"`
	Format          string  `mapstructure:"format"`
	ChiSquareBins   int     `mapstructure:"chi_square_bins"`
	LogLevel        string  `mapstructure:"log_level"`
}

// Default returns the built-in CLI defaults
func Default() *CLIConfig {
	return &CLIConfig{
		ConfidenceLevel: constants.DefaultConfidenceLevel,
		Alpha:           constants.DefaultAlpha,
		Tail:            constants.DefaultTail,
		Format:          "text",
		ChiSquareBins:   0,
		LogLevel:        "warn",
	}
}

// LoadConfig reads cfgFile, or $HOME/.statlab.yaml when cfgFile is empty, and applies
// STATLAB_* environment overrides. A missing default file is not an error.
func LoadConfig(cfgFile string) (*CLIConfig, error) {
	config := Default()
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(home)
		v.SetConfigName("." + constants.AppName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(strings.ToUpper(constants.AppName))
	v.AutomaticEnv()

	v.SetDefault("confidence_level", config.ConfidenceLevel)
	v.SetDefault("alpha", config.Alpha)
	v.SetDefault("tail", config.Tail)
	v.SetDefault("format", config.Format)
	v.SetDefault("chi_square_bins", config.ChiSquareBins)
	v.SetDefault("log_level", config.LogLevel)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return config, config.Validate()
}

// Validate rejects defaults no command could use
func (c *CLIConfig) Validate() error {
	if !(c.ConfidenceLevel > 0 && c.ConfidenceLevel < 1) {
		return fmt.Errorf("confidence_level must lie in (0, 1), got %v", c.ConfidenceLevel)
	}
	if !(c.Alpha > 0 && c.Alpha < 1) {
		return fmt.Errorf("alpha must lie in (0, 1), got %v", c.Alpha)
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("format must be text or json, got %q", c.Format)
	}
	if c.ChiSquareBins < 0 {
		return fmt.Errorf("chi_square_bins must not be negative")
	}
	return nil
}

// GetDefaultConfigPath returns the file LoadConfig reads when no path is given
func GetDefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "."+constants.AppName+".yaml")
}
