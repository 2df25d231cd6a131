package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inferloop/statlab/cmd/cli/config"
	"github.com/inferloop/statlab/internal/analytics"
	"github.com/inferloop/statlab/pkg/constants"
)

// Runtime carries what every subcommand needs once the root command has loaded config.
type Runtime struct {
	Config *config.CLIConfig
	Logger *logrus.Logger
	Engine *analytics.Engine

	cfgFile string
	format  string
	verbose bool
	stdin   io.Reader
}

// NewRootCmd builds the statlab command tree. stdin feeds samples when --data is omitted.
func NewRootCmd(version string, stdin io.Reader) *cobra.Command {
	if stdin == nil {
		stdin = os.Stdin
	}
	rt := &Runtime{stdin: stdin}

	rootCmd := &cobra.Command{
		Use:   constants.AppName,
		Short: "Statistical computations from the command line",
		Long: `Descriptive statistics, confidence intervals, hypothesis tests, power analysis,
parameter estimation and goodness-of-fit tests over samples given with --data or on stdin.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.init(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&rt.cfgFile, "config", "", "config file (default is $HOME/.statlab.yaml)")
	rootCmd.PersistentFlags().StringVar(&rt.format, "format", "", "output format (text, json); defaults to the config value")
	rootCmd.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(NewDescribeCmd(rt))
	rootCmd.AddCommand(NewIntervalCmd(rt))
	rootCmd.AddCommand(NewTestCmd(rt))
	rootCmd.AddCommand(NewPowerCmd(rt))
	rootCmd.AddCommand(NewSampleSizeCmd(rt))
	rootCmd.AddCommand(NewEstimateCmd(rt))
	rootCmd.AddCommand(NewGofCmd(rt))
	rootCmd.AddCommand(NewGenerateCmd(rt))

	return rootCmd
}

func (rt *Runtime) init(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(rt.cfgFile)
	if err != nil {
		return err
	}
	if rt.format != "" {
		cfg.Format = rt.format
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	rt.Config = cfg

	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log_level %q: %w", cfg.LogLevel, err)
	}
	if rt.verbose {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)
	rt.Logger = logger

	if rt.verbose && rt.cfgFile != "" {
		logger.WithField("file", rt.cfgFile).Debug("Using config file")
	}

	rt.Engine = analytics.NewEngine(nil, logger, nil)
	return nil
}

func (rt *Runtime) confidence(flag float64) float64 {
	if flag == 0 {
		return rt.Config.ConfidenceLevel
	}
	return flag
}

func (rt *Runtime) alpha(flag float64) float64 {
	if flag == 0 {
		return rt.Config.Alpha
	}
	return flag
}

func (rt *Runtime) tail(flag string) string {
	if flag == "" {
		return rt.Config.Tail
	}
	return flag
}
