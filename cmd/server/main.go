package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inferloop/statlab/internal/server"
	"github.com/inferloop/statlab/pkg/constants"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           constants.AppName + "-server",
		Short:         "Statistical computation HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	registerFlags(cmd, server.NewDefaultConfig())
	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
		info := GetBuildInfo()
		fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\nGit Commit: %s\nBuild Date: %s\nGo Version: %s\nPlatform: %s\n",
			info.Version, info.GitCommit, info.BuildDate, info.GoVersion, info.Platform)
		return nil
	}

	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := config.NewLogger()
	logger.WithFields(logrus.Fields{
		"version":   Version,
		"commit":    GitCommit,
		"buildDate": BuildDate,
	}).Info("Starting statlab server")

	srv, err := server.NewServer(config, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		logger.WithError(err).Error("Server failed")
		return err
	}

	logger.Info("Server stopped")
	return nil
}
