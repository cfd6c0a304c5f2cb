package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hjanuschka/projectwise-mcp/internal/api"
	"github.com/hjanuschka/projectwise-mcp/internal/config"
	"github.com/hjanuschka/projectwise-mcp/internal/logging"
	"github.com/hjanuschka/projectwise-mcp/internal/server"
	"github.com/hjanuschka/projectwise-mcp/internal/token"
)

func run(cmd *cobra.Command, configPath string) error {
	src, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	src, err = token.WithStoredToken(src)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level, _ := src.Lookup(config.KeyLogLevel)
	logger := logging.Stderr(level)
	logger.Info("Starting ProjectWise MCP server", "version", server.Version)

	cfg, err := config.Resolve(src)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	client, err := api.NewClient(cfg, nil)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Info("Configuration loaded", "baseUrl", cfg.BaseURL, "repositoryId", cfg.RepositoryID)

	ps := server.New(client, logger)

	logger.Info("ProjectWise MCP server is running (stdio)")
	if err := ps.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("Shutting down")
	return nil
}

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "projectwise-mcp",
		Short: "MCP stdio server for a Bentley ProjectWise repository",
		Long: `projectwise-mcp exposes ProjectWise WSG read operations as MCP tools over stdin/stdout.

Required settings (environment or YAML config):
  PW_WSG_BASE_URL   e.g. https://server/ws/v2.8
  PW_REPOSITORY_ID  datasource identifier
  PW_TOKEN          bearer token (falls back to the token saved by "pwhelper login")`,
		Version:       server.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, configPath)
		},
	}
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Stderr("").Error("Fatal error starting server", "error", err)
		stop()
		os.Exit(1)
	}
}
