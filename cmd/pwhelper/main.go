package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hjanuschka/projectwise-mcp/internal/api"
	"github.com/hjanuschka/projectwise-mcp/internal/cli"
	"github.com/hjanuschka/projectwise-mcp/internal/config"
	"github.com/hjanuschka/projectwise-mcp/internal/logging"
	"github.com/hjanuschka/projectwise-mcp/internal/server"
	"github.com/hjanuschka/projectwise-mcp/internal/token"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pwhelper",
		Short: "CLI tool for browsing a ProjectWise repository",
		Long: `pwhelper talks to a Bentley ProjectWise repository through the WSG REST API.
List folders and documents, search by name, and sign in to obtain a bearer token
for the projectwise-mcp server.`,
		Version:       server.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	var outputFormat, configPath string
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "table", "Output format: table, plain, json")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")

	loadSource := func() (config.Source, error) {
		src, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		return token.WithStoredToken(src)
	}

	logger := logging.Stderr(os.Getenv(config.KeyLogLevel))

	newClient := func() (*api.Client, error) {
		src, err := loadSource()
		if err != nil {
			return nil, err
		}
		cfg, err := config.Resolve(src)
		if err != nil {
			return nil, err
		}
		return api.NewClient(cfg, nil)
	}
	loginConfig := func() (*config.LoginConfig, error) {
		src, err := loadSource()
		if err != nil {
			return nil, err
		}
		return config.ResolveLogin(src)
	}

	// Add commands
	rootCmd.AddCommand(cli.NewFoldersCommand(newClient))
	rootCmd.AddCommand(cli.NewFolderCommand(newClient))
	rootCmd.AddCommand(cli.NewDocumentsCommand(newClient))
	rootCmd.AddCommand(cli.NewDocumentCommand(newClient))
	rootCmd.AddCommand(cli.NewSearchCommand(newClient))
	rootCmd.AddCommand(cli.NewProjectsCommand(newClient))
	rootCmd.AddCommand(cli.NewRepositoryCommand(newClient))
	rootCmd.AddCommand(cli.NewLoginCommand(loginConfig, logger, nil))
	rootCmd.AddCommand(cli.NewTokenCommand(loginConfig))
	rootCmd.AddCommand(cli.NewStorageKeysCommand(loginConfig, logger, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
