package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hjanuschka/projectwise-mcp/internal/api"
)

func NewProjectsCommand(newClient ClientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List all projects in the repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRead(cmd, newClient, "Projects", "list projects", func(ctx context.Context, c *api.Client) (any, error) {
				return c.ListProjects(ctx)
			})
		},
	}
}

func NewRepositoryCommand(newClient ClientFunc) *cobra.Command {
	return &cobra.Command{
		Use:     "repository",
		Aliases: []string{"repo"},
		Short:   "Show information about the configured repository",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRead(cmd, newClient, "Repository", "get repository", func(ctx context.Context, c *api.Client) (any, error) {
				return c.GetRepository(ctx)
			})
		},
	}
}
