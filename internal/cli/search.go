package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hjanuschka/projectwise-mcp/internal/api"
)

func NewSearchCommand(newClient ClientFunc) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <name-pattern>",
		Short: "Search documents by name",
		Long: `Search for documents whose name contains the given pattern.

Examples:
  pwhelper search bridge
  pwhelper search "Level 1" --limit=10
  pwhelper search .dgn -f json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := args[0]
			return runRead(cmd, newClient, "Search results for: "+pattern, "search", func(ctx context.Context, c *api.Client) (any, error) {
				return c.SearchDocuments(ctx, pattern, limit)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", api.DefaultSearchLimit, "Maximum number of results")

	return cmd
}
