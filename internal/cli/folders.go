package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hjanuschka/projectwise-mcp/internal/api"
)

func NewFoldersCommand(newClient ClientFunc) *cobra.Command {
	return &cobra.Command{
		Use:     "folders [parent-id]",
		Aliases: []string{"ls"},
		Short:   "List folders, at the root or under a parent folder",
		Long: `List ProjectWise folders. Without an argument the root folders are listed.

Examples:
  pwhelper folders
  pwhelper ls 5f0c1a7e-1b2c-4d3e-8f90-123456789abc`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parentID := ""
			title := "Root folders"
			if len(args) == 1 {
				parentID = args[0]
				title = "Folders in " + parentID
			}
			return runRead(cmd, newClient, title, "list folders", func(ctx context.Context, c *api.Client) (any, error) {
				return c.ListFolders(ctx, parentID)
			})
		},
	}
}

func NewFolderCommand(newClient ClientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "folder <folder-id>",
		Short: "Show metadata for a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return runRead(cmd, newClient, "Folder "+id, "get folder", func(ctx context.Context, c *api.Client) (any, error) {
				return c.GetFolder(ctx, id)
			})
		},
	}
}
