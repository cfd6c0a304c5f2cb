package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hjanuschka/projectwise-mcp/internal/api"
)

func NewDocumentsCommand(newClient ClientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "documents <folder-id>",
		Short: "List documents in a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return runRead(cmd, newClient, "Documents in "+id, "list documents", func(ctx context.Context, c *api.Client) (any, error) {
				return c.ListDocuments(ctx, id)
			})
		},
	}
}

func NewDocumentCommand(newClient ClientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "document <document-id>",
		Short: "Show metadata for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return runRead(cmd, newClient, "Document "+id, "get document", func(ctx context.Context, c *api.Client) (any, error) {
				return c.GetDocument(ctx, id)
			})
		},
	}
}
