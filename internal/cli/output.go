package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hjanuschka/projectwise-mcp/internal/api"
	"github.com/hjanuschka/projectwise-mcp/internal/formatter"
)

// ClientFunc builds the WSG client on demand so commands that do not talk to
// the server (login, token) work without a complete configuration.
type ClientFunc func() (*api.Client, error)

type fetchFunc func(ctx context.Context, client *api.Client) (any, error)

func runRead(cmd *cobra.Command, newClient ClientFunc, title, action string, fetch fetchFunc) error {
	format, _ := cmd.Flags().GetString("format")

	client, err := newClient()
	if err != nil {
		return err
	}

	result, err := fetch(cmd.Context(), client)
	if err != nil {
		return fmt.Errorf("%s failed: %w", action, err)
	}

	return render(cmd.OutOrStdout(), format, title, result)
}

func render(w io.Writer, format, title string, result any) error {
	switch format {
	case "json":
		return formatter.PrintJSON(w, result)
	case "plain":
		return formatter.PrintInstancesPlain(w, title, result)
	default:
		return formatter.PrintInstancesTable(w, title, result)
	}
}
