package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hjanuschka/projectwise-mcp/internal/formatter"
)

func NewTokenCommand(loadConfig LoginConfigFunc) *cobra.Command {
	var (
		useKeyring bool
		raw        bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Show the stored bearer token and its expiry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")

			lc, err := loadConfig()
			if err != nil {
				return err
			}
			store := tokenStore(lc, useKeyring)

			rec, err := store.Load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case raw:
				fmt.Fprintln(out, rec.AccessToken)
			case format == "json":
				return formatter.PrintJSON(out, rec)
			default:
				formatter.PrintTokenStatus(out, fmt.Sprint(store), rec, time.Now())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&useKeyring, "keyring", false, "Read the token from the OS credential store")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print only the access token")

	return cmd
}
