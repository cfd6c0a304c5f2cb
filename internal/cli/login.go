package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hjanuschka/projectwise-mcp/internal/config"
	"github.com/hjanuschka/projectwise-mcp/internal/logging"
	"github.com/hjanuschka/projectwise-mcp/internal/token"
)

// LoginConfigFunc resolves the login settings when a command runs.
type LoginConfigFunc func() (*config.LoginConfig, error)

func tokenStore(lc *config.LoginConfig, useKeyring bool) token.Store {
	if useKeyring || lc.TokenStore == config.TokenStoreKeyring {
		return token.NewKeyringStore()
	}
	return token.FileStore{Path: lc.TokenFile}
}

// NewLoginCommand opens a browser for interactive sign-in and stores the
// bearer token it finds. A nil launcher uses a local Chrome.
func NewLoginCommand(loadConfig LoginConfigFunc, logger *logging.Logger, launcher token.Launcher) *cobra.Command {
	var (
		headless   bool
		chromePath string
		useKeyring bool
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in through a browser and save the ProjectWise bearer token",
		Long: `Open a browser on the ProjectWise login page and wait until the OIDC session
stores an access token, then save it for the MCP server.

The token is read from sessionStorage (PW_OIDC_STORAGE_KEY) every 2 seconds
until PW_LOGIN_TIMEOUT seconds pass (default 120).

Examples:
  pwhelper login
  pwhelper login --keyring
  PW_TOKEN_STORE=keyring pwhelper login
  pwhelper login --timeout=5m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lc, err := loadConfig()
			if err != nil {
				return err
			}
			if timeout > 0 {
				lc.Timeout = timeout
			}

			l := launcher
			if l == nil {
				l = token.ChromeLauncher{Headless: headless, ExecPath: chromePath}
			}
			store := tokenStore(lc, useKeyring)

			poller, err := token.NewPoller(token.Options{
				LoginURL:   lc.LoginURL,
				StorageKey: lc.StorageKey,
				Timeout:    lc.Timeout,
				Launcher:   l,
				Store:      store,
				Logger:     logger,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Opening browser for ProjectWise login: %s\n", lc.LoginURL)
			fmt.Fprintln(out, "Please complete login in the opened browser window. Leave this window open.")

			if _, err := poller.Run(cmd.Context()); err != nil {
				if errors.Is(err, token.ErrTimeout) {
					return fmt.Errorf("%w; make sure you are fully signed in and the sessionStorage key exists", err)
				}
				return fmt.Errorf("token fetch failed: %w", err)
			}

			fmt.Fprintf(out, "Token saved to %s\n", store)
			return nil
		},
	}

	cmd.Flags().BoolVar(&headless, "headless", false, "Run the browser without a window")
	cmd.Flags().StringVar(&chromePath, "chrome", "", "Path to the Chrome/Chromium executable")
	cmd.Flags().BoolVar(&useKeyring, "keyring", false, "Store the token in the OS credential store instead of a file (same as PW_TOKEN_STORE=keyring)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Override the login timeout (e.g. 5m)")

	return cmd
}
