package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/hjanuschka/projectwise-mcp/internal/formatter"
	"github.com/hjanuschka/projectwise-mcp/internal/logging"
	"github.com/hjanuschka/projectwise-mcp/internal/token"
)

// NewStorageKeysCommand lists the web storage keys that may hold the OIDC
// credential, to find the right PW_OIDC_STORAGE_KEY. A nil launcher uses a
// local Chrome.
func NewStorageKeysCommand(loadConfig LoginConfigFunc, logger *logging.Logger, launcher token.Launcher) *cobra.Command {
	var (
		headless   bool
		chromePath string
	)

	cmd := &cobra.Command{
		Use:   "storage-keys",
		Short: "List browser storage keys that may hold the ProjectWise token",
		Long: `Open a browser on the ProjectWise login page, wait until you press Enter, then
scan localStorage and sessionStorage for keys containing oidc, token, user or auth.

Each key is reported with whether it yields an access token. Use the matching key
as PW_OIDC_STORAGE_KEY for "pwhelper login".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			ctx := cmd.Context()

			lc, err := loadConfig()
			if err != nil {
				return err
			}

			l := launcher
			if l == nil {
				l = token.ChromeLauncher{Headless: headless, ExecPath: chromePath}
			}
			sess, err := l.Launch(ctx)
			if err != nil {
				return fmt.Errorf("failed to launch browser: %w", err)
			}
			defer func() {
				if err := sess.Close(); err != nil {
					logger.Warn("Failed to close browser", "error", err)
				}
			}()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Opening browser for ProjectWise login: %s\n", lc.LoginURL)
			if err := sess.Navigate(ctx, lc.LoginURL); err != nil {
				return fmt.Errorf("failed to open login page: %w", err)
			}

			fmt.Fprintln(out, "Sign in in the opened browser window, then press Enter here.")
			if err := waitForEnter(ctx, cmd.InOrStdin()); err != nil {
				return err
			}

			candidates, err := token.Discover(ctx, sess, time.Now())
			if err != nil {
				return fmt.Errorf("failed to read browser storage: %w", err)
			}
			logger.Debug("Scanned browser storage", "candidates", len(candidates))

			switch format {
			case "json":
				return formatter.PrintJSON(out, candidates)
			case "plain":
				formatter.PrintCandidatesPlain(out, candidates)
			default:
				formatter.PrintCandidatesTable(out, candidates)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&headless, "headless", false, "Run the browser without a window")
	cmd.Flags().StringVar(&chromePath, "chrome", "", "Path to the Chrome/Chromium executable")

	return cmd
}

// waitForEnter returns once a line (or EOF) is read from r, or when ctx is done.
func waitForEnter(ctx context.Context, r io.Reader) error {
	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(r).ReadString('\n')
		if err == io.EOF {
			err = nil
		}
		done <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
