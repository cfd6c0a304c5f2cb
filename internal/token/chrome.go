package token

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chromedp/chromedp"
)

// ChromeLauncher starts a local Chrome over the DevTools protocol. It is
// visible by default so the operator can complete the login.
type ChromeLauncher struct {
	Headless bool
	ExecPath string
}

func (l ChromeLauncher) Launch(ctx context.Context) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.Headless),
	)
	if l.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(l.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// An empty Run starts the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, err
	}
	return &chromeSession{ctx: browserCtx, cancelAlloc: cancelAlloc}, nil
}

type chromeSession struct {
	ctx         context.Context
	cancelAlloc context.CancelFunc
}

// run executes actions on the browser tab, aborting when either the session
// or the caller's ctx is done.
func (s *chromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := linkContext(s.ctx, ctx)
	defer cancel()
	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// linkContext derives a context from parent that is also cancelled with caller.
// Values, including the chromedp target, come from parent.
func linkContext(parent, caller context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(caller, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

func (s *chromeSession) ReadSessionStorage(ctx context.Context, key string) (string, error) {
	expr, err := sessionStorageExpr(key)
	if err != nil {
		return "", err
	}
	var value string
	if err := s.run(ctx, chromedp.Evaluate(expr, &value)); err != nil {
		return "", err
	}
	return value, nil
}

func (s *chromeSession) ListStorage(ctx context.Context) ([]StorageEntry, error) {
	var entries []StorageEntry
	if err := s.run(ctx, chromedp.Evaluate(listStorageExpr, &entries)); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *chromeSession) Close() error {
	err := chromedp.Cancel(s.ctx)
	s.cancelAlloc()
	return err
}

const listStorageExpr = `(() => {
  const out = [];
  for (const [area, store] of [["localStorage", window.localStorage], ["sessionStorage", window.sessionStorage]]) {
    for (let i = 0; i < store.length; i++) {
      const key = store.key(i);
      out.push({area: area, key: key, value: store.getItem(key) || ""});
    }
  }
  return out;
})()`

func sessionStorageExpr(key string) (string, error) {
	quoted, err := json.Marshal(key)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("window.sessionStorage.getItem(%s) || \"\"", quoted), nil
}
