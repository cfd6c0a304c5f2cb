package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hjanuschka/projectwise-mcp/internal/logging"
)

const (
	DefaultPollInterval = 2 * time.Second
	DefaultTimeout      = 120 * time.Second

	// transientPause is the extra wait after a page-context error, which
	// usually means a redirect tore down the execution context.
	transientPause = 500 * time.Millisecond
)

// ErrTimeout is returned when no token shows up within the attempt budget.
var ErrTimeout = errors.New("no token detected before timeout")

// State is a step of a poller run.
type State int

const (
	StateIdle State = iota
	StateLaunching
	StateAwaitingLogin
	StatePolling
	StateTransientError
	StateFound
	StateTimedOut
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateLaunching:
		return "Launching"
	case StateAwaitingLogin:
		return "AwaitingLogin"
	case StatePolling:
		return "Polling"
	case StateTransientError:
		return "TransientError"
	case StateFound:
		return "Found"
	case StateTimedOut:
		return "TimedOut"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session is an open browser page the poller can drive.
type Session interface {
	Navigate(ctx context.Context, url string) error
	// ReadSessionStorage returns the value stored under key, or "" if absent.
	ReadSessionStorage(ctx context.Context, key string) (string, error)
	// ListStorage returns every localStorage and sessionStorage entry.
	ListStorage(ctx context.Context) ([]StorageEntry, error)
	Close() error
}

// Launcher opens a browser session.
type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(ctx context.Context) (Session, error)

func (f LauncherFunc) Launch(ctx context.Context) (Session, error) { return f(ctx) }

// Clock abstracts time for the polling loop.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Options configures a Poller. Launcher and Store are required.
type Options struct {
	LoginURL   string
	StorageKey string
	Timeout    time.Duration
	Interval   time.Duration

	Launcher Launcher
	Store    Store
	Clock    Clock
	Logger   *logging.Logger

	// OnTransition, if set, observes every state change.
	OnTransition func(from, to State)
}

// Poller waits for an interactive login to leave a token in session storage.
// A Poller performs a single run.
type Poller struct {
	opts  Options
	state State
}

func NewPoller(opts Options) (*Poller, error) {
	if opts.Launcher == nil {
		return nil, errors.New("poller: launcher is required")
	}
	if opts.Store == nil {
		return nil, errors.New("poller: store is required")
	}
	if opts.StorageKey == "" {
		return nil, errors.New("poller: storage key is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollInterval
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return &Poller{opts: opts}, nil
}

// State returns the current state.
func (p *Poller) State() State { return p.state }

// Attempts is the number of storage reads the timeout allows.
func (p *Poller) Attempts() int {
	n := int((p.opts.Timeout + p.opts.Interval - 1) / p.opts.Interval)
	if n < 1 {
		n = 1
	}
	return n
}

func (p *Poller) transition(to State) {
	from := p.state
	if from == to {
		return
	}
	p.state = to
	p.opts.Logger.StateTransition("token-poller", from.String(), to.String())
	if p.opts.OnTransition != nil {
		p.opts.OnTransition(from, to)
	}
}

// Run launches the browser, waits for the token and persists it. The browser
// session is closed on every return path. On timeout the returned error wraps
// ErrTimeout and nothing is written.
func (p *Poller) Run(ctx context.Context) (*Record, error) {
	log := p.opts.Logger
	p.transition(StateLaunching)

	sess, err := p.opts.Launcher.Launch(ctx)
	if err != nil {
		p.transition(StateFailed)
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.Warn("Failed to close browser", "error", err)
		}
	}()

	if p.opts.LoginURL != "" {
		log.Info("Opening login page", "url", p.opts.LoginURL)
		if err := sess.Navigate(ctx, p.opts.LoginURL); err != nil {
			p.transition(StateFailed)
			return nil, fmt.Errorf("failed to open login page: %w", err)
		}
	}
	p.transition(StateAwaitingLogin)
	log.Info("Waiting for login", "storage_key", p.opts.StorageKey, "timeout", p.opts.Timeout)

	rec, err := p.poll(ctx, sess)
	if err != nil {
		return nil, err
	}

	if err := p.opts.Store.Save(rec); err != nil {
		p.transition(StateFailed)
		return nil, fmt.Errorf("failed to save token: %w", err)
	}
	return rec, nil
}

func (p *Poller) poll(ctx context.Context, sess Session) (*Record, error) {
	log := p.opts.Logger
	clock := p.opts.Clock
	attempts := p.Attempts()

	for attempt := 1; attempt <= attempts; attempt++ {
		p.transition(StatePolling)

		raw, err := sess.ReadSessionStorage(ctx, p.opts.StorageKey)
		if err != nil {
			if ctx.Err() != nil {
				p.transition(StateFailed)
				return nil, ctx.Err()
			}
			p.transition(StateTransientError)
			log.Debug("Session storage not readable yet", "attempt", attempt, "error", err)
			if err := clock.Sleep(ctx, transientPause); err != nil {
				p.transition(StateFailed)
				return nil, err
			}
		} else if rec, ok := ParseStorageValue(raw, p.opts.StorageKey, clock.Now()); ok {
			p.transition(StateFound)
			log.Info("Token detected", "attempt", attempt)
			return rec, nil
		}

		if attempt == attempts {
			break
		}
		if err := clock.Sleep(ctx, p.opts.Interval); err != nil {
			p.transition(StateFailed)
			return nil, err
		}
	}

	p.transition(StateTimedOut)
	return nil, fmt.Errorf("%w: %d attempts over %s for key %q", ErrTimeout, attempts, p.opts.Timeout, p.opts.StorageKey)
}
