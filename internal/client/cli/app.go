package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophadmin/internal/client/auth"
	"github.com/dmitrijs2005/gophadmin/internal/client/client"
	"github.com/dmitrijs2005/gophadmin/internal/client/config"
	"github.com/dmitrijs2005/gophadmin/internal/client/credentials"
	"github.com/dmitrijs2005/gophadmin/internal/client/models"
	"github.com/dmitrijs2005/gophadmin/internal/client/session"
	"github.com/dmitrijs2005/gophadmin/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const watcherDebounce = 100 * time.Millisecond

// authCore is the part of auth.Reconciler the console drives.
type authCore interface {
	View(ctx context.Context) models.AuthView
	Login(ctx context.Context, req models.LoginRequest) error
	Logout(ctx context.Context) error
	Verify(ctx context.Context) (models.AuthView, error)
	Focus()
	Subscribe() (<-chan models.AuthView, func())
}

type tokenReader interface {
	Get(ctx context.Context) (models.CredentialPair, bool, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	config *config.Config
	logger logging.Logger
	core   authCore
	tokens tokenReader
	pinger pinger
	nav    *Navigator
	reader *bufio.Reader
	out    io.Writer

	modeMu sync.Mutex
	mode   Mode

	// runners are started by Run and stopped when the REPL exits.
	runners []func(ctx context.Context) error
	closers []func() error
}

// NewApp opens the local database and wires the credential store, session
// cache, transport client and auth reconciler.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	fail := func(err error) (*App, error) {
		_ = db.Close()
		return nil, err
	}

	store := credentials.NewStore(db, logger)
	cache, err := session.Open(ctx, db)
	if err != nil {
		return fail(err)
	}

	watcher, err := credentials.NewWatcher(store, c.DatabasePath, watcherDebounce, logger)
	if err != nil {
		return fail(err)
	}

	api, err := client.New(c.Transport, c.ServerEndpointAddr, store, c.RequestTimeout)
	if err != nil {
		return fail(err)
	}

	nav := NewNavigator(os.Stdout, c.LoginPath)
	rec, err := auth.New(auth.Deps{
		Credentials: store,
		Session:     cache,
		API:         api,
		Notifier:    NewNotifier(os.Stdout),
		Navigator:   nav,
		Logger:      logger,
	}, c.AuthOptions())
	if err != nil {
		_ = api.Close()
		return fail(err)
	}

	if rec.View(ctx).IsAuthenticated {
		nav.reset(c.HomePath)
	}

	return &App{
		config:  c,
		logger:  logger.With("module", "cli"),
		core:    rec,
		tokens:  store,
		pinger:  api,
		nav:     nav,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		runners: []func(context.Context) error{rec.Run, watcher.Run},
		closers: []func() error{api.Close, db.Close},
	}, nil
}

// Run starts the background workers, runs the REPL until the user leaves or
// ctx is done, then releases resources.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	for _, run := range a.runners {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := run(ctx); err != nil {
				a.logger.Error(ctx, "background worker stopped", "error", err)
			}
		}()
	}
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()
	go func() {
		defer wg.Done()
		a.guardRoutes(ctx)
	}()

	fmt.Fprintln(a.out, "Welcome to gophadmin console (type 'help' for commands)")
	runREPL(ctx, a, func() string { return a.getStatus(ctx) }, a.reader)

	cancel()
	wg.Wait()
	a.Close()
}

func (a *App) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	if a.mode != mode {
		a.mode = mode
		fmt.Fprintf(a.out, "Switched to %s mode\n", mode)
	}
}

func (a *App) getMode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

// StartOnlineStatusWatcher pings the server every interval and flips the
// prompt's online/offline marker. Coming back online re-triggers session
// verification.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.pinger.Ping(pctx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
				continue
			}
			if a.getMode() == ModeOffline {
				a.logger.Info(ctx, "Server is reachable again")
				a.core.Focus()
			}
			a.setMode(ModeOnline)

		case <-ctx.Done():
			return
		}
	}
}

// guardRoutes sends the console back to the login route whenever the view
// becomes logged out outside of an explicit logout: a session rejected by
// the server or a logout in another console process.
func (a *App) guardRoutes(ctx context.Context) {
	views, unsubscribe := a.core.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-views:
			if !ok {
				return
			}
			if guard(v) == guardRedirect && a.nav.Current() != a.config.LoginPath {
				fmt.Fprintln(a.out, "Session ended.")
				a.nav.Replace(a.config.LoginPath)
			}
		}
	}
}

func (a *App) getStatus(ctx context.Context) string {
	v := a.core.View(ctx)

	var parts []string
	if v.User != nil {
		parts = append(parts, v.User.Email)
	}
	parts = append(parts, v.State.String())
	if m := a.getMode(); m != "" {
		parts = append(parts, string(m))
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (a *App) Focus() {
	a.core.Focus()
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	return a.core.View(ctx).IsAuthenticated
}

// redirectToLogin is the route guard's refusal.
func (a *App) redirectToLogin() {
	fmt.Fprintln(a.out, "Please log in first.")
	a.nav.Replace(a.config.LoginPath)
}

func verificationMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrVerificationUnauthorized):
		return "Session rejected by the server."
	case errors.Is(err, auth.ErrVerificationTransient):
		return "Could not verify the session right now; will retry later."
	default:
		return "Verification failed: " + err.Error()
	}
}
