package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/gophadmin/internal/client/client"
	"github.com/dmitrijs2005/gophadmin/internal/client/models"
	"github.com/dmitrijs2005/gophadmin/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName  = "github.com/dmitrijs2005/gophadmin/internal/client/auth"
	mailboxSize = 32
)

// Deps are the collaborators of a Reconciler. Notifier and Navigator may be
// nil.
type Deps struct {
	Credentials CredentialStore
	Session     SessionCache
	API         API
	Notifier    Notifier
	Navigator   Navigator
	Logger      logging.Logger
}

type verifyResult struct {
	view models.AuthView
	err  error
}

// verification is one profile check in flight and the Verify callers
// waiting for it.
type verification struct {
	epoch   uint64
	reason  string
	waiters []chan verifyResult
}

type Reconciler struct {
	creds  CredentialStore
	cache  SessionCache
	api    API
	notify Notifier
	nav    Navigator
	logger logging.Logger
	opts   Options
	tracer trace.Tracer

	mailbox chan func(ctx context.Context)
	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup

	// Subscribed in New so that store events raised before Run are kept.
	events      <-chan models.CredentialEvent
	unsubscribe func()

	// Owned by the Run goroutine.
	epoch    uint64
	inflight *verification

	pending atomic.Bool

	subMu   sync.Mutex
	subs    map[int]chan models.AuthView
	nextSub int
	last    *models.AuthView
}

func New(d Deps, opts Options) (*Reconciler, error) {
	if d.Credentials == nil || d.Session == nil || d.API == nil {
		return nil, errors.New("auth: credential store, session cache and api are required")
	}
	r := &Reconciler{
		creds:   d.Credentials,
		cache:   d.Session,
		api:     d.API,
		notify:  d.Notifier,
		nav:     d.Navigator,
		logger:  d.Logger,
		opts:    opts.normalized(),
		tracer:  otel.Tracer(tracerName),
		mailbox: make(chan func(ctx context.Context), mailboxSize),
		done:    make(chan struct{}),
		subs:    make(map[int]chan models.AuthView),
	}
	if r.notify == nil {
		r.notify = nopNotifier{}
	}
	if r.nav == nil {
		r.nav = nopNavigator{}
	}
	if r.logger == nil {
		r.logger = logging.NewNop()
	}
	r.logger = r.logger.With("module", "auth")
	r.events, r.unsubscribe = r.creds.Subscribe()
	return r, nil
}

// Run processes triggers and commands until ctx is done. Calls made before
// Run starts are queued. Run may be called once.
func (r *Reconciler) Run(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	events := r.events
	defer r.unsubscribe()

	var recheck <-chan time.Time
	if r.opts.RecheckInterval > 0 {
		t := time.NewTicker(r.opts.RecheckInterval)
		defer t.Stop()
		recheck = t.C
	}

	defer func() {
		close(r.done)
		r.wg.Wait()
	}()

	r.logger.Debug(ctx, "reconciler started", "recheck_interval", r.opts.RecheckInterval)
	r.trigger(ctx, "startup", nil)

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug(ctx, "reconciler stopped")
			return nil
		case fn := <-r.mailbox:
			fn(ctx)
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			r.onCredentialEvent(ctx, ev)
		case <-recheck:
			r.trigger(ctx, "recheck", nil)
		}
	}
}

func (r *Reconciler) send(ctx context.Context, fn func(ctx context.Context)) error {
	select {
	case r.mailbox <- fn:
		return nil
	case <-r.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ask runs fn on the actor and waits for its result.
func ask[T any](ctx context.Context, r *Reconciler, fn func(actx context.Context) T) (T, error) {
	var zero T
	reply := make(chan T, 1)
	if err := r.send(ctx, func(actx context.Context) { reply <- fn(actx) }); err != nil {
		return zero, err
	}
	select {
	case v := <-reply:
		return v, nil
	case <-r.done:
		select {
		case v := <-reply:
			return v, nil
		default:
			return zero, ErrStopped
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// View derives the current view. Credential presence is read live from the
// store on every call.
func (r *Reconciler) View(ctx context.Context) models.AuthView {
	return models.DeriveView(r.cache.User(), r.credentialsPresent(ctx), r.pending.Load())
}

func (r *Reconciler) credentialsPresent(ctx context.Context) bool {
	_, ok, err := r.creds.Get(ctx)
	if err != nil {
		r.logger.Warn(ctx, "credential store read failed", "error", err)
		return false
	}
	return ok
}

// Login authenticates, caches the returned profile and navigates home. On
// any failure the user is notified and an error wrapping ErrLoginRejected
// is returned.
func (r *Reconciler) Login(ctx context.Context, req models.LoginRequest) error {
	err, serr := ask(ctx, r, func(context.Context) error { return r.login(ctx, req) })
	if serr != nil {
		return serr
	}
	return err
}

func (r *Reconciler) login(ctx context.Context, req models.LoginRequest) (err error) {
	ctx, span := r.tracer.Start(ctx, "auth.login")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "login failed")
		}
		span.End()
	}()

	resp, err := r.api.Login(ctx, req)
	if err != nil {
		r.logger.Warn(ctx, "login failed", "error", err)
		r.notify.Error(loginFailureMessage(err))
		return fmt.Errorf("%w: %w", ErrLoginRejected, err)
	}
	if resp == nil || resp.User == nil {
		r.logger.Error(ctx, "login reply without user profile")
		r.notify.Error("Login failed: the server returned no user profile")
		return ErrMalformedLoginResponse
	}

	if _, ok, gerr := r.creds.Get(ctx); gerr != nil || !ok {
		r.logger.Error(ctx, "credentials missing after login", "error", gerr)
		r.notify.Error("Login failed: credentials were not saved")
		if gerr != nil {
			return fmt.Errorf("%w: %w", ErrCredentialsNotPersisted, gerr)
		}
		return ErrCredentialsNotPersisted
	}

	if serr := r.cache.Store(ctx, resp.User); serr != nil {
		r.logger.Error(ctx, "failed to store session profile", "error", serr)
		r.notify.Error("Login failed: the session could not be saved")
		return fmt.Errorf("%w: %w", ErrLoginRejected, serr)
	}

	r.bump()
	r.publish(ctx)
	span.SetAttributes(attribute.String("user.id", resp.User.ID))

	if d := r.opts.SettleDelay; d > 0 {
		t := time.NewTimer(d)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
		}
	}

	r.nav.Replace(r.opts.HomePath)
	r.notify.Success("Welcome, " + resp.User.DisplayName())
	r.logger.Info(ctx, "logged in", "user_id", resp.User.ID)
	return nil
}

func loginFailureMessage(err error) string {
	switch {
	case Classify(err) == models.Unauthorized:
		return "Invalid email or password"
	case errors.Is(err, client.ErrUnavailable):
		return "Login failed: server unavailable"
	default:
		return "Login failed: " + err.Error()
	}
}

// Logout revokes the session on the server and clears local state whatever
// the server answered. A server failure is returned wrapped in
// ErrLogoutFailed after the local state is gone.
func (r *Reconciler) Logout(ctx context.Context) error {
	err, serr := ask(ctx, r, func(context.Context) error { return r.logout(ctx) })
	if serr != nil {
		return serr
	}
	return err
}

func (r *Reconciler) logout(ctx context.Context) (err error) {
	ctx, span := r.tracer.Start(ctx, "auth.logout")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "logout failed")
		}
		span.End()
	}()

	// Local clearing must not depend on the caller's deadline.
	local := context.WithoutCancel(ctx)

	pair, _, gerr := r.creds.Get(local)
	if gerr != nil {
		r.logger.Warn(ctx, "credential store read failed", "error", gerr)
	}
	apiErr := r.api.Logout(ctx, pair.RefreshToken)

	var errs []error
	if cerr := r.cache.Clear(local); cerr != nil {
		r.logger.Error(ctx, "failed to clear session profile", "error", cerr)
		errs = append(errs, fmt.Errorf("clear session: %w", cerr))
	}
	if cerr := r.creds.Clear(local); cerr != nil {
		r.logger.Error(ctx, "failed to clear credentials", "error", cerr)
		errs = append(errs, fmt.Errorf("clear credentials: %w", cerr))
	}

	r.bump()
	r.publish(local)
	r.nav.Replace(r.opts.LoginPath)

	if apiErr != nil {
		r.logger.Warn(ctx, "server logout failed, signed out locally", "error", apiErr)
		r.notify.Error("Logout failed on the server; signed out locally")
		errs = append(errs, fmt.Errorf("%w: %w", ErrLogoutFailed, apiErr))
	} else {
		r.notify.Success("Signed out")
		r.logger.Info(ctx, "logged out")
	}
	return errors.Join(errs...)
}

// bump invalidates every verification started before it.
func (r *Reconciler) bump() {
	r.epoch++
	r.inflight = nil
	r.pending.Store(false)
}

func (r *Reconciler) onCredentialEvent(ctx context.Context, ev models.CredentialEvent) {
	r.logger.Debug(ctx, "credential event", "kind", ev.Kind.String(), "origin", ev.Origin)

	if err := r.cache.Reload(ctx); err != nil {
		r.logger.Warn(ctx, "session cache reload failed", "error", err)
	}
	// A pair written by another process makes any check in flight refer to
	// the old session.
	if ev.Kind == models.CredentialsChangedExternally {
		r.bump()
	}
	r.trigger(ctx, "credentials "+ev.Kind.String(), nil)
}
