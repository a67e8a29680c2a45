package auth

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophadmin/internal/client/client"
	"github.com/dmitrijs2005/gophadmin/internal/client/credentials"
	"github.com/dmitrijs2005/gophadmin/internal/client/models"
	"github.com/dmitrijs2005/gophadmin/internal/client/session"
	"github.com/dmitrijs2005/gophadmin/internal/logging"
	"github.com/stretchr/testify/require"
)

// fakeServer is the server side shared by every console process in a test.
type fakeServer struct {
	mu     sync.Mutex
	user   *models.UserProfile
	issued models.CredentialPair
}

// storeAPI behaves like a transport client: Login writes the issued pair
// into the process's store, GetProfile succeeds only while that store holds
// the pair the server issued last.
type storeAPI struct {
	srv   *fakeServer
	store *credentials.Store
}

func (a *storeAPI) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	pair := models.CredentialPair{AccessToken: "A-" + req.Identifier, RefreshToken: "R-" + req.Identifier}
	a.srv.mu.Lock()
	a.srv.issued = pair
	user := a.srv.user.Clone()
	a.srv.mu.Unlock()

	if err := a.store.Set(ctx, pair); err != nil {
		return nil, err
	}
	return &models.LoginResponse{User: user}, nil
}

func (a *storeAPI) GetProfile(ctx context.Context) (*models.UserProfile, error) {
	pair, ok, err := a.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	a.srv.mu.Lock()
	defer a.srv.mu.Unlock()
	if !ok || pair != a.srv.issued {
		return nil, client.ErrUnauthorized
	}
	return a.srv.user.Clone(), nil
}

func (a *storeAPI) Logout(ctx context.Context, refreshToken string) error {
	a.srv.mu.Lock()
	defer a.srv.mu.Unlock()
	a.srv.issued = models.CredentialPair{}
	return nil
}

type process struct {
	db    *sql.DB
	store *credentials.Store
	cache *session.Cache
	r     *Reconciler
}

// startProcess wires a console "process" over the database at path, the way
// cmd/console does, and runs it until the test ends.
func startProcess(t *testing.T, path string, srv *fakeServer) *process {
	t.Helper()
	ctx := context.Background()
	logger := logging.NewNop()

	db, err := client.InitDatabase(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := credentials.NewStore(db, logger)
	cache, err := session.Open(ctx, db)
	require.NoError(t, err)

	watcher, err := credentials.NewWatcher(store, path, 10*time.Millisecond, logger)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.VerifyBackoff = time.Millisecond
	r, err := New(Deps{Credentials: store, Session: cache, API: &storeAPI{srv: srv, store: store}, Logger: logger}, opts)
	require.NoError(t, err)

	runCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _ = watcher.Run(runCtx) }()
	go func() { defer wg.Done(); _ = r.Run(runCtx) }()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})

	return &process{db: db, store: store, cache: cache, r: r}
}

func TestIntegration_LoginSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.db")
	srv := &fakeServer{user: adminUser()}
	ctx := context.Background()

	first := startProcess(t, path, srv)
	require.NoError(t, first.r.Login(ctx, models.LoginRequest{Identifier: "a@x.com"}))
	require.Equal(t, models.StateLoggedIn, first.r.View(ctx).State)

	// A second process over the same file starts logged in from the
	// persisted profile, before any verification completes.
	second := startProcess(t, path, srv)
	v := second.r.View(ctx)
	require.True(t, v.IsAuthenticated)
	require.True(t, srv.user.Equal(v.User))
}

func TestIntegration_LogoutPropagatesAcrossProcesses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.db")
	srv := &fakeServer{user: adminUser()}
	ctx := context.Background()

	a := startProcess(t, path, srv)
	b := startProcess(t, path, srv)

	require.NoError(t, a.r.Login(ctx, models.LoginRequest{Identifier: "a@x.com"}))

	require.Eventually(t, func() bool {
		return b.r.View(ctx).State == models.StateLoggedIn
	}, waitFor, 10*time.Millisecond)

	require.NoError(t, b.r.Logout(ctx))

	require.Eventually(t, func() bool {
		v := a.r.View(ctx)
		return !v.IsAuthenticated && v.User == nil
	}, waitFor, 10*time.Millisecond)
}

func TestIntegration_RejectedSessionIsCleared(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.db")
	ctx := context.Background()

	db, err := client.InitDatabase(ctx, path)
	require.NoError(t, err)
	seed := credentials.NewStore(db, logging.NewNop())
	require.NoError(t, seed.Set(ctx, models.CredentialPair{AccessToken: "stale", RefreshToken: "stale"}))
	require.NoError(t, db.Close())

	p := startProcess(t, path, &fakeServer{user: adminUser()})

	require.Eventually(t, func() bool {
		_, ok, err := p.store.Get(ctx)
		return err == nil && !ok
	}, waitFor, 10*time.Millisecond)
	require.Equal(t, models.StateLoggedOut, p.r.View(ctx).State)
}

// A 403 on the profile call means the account lacks access, not that the
// session is gone, so the stored pair must survive it.
func TestIntegration_ForbiddenProfileKeepsCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":"account suspended by policy"}`)
	}))
	t.Cleanup(srv.Close)

	store := newFakeStore(pairA)
	opts := DefaultOptions()
	opts.VerifyBackoff = time.Millisecond

	r, err := New(Deps{
		Credentials: store,
		Session:     &fakeCache{},
		API:         client.NewHTTPClient(srv.URL, store, time.Second),
		Logger:      logging.NewNop(),
	}, opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	v, err := r.Verify(ctx)
	require.ErrorIs(t, err, ErrVerificationTransient)
	require.NotErrorIs(t, err, ErrVerificationUnauthorized)
	require.True(t, v.IsAuthenticated)
	require.Equal(t, models.StateUnknown, v.State)

	pair, clears := store.snapshot()
	require.Zero(t, clears)
	require.Equal(t, pairA, pair)
}
