package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/gophadmin/internal/client/models"
)

/*************
 * Credential store
 *************/

type fakeStore struct {
	mu      sync.Mutex
	pair    models.CredentialPair
	getErr  error
	clears  int
	subs    []chan models.CredentialEvent
	clearFn func() error
}

func newFakeStore(pair models.CredentialPair) *fakeStore {
	return &fakeStore{pair: pair}
}

func (s *fakeStore) Get(ctx context.Context) (models.CredentialPair, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return models.CredentialPair{}, false, s.getErr
	}
	return s.pair, s.pair.Complete(), nil
}

func (s *fakeStore) Set(ctx context.Context, pair models.CredentialPair) error {
	s.mu.Lock()
	s.pair = pair
	s.mu.Unlock()
	s.publish(models.CredentialEvent{Kind: models.CredentialsSet, Origin: "local"})
	return nil
}

func (s *fakeStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.clears++
	fn := s.clearFn
	s.pair = models.CredentialPair{}
	s.mu.Unlock()
	s.publish(models.CredentialEvent{Kind: models.CredentialsCleared, Origin: "local"})
	if fn != nil {
		return fn()
	}
	return nil
}

// external simulates another console process rewriting the pair.
func (s *fakeStore) external(pair models.CredentialPair) {
	s.mu.Lock()
	s.pair = pair
	s.mu.Unlock()
	s.publish(models.CredentialEvent{Kind: models.CredentialsChangedExternally, Origin: "other"})
}

func (s *fakeStore) Subscribe() (<-chan models.CredentialEvent, func()) {
	ch := make(chan models.CredentialEvent, 16)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch, func() {}
}

func (s *fakeStore) publish(ev models.CredentialEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *fakeStore) snapshot() (models.CredentialPair, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair, s.clears
}

/*************
 * Session cache
 *************/

type fakeCache struct {
	mu       sync.Mutex
	user     *models.UserProfile
	storeErr error
	stores   int
	reloads  int
}

func (c *fakeCache) User() *models.UserProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user.Clone()
}

func (c *fakeCache) Store(ctx context.Context, u *models.UserProfile) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.storeErr != nil {
		return c.storeErr
	}
	c.stores++
	c.user = u.Clone()
	return nil
}

func (c *fakeCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = nil
	return nil
}

func (c *fakeCache) Reload(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reloads++
	return nil
}

func (c *fakeCache) counts() (stores, reloads int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stores, c.reloads
}

/*************
 * API
 *************/

type fakeAPI struct {
	store *fakeStore

	mu sync.Mutex

	// Login
	loginUser    *models.UserProfile
	loginErr     error
	loginNoPair  bool
	loginNilResp bool
	loginPair    models.CredentialPair
	loginReqs    []models.LoginRequest

	// GetProfile; profileFn receives the 1-based call number.
	profileFn    func(ctx context.Context, n int) (*models.UserProfile, error)
	profileCalls int

	// Logout
	logoutErr    error
	logoutTokens []string
}

func (a *fakeAPI) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	a.mu.Lock()
	a.loginReqs = append(a.loginReqs, req)
	err, user, noPair, nilResp, pair := a.loginErr, a.loginUser, a.loginNoPair, a.loginNilResp, a.loginPair
	a.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if !noPair {
		if !pair.Complete() {
			pair = models.CredentialPair{AccessToken: "A-login", RefreshToken: "R-login"}
		}
		_ = a.store.Set(ctx, pair)
	}
	if nilResp {
		return &models.LoginResponse{}, nil
	}
	return &models.LoginResponse{User: user}, nil
}

func (a *fakeAPI) GetProfile(ctx context.Context) (*models.UserProfile, error) {
	a.mu.Lock()
	a.profileCalls++
	n, fn := a.profileCalls, a.profileFn
	a.mu.Unlock()

	if fn == nil {
		return nil, errors.New("no profile configured")
	}
	return fn(ctx, n)
}

func (a *fakeAPI) Logout(ctx context.Context, refreshToken string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logoutTokens = append(a.logoutTokens, refreshToken)
	return a.logoutErr
}

func (a *fakeAPI) calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.profileCalls
}

func returns(u *models.UserProfile, err error) func(context.Context, int) (*models.UserProfile, error) {
	return func(context.Context, int) (*models.UserProfile, error) { return u.Clone(), err }
}

// gated blocks the first call until release is closed, then answers with
// first; later calls answer with rest immediately.
func gated(release <-chan struct{}, first, rest func(context.Context, int) (*models.UserProfile, error)) func(context.Context, int) (*models.UserProfile, error) {
	return func(ctx context.Context, n int) (*models.UserProfile, error) {
		if n == 1 {
			select {
			case <-release:
				return first(ctx, n)
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return rest(ctx, n)
	}
}

/*************
 * Notifier / Navigator
 *************/

type recorder struct {
	mu        sync.Mutex
	successes []string
	errors    []string
	replaced  []string
	pushed    []string
}

func (r *recorder) Success(msg string) { r.mu.Lock(); r.successes = append(r.successes, msg); r.mu.Unlock() }
func (r *recorder) Error(msg string)   { r.mu.Lock(); r.errors = append(r.errors, msg); r.mu.Unlock() }
func (r *recorder) Replace(p string)   { r.mu.Lock(); r.replaced = append(r.replaced, p); r.mu.Unlock() }
func (r *recorder) Push(p string)      { r.mu.Lock(); r.pushed = append(r.pushed, p); r.mu.Unlock() }

func (r *recorder) snapshot() (successes, errs, replaced []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.successes...), append([]string(nil), r.errors...), append([]string(nil), r.replaced...)
}
