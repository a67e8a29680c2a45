package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophadmin/internal/client/models"
	"github.com/dmitrijs2005/gophadmin/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophadmin/internal/dbx"
	"github.com/dmitrijs2005/gophadmin/internal/logging"
	"github.com/google/uuid"
)

const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyRevision     = "credentials_rev"
)

// withTx is replaced in tests to simulate failed commits.
var withTx = dbx.WithTx

// ErrIncompletePair is returned by Set when one of the tokens is empty.
var ErrIncompletePair = errors.New("credential pair must contain both tokens")

// Store persists the credential pair. It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	repo   metadata.Repository
	origin string
	logger logging.Logger

	// writeMu orders local writes against CheckExternal.
	writeMu sync.Mutex

	mu      sync.Mutex
	subs    map[int]chan models.CredentialEvent
	nextSub int
	lastRev string
}

// NewStore binds a store to a migrated console database. Each store gets a
// random origin id identifying this process in revision markers.
func NewStore(db *sql.DB, logger logging.Logger) *Store {
	return &Store{
		db:     db,
		repo:   metadata.NewSQLiteRepository(db),
		origin: uuid.NewString(),
		logger: logger.With("module", "credentials"),
		subs:   make(map[int]chan models.CredentialEvent),
	}
}

// Origin is the id this process stamps on its writes.
func (s *Store) Origin() string { return s.origin }

// Get reads the pair live from the database. ok is false unless both tokens
// are present.
func (s *Store) Get(ctx context.Context) (models.CredentialPair, bool, error) {
	values, err := s.repo.GetMany(ctx, keyAccessToken, keyRefreshToken)
	if err != nil {
		return models.CredentialPair{}, false, fmt.Errorf("read credentials: %w", err)
	}
	pair := models.CredentialPair{
		AccessToken:  string(values[keyAccessToken]),
		RefreshToken: string(values[keyRefreshToken]),
	}
	if !pair.Complete() {
		return models.CredentialPair{}, false, nil
	}
	return pair, true, nil
}

// Set writes both tokens atomically and notifies subscribers.
func (s *Store) Set(ctx context.Context, pair models.CredentialPair) error {
	if !pair.Complete() {
		return ErrIncompletePair
	}

	err := s.write(ctx, func(ctx context.Context, repo metadata.Repository) error {
		if err := repo.Set(ctx, keyAccessToken, []byte(pair.AccessToken)); err != nil {
			return err
		}
		return repo.Set(ctx, keyRefreshToken, []byte(pair.RefreshToken))
	})
	if err != nil {
		return fmt.Errorf("store credentials: %w", err)
	}

	s.logger.Debug(ctx, "credentials stored")
	s.publish(models.CredentialEvent{Kind: models.CredentialsSet, Origin: s.origin})
	return nil
}

// Clear removes both tokens atomically and notifies subscribers. Clearing an
// empty store still bumps the revision.
func (s *Store) Clear(ctx context.Context) error {
	err := s.write(ctx, func(ctx context.Context, repo metadata.Repository) error {
		return repo.Delete(ctx, keyAccessToken, keyRefreshToken)
	})
	if err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}

	s.logger.Debug(ctx, "credentials cleared")
	s.publish(models.CredentialEvent{Kind: models.CredentialsCleared, Origin: s.origin})
	return nil
}

func (s *Store) write(ctx context.Context, fn func(ctx context.Context, repo metadata.Repository) error) error {
	rev := s.origin + "/" + uuid.NewString()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := withTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := fn(ctx, repo); err != nil {
			return err
		}
		return repo.Set(ctx, keyRevision, []byte(rev))
	})
	if err != nil {
		return err
	}

	// only a committed revision is ours
	s.mu.Lock()
	s.lastRev = rev
	s.mu.Unlock()
	return nil
}

// CheckExternal compares the stored revision marker with the last one this
// process has seen and publishes CredentialsChangedExternally when another
// process wrote in between. It reports whether an event was published.
func (s *Store) CheckExternal(ctx context.Context) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	raw, err := s.repo.Get(ctx, keyRevision)
	if err != nil {
		return false, fmt.Errorf("read credentials revision: %w", err)
	}
	rev := string(raw)

	s.mu.Lock()
	if rev == s.lastRev {
		s.mu.Unlock()
		return false, nil
	}
	s.lastRev = rev
	s.mu.Unlock()

	origin, _, _ := strings.Cut(rev, "/")
	s.logger.Info(ctx, "credentials changed by another process", "origin", origin)
	s.publish(models.CredentialEvent{Kind: models.CredentialsChangedExternally, Origin: origin})
	return true, nil
}

// Subscribe registers for change events. Delivery never blocks the writer:
// when a subscriber's buffer is full the event is dropped, which is fine for
// consumers that only use events as a re-check trigger.
func (s *Store) Subscribe() (<-chan models.CredentialEvent, func()) {
	ch := make(chan models.CredentialEvent, 8)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Store) publish(ev models.CredentialEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
