package credentials

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophadmin/internal/client/client"
	"github.com/dmitrijs2005/gophadmin/internal/client/models"
	"github.com/dmitrijs2005/gophadmin/internal/dbx"
	"github.com/dmitrijs2005/gophadmin/internal/logging"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(openDB(t, filepath.Join(t.TempDir(), "console.db")), logging.NewNop())
}

func nextEvent(t *testing.T, ch <-chan models.CredentialEvent) models.CredentialEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("no credential event received")
		return models.CredentialEvent{}
	}
}

func TestStore_EmptyByDefault(t *testing.T) {
	s := newStore(t)

	pair, ok, err := s.Get(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, models.CredentialPair{}, pair)
}

func TestStore_SetGetClear(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	want := models.CredentialPair{AccessToken: "A1", RefreshToken: "R1"}

	require.NoError(t, s.Set(ctx, want))
	got, ok, err := s.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, got)

	require.NoError(t, s.Clear(ctx))
	_, ok, err = s.Get(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStore_SetRejectsHalfPair(t *testing.T) {
	s := newStore(t)
	err := s.Set(context.Background(), models.CredentialPair{AccessToken: "A1"})
	require.ErrorIs(t, err, ErrIncompletePair)
}

func TestStore_HalfWrittenPairReadsAsAbsent(t *testing.T) {
	db := openDB(t, filepath.Join(t.TempDir(), "console.db"))
	s := NewStore(db, logging.NewNop())

	_, err := db.Exec(`INSERT INTO metadata(key, value) VALUES ('access_token', 'A1')`)
	require.NoError(t, err)

	_, ok, err := s.Get(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStore_SubscribeReceivesLocalEvents(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	ch, cancel := s.Subscribe()
	defer cancel()

	require.NoError(t, s.Set(ctx, models.CredentialPair{AccessToken: "A", RefreshToken: "R"}))
	ev := nextEvent(t, ch)
	require.Equal(t, models.CredentialsSet, ev.Kind)
	require.Equal(t, s.Origin(), ev.Origin)

	require.NoError(t, s.Clear(ctx))
	require.Equal(t, models.CredentialsCleared, nextEvent(t, ch).Kind)
}

func TestStore_UnsubscribeClosesChannel(t *testing.T) {
	s := newStore(t)
	ch, cancel := s.Subscribe()
	cancel()
	cancel()

	_, open := <-ch
	require.False(t, open)
	require.NoError(t, s.Clear(context.Background()))
}

func TestStore_CheckExternal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.db")
	a := NewStore(openDB(t, path), logging.NewNop())
	b := NewStore(openDB(t, path), logging.NewNop())
	ctx := context.Background()

	ch, cancel := b.Subscribe()
	defer cancel()

	changed, err := b.CheckExternal(ctx)
	require.NoError(t, err)
	require.False(t, changed, "no revision yet")

	require.NoError(t, a.Set(ctx, models.CredentialPair{AccessToken: "A", RefreshToken: "R"}))

	changed, err = b.CheckExternal(ctx)
	require.NoError(t, err)
	require.True(t, changed)
	ev := nextEvent(t, ch)
	require.Equal(t, models.CredentialsChangedExternally, ev.Kind)
	require.Equal(t, a.Origin(), ev.Origin)

	changed, err = b.CheckExternal(ctx)
	require.NoError(t, err)
	require.False(t, changed, "same revision is reported once")

	changed, err = a.CheckExternal(ctx)
	require.NoError(t, err)
	require.False(t, changed, "own writes are not external")
}

func TestStore_FailedCommitIsNotExternal(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, models.CredentialPair{AccessToken: "A", RefreshToken: "R"}))

	old := withTx
	t.Cleanup(func() { withTx = old })
	withTx = func(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx dbx.DBTX) error) error {
		tx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		require.NoError(t, fn(ctx, tx))
		require.NoError(t, tx.Rollback())
		return errors.New("commit tx: disk I/O error")
	}

	require.Error(t, s.Set(ctx, models.CredentialPair{AccessToken: "A2", RefreshToken: "R2"}))
	require.Error(t, s.Clear(ctx))

	changed, err := s.CheckExternal(ctx)
	require.NoError(t, err)
	require.False(t, changed, "a rolled back write must not look like another process")

	pair, ok, err := s.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "A", pair.AccessToken)
}
