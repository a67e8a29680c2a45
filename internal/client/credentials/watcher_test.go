package credentials

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophadmin/internal/client/models"
	"github.com/dmitrijs2005/gophadmin/internal/logging"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReportsWritesFromAnotherProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.db")
	writer := NewStore(openDB(t, path), logging.NewNop())
	reader := NewStore(openDB(t, path), logging.NewNop())

	w, err := NewWatcher(reader, path, 20*time.Millisecond, logging.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	ch, unsubscribe := reader.Subscribe()
	defer unsubscribe()

	require.NoError(t, writer.Set(context.Background(), models.CredentialPair{AccessToken: "A", RefreshToken: "R"}))

	ev := nextEvent(t, ch)
	require.Equal(t, models.CredentialsChangedExternally, ev.Kind)
	require.Equal(t, writer.Origin(), ev.Origin)

	require.NoError(t, writer.Clear(context.Background()))
	require.Equal(t, models.CredentialsChangedExternally, nextEvent(t, ch).Kind)
}

func TestWatcher_StopsOnContextCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.db")
	s := NewStore(openDB(t, path), logging.NewNop())

	w, err := NewWatcher(s, path, 0, logging.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, w.Run(ctx))
}
