package credentials

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophadmin/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// Watcher turns file-system activity on the shared database into
// CredentialsChangedExternally events of a Store.
type Watcher struct {
	store    *Store
	dir      string
	base     string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	logger   logging.Logger
}

// NewWatcher watches the directory holding dbPath. SQLite writes touch the
// database file and its -wal/-shm/-journal siblings; all of them count.
func NewWatcher(store *Store, dbPath string, debounce time.Duration, logger logging.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(abs)
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}

	return &Watcher{
		store:    store,
		dir:      dir,
		base:     filepath.Base(abs),
		debounce: debounce,
		fsw:      fsw,
		logger:   logger.With("module", "credentials_watcher"),
	}, nil
}

// Run processes file events until ctx is done. Bursts of events are
// collapsed into one revision check per debounce tick.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	pending := false

	w.logger.Debug(ctx, "watching database directory", "dir", w.dir, "file", w.base)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				pending = true
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn(ctx, "watcher error", "error", err)

		case <-ticker.C:
			if !pending {
				continue
			}
			pending = false
			if _, err := w.store.CheckExternal(ctx); err != nil {
				w.logger.Warn(ctx, "credentials revision check failed", "error", err)
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) {
		return false
	}
	name := filepath.Base(event.Name)
	return name == w.base || strings.HasPrefix(name, w.base+"-")
}
