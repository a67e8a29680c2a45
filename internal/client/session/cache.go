// Package session holds the console's session cache: the last verified user
// profile, kept in memory and persisted in the shared local database so that
// it survives restarts and is visible to other console processes.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophadmin/internal/client/models"
	"github.com/dmitrijs2005/gophadmin/internal/client/repositories/metadata"
)

const keyProfile = "session_profile"

// Cache is safe for concurrent use. Writes are synchronous: Store and Clear
// return only after the database commit, so a caller that navigates right
// after them never reads a stale profile.
type Cache struct {
	repo metadata.Repository

	mu   sync.RWMutex
	user *models.UserProfile
}

// Open creates a cache over db and loads the persisted profile, if any.
func Open(ctx context.Context, db *sql.DB) (*Cache, error) {
	c := &Cache{repo: metadata.NewSQLiteRepository(db)}
	if err := c.Reload(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// User returns a copy of the cached profile, or nil.
func (c *Cache) User() *models.UserProfile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user.Clone()
}

// Store persists u and replaces the in-memory copy (last write wins).
func (c *Cache) Store(ctx context.Context, u *models.UserProfile) error {
	if u == nil {
		return c.Clear(ctx)
	}

	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode session profile: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.repo.Set(ctx, keyProfile, data); err != nil {
		return fmt.Errorf("store session profile: %w", err)
	}
	c.user = u.Clone()
	return nil
}

// Clear drops the profile from memory and from disk.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.repo.Delete(ctx, keyProfile); err != nil {
		return fmt.Errorf("clear session profile: %w", err)
	}
	c.user = nil
	return nil
}

// Reload replaces the in-memory copy with what is on disk. It is called when
// another process may have changed the session.
func (c *Cache) Reload(ctx context.Context) error {
	data, err := c.repo.Get(ctx, keyProfile)
	if err != nil {
		return fmt.Errorf("load session profile: %w", err)
	}

	var u *models.UserProfile
	if data != nil {
		u = &models.UserProfile{}
		if err := json.Unmarshal(data, u); err != nil {
			return fmt.Errorf("decode session profile: %w", err)
		}
	}

	c.mu.Lock()
	c.user = u
	c.mu.Unlock()
	return nil
}
