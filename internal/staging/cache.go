// ABOUTME: Badger-backed local staging cache.
// ABOUTME: Holds rotated refresh tokens and raw payload snapshots; never canonical data.
package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v3"

	"github.com/harperreed/pulse/internal/models"
)

// ErrNotFound is returned when a key has never been staged.
var ErrNotFound = errors.New("not staged")

const (
	tokenPrefix = "token:"
	rawPrefix   = "raw:"
)

// Cache is a small local KV store for state that must survive a run but is
// not part of the canonical record: vendor refresh tokens (which rotate on
// use and are gone if not persisted immediately) and raw payload snapshots
// kept for debugging. Losing the cache loses nothing canonical.
type Cache struct {
	db *badger.DB
}

// Open opens or creates the cache at the given directory.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open staging cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// DefaultDir returns the cache directory under the XDG data path.
func DefaultDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "pulse", "staging")
}

// Close closes the underlying store.
func (c *Cache) Close() error {
	return c.db.Close()
}

// SetRefreshToken persists the current refresh token for a vendor.
func (c *Cache) SetRefreshToken(vendor, token string) error {
	return c.set(tokenPrefix+vendor, []byte(token))
}

// RefreshToken returns the staged refresh token for a vendor, or
// ErrNotFound when none has been staged yet.
func (c *Cache) RefreshToken(vendor string) (string, error) {
	val, err := c.get(tokenPrefix + vendor)
	if err != nil {
		return "", err
	}
	return string(val), nil
}

// StashPayload snapshots a raw vendor payload for a (group, date) pair.
func (c *Cache) StashPayload(group string, date models.DateKey, payload []byte) error {
	return c.set(rawKey(group, date), payload)
}

// Payload returns the last stashed payload for a (group, date) pair.
func (c *Cache) Payload(group string, date models.DateKey) ([]byte, error) {
	return c.get(rawKey(group, date))
}

func rawKey(group string, date models.DateKey) string {
	return rawPrefix + group + ":" + date.String()
}

func (c *Cache) set(key string, value []byte) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("stage %s: %w", key, err)
	}
	return nil
}

func (c *Cache) get(key string) ([]byte, error) {
	var out []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return out, nil
}
