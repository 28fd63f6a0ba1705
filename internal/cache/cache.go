package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go-blog-admin/internal/config"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Cache provides a SQLite-based caching mechanism with explicit invalidation.
//
// Every invalidation advances a generation counter. Readers capture it with
// Generation before loading from the source of truth and store the result
// with SetIfGeneration, so a value loaded before an invalidation is never
// written back after it.
type Cache struct {
	db  *sqlx.DB
	mu  sync.Mutex
	gen uint64
}

// New creates a new Cache instance.
// It opens the SQLite database at the configured file path and ensures the
// cache table is created.
func New(cfg config.CacheConfig) (*Cache, error) {
	db, err := sqlx.Connect("sqlite", cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite cache: %w", err)
	}
	// One connection: keeps ":memory:" caches alive and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	// For a cache, WAL mode is generally better for concurrency.
	if _, err = db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode on sqlite cache: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS cache (
		key TEXT PRIMARY KEY,
		value BLOB,
		expires_at INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_expires_at ON cache (expires_at);
	`
	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Get retrieves an item from the cache. It returns nil if the item is not found or is expired.
func (c *Cache) Get(key string) ([]byte, error) {
	var item struct {
		Value     []byte `db:"value"`
		ExpiresAt int64  `db:"expires_at"`
	}
	err := c.db.Get(&item, `SELECT value, expires_at FROM cache WHERE key = ?`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found is not an error for a cache miss.
		}
		return nil, fmt.Errorf("failed to get item from cache: %w", err)
	}

	if time.Now().UnixNano() > item.ExpiresAt {
		// Expired: delete it (best effort) and report a miss.
		_, _ = c.db.Exec(`DELETE FROM cache WHERE key = ?`, key)
		return nil, nil
	}

	return item.Value, nil
}

// Set adds an item to the cache with a specific TTL (time-to-live).
func (c *Cache) Set(key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.set(key, value, ttl)
}

// Generation returns the current invalidation generation.
func (c *Cache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// SetIfGeneration stores the item only if no invalidation happened since gen
// was read. It reports whether the item was stored.
func (c *Cache) SetIfGeneration(key string, value []byte, ttl time.Duration, gen uint64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false, nil
	}
	if err := c.set(key, value, ttl); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) set(key string, value []byte, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl).UnixNano()
	_, err := c.db.Exec(`INSERT OR REPLACE INTO cache (key, value, expires_at) VALUES (?, ?, ?)`, key, value, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to set item in cache: %w", err)
	}
	return nil
}

// Delete removes the given keys from the cache.
func (c *Cache) Delete(keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	for _, key := range keys {
		if _, err := c.db.Exec(`DELETE FROM cache WHERE key = ?`, key); err != nil {
			return fmt.Errorf("failed to delete item from cache: %w", err)
		}
	}
	return nil
}

// DeletePrefix removes every key that starts with prefix.
func (c *Cache) DeletePrefix(prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)
	if _, err := c.db.Exec(`DELETE FROM cache WHERE key LIKE ? ESCAPE '\'`, escaped+"%"); err != nil {
		return fmt.Errorf("failed to delete items from cache: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}
