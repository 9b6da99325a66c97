// Package storage provides the on-disk result cache.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"serpd/search"
)

var resultsBucket = []byte("results")

// ResultCache stores serialized search responses in BoltDB, keyed by
// (engine, query, page), each entry valid for a fixed TTL. It is best effort:
// read and write failures are logged and reported as misses, never as search
// failures.
type ResultCache struct {
	db     *bolt.DB
	ttl    time.Duration
	logger *zap.Logger
}

type cacheEntry struct {
	StoredAt int64           `json:"stored_at"`
	Response search.Response `json:"response"`
}

// NewResultCache opens (or creates) the cache database at path.
func NewResultCache(path string, ttl time.Duration, logger *zap.Logger) (*ResultCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(resultsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache bucket: %w", err)
	}

	return &ResultCache{db: db, ttl: ttl, logger: logger}, nil
}

// cacheKey builds the bucket key. The NUL separator cannot occur in an engine
// name or a page number, so keys never collide across fields.
func cacheKey(engine, query string, page int) []byte {
	return fmt.Appendf(nil, "%s\x00%s\x00%d", engine, query, page)
}

// Get returns the cached response if present and still fresh.
func (c *ResultCache) Get(engine, query string, page int) (*search.Response, bool) {
	var entry cacheEntry
	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(resultsBucket).Get(cacheKey(engine, query, page))
		if v == nil {
			return errNotCached
		}
		return json.Unmarshal(v, &entry)
	})
	if err != nil {
		if err != errNotCached {
			c.logger.Warn("cache read failed", zap.Error(err))
		}
		return nil, false
	}

	if time.Since(time.Unix(entry.StoredAt, 0)) > c.ttl {
		return nil, false
	}
	return &entry.Response, true
}

// Put stores a response. Failures are logged, not returned.
func (c *ResultCache) Put(engine, query string, page int, resp *search.Response) {
	data, err := json.Marshal(cacheEntry{
		StoredAt: time.Now().Unix(),
		Response: *resp,
	})
	if err != nil {
		c.logger.Warn("cache encode failed", zap.Error(err))
		return
	}

	err = c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(resultsBucket).Put(cacheKey(engine, query, page), data)
	})
	if err != nil {
		c.logger.Warn("cache write failed", zap.Error(err))
	}
}

// Close closes the underlying database.
func (c *ResultCache) Close() error {
	return c.db.Close()
}

var errNotCached = fmt.Errorf("not cached")
