// Package cache persists catalog identifier lookups in a bbolt file so repeated imports and retries do not hit the
// rate-limited catalog again.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	BucketReleaseGroups = []byte("release_groups")
	BucketArtists       = []byte("artists")
	BucketWikidata      = []byte("wikidata")
)

var buckets = [][]byte{BucketReleaseGroups, BucketArtists, BucketWikidata}

// LookupCache maps normalized lookup keys to catalog identifiers.
//
// An empty path gives a memory-only cache. Values read from disk are promoted to the memory map.
type LookupCache struct {
	db *bolt.DB
	mu sync.RWMutex

	mem map[string]string
}

// Open opens (or creates) the cache file at path.
func Open(path string) (*LookupCache, error) {
	if path == "" {
		return &LookupCache{mem: make(map[string]string)}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &LookupCache{db: db, mem: make(map[string]string)}, nil
}

// Close releases the underlying file.
func (c *LookupCache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Get returns the cached value for key in bucket.
func (c *LookupCache) Get(bucket []byte, key string) (string, bool) {
	memKey := string(bucket) + ":" + key

	c.mu.RLock()
	if v, ok := c.mem[memKey]; ok {
		c.mu.RUnlock()
		return v, true
	}
	c.mu.RUnlock()

	if c.db == nil {
		return "", false
	}

	var value []byte
	c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			value = make([]byte, len(v))
			copy(value, v)
		}
		return nil
	})
	if value == nil {
		return "", false
	}

	c.mu.Lock()
	c.mem[memKey] = string(value)
	c.mu.Unlock()
	return string(value), true
}

// Set stores value for key in bucket.
func (c *LookupCache) Set(bucket []byte, key, value string) error {
	c.mu.Lock()
	c.mem[string(bucket)+":"+key] = value
	c.mu.Unlock()

	if c.db == nil {
		return nil
	}

	return c.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), []byte(value))
	})
}

// Delete drops key from bucket.
func (c *LookupCache) Delete(bucket []byte, key string) error {
	c.mu.Lock()
	delete(c.mem, string(bucket)+":"+key)
	c.mu.Unlock()

	if c.db == nil {
		return nil
	}

	return c.db.Update(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucket); b != nil {
			return b.Delete([]byte(key))
		}
		return nil
	})
}

// Len returns the number of entries in bucket.
func (c *LookupCache) Len(bucket []byte) int {
	if c.db == nil {
		prefix := string(bucket) + ":"
		c.mu.RLock()
		defer c.mu.RUnlock()
		n := 0
		for k := range c.mem {
			if len(k) > len(prefix) && k[:len(prefix)] == prefix {
				n++
			}
		}
		return n
	}

	var n int
	c.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucket); b != nil {
			n = b.Stats().KeyN
		}
		return nil
	})
	return n
}
