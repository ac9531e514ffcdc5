// Package cache is a TTL key-value cache backed by BoltDB with a
// sync.Map front for reads. Stream URLs (short TTL) and lyric blobs
// (long TTL) share one bucket; expired entries are dropped lazily on
// Get and in bulk by Sweep.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"

	"player-api-go/logcolors"
	"player-api-go/utils"
)

const bucketName = "cache"

// Entry is a cached value with its expiration time. Value is gzip
// compressed when compression is enabled.
type Entry struct {
	Value      string `json:"value"`
	Expiration int64  `json:"expiration"` // unix nanoseconds, 0 = never
}

func (e Entry) expired(now time.Time) bool {
	return e.Expiration != 0 && now.UnixNano() > e.Expiration
}

// PersistentCache wraps BoltDB with an in-memory cache for fast access.
type PersistentCache struct {
	db                 *bolt.DB
	memCache           sync.Map
	dbPath             string
	compressionEnabled bool
}

// NewPersistentCache opens (or creates) the cache database and preloads
// all entries into memory.
func NewPersistentCache(dbPath string, compressionEnabled bool) (*PersistentCache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %v", err)
	}

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %v", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache bucket: %v", err)
	}

	pc := &PersistentCache{
		db:                 db,
		dbPath:             dbPath,
		compressionEnabled: compressionEnabled,
	}

	if err := pc.loadToMemory(); err != nil {
		log.Warnf("%s Failed to preload cache to memory: %v", logcolors.LogCache, err)
	}

	log.Infof("%s Persistent cache initialized at %s (compression: %v)", logcolors.LogCacheInit, dbPath, compressionEnabled)
	return pc, nil
}

func (pc *PersistentCache) loadToMemory() error {
	count := 0
	now := time.Now()
	err := pc.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				log.Warnf("%s Failed to unmarshal cache entry for key %s: %v", logcolors.LogCache, string(k), err)
				return nil
			}
			if entry.expired(now) {
				return nil
			}
			pc.memCache.Store(string(k), entry)
			count++
			return nil
		})
	})
	if err != nil {
		return err
	}

	log.Infof("%s Loaded %d live entries from disk to memory", logcolors.LogCache, count)
	return nil
}

// Get retrieves a value. Expired entries are deleted and reported as
// missing. The value is decompressed when compression is enabled.
func (pc *PersistentCache) Get(key string) (string, bool) {
	raw, ok := pc.memCache.Load(key)
	if !ok {
		return "", false
	}

	entry := raw.(Entry)
	if entry.expired(time.Now()) {
		pc.Delete(key)
		return "", false
	}

	if pc.compressionEnabled {
		decompressed, err := utils.DecompressString(entry.Value)
		if err != nil {
			log.Errorf("%s Error decompressing cache value for key %s: %v", logcolors.LogCache, key, err)
			return "", false
		}
		return decompressed, true
	}

	return entry.Value, true
}

// Set stores a value with the given time-to-live. A zero ttl means the
// entry never expires.
func (pc *PersistentCache) Set(key, value string, ttl time.Duration) error {
	finalValue := value
	if pc.compressionEnabled {
		compressed, err := utils.CompressString(value)
		if err != nil {
			log.Errorf("%s Error compressing cache value for key %s: %v", logcolors.LogCache, key, err)
			return err
		}
		finalValue = compressed
	}

	entry := Entry{Value: finalValue}
	if ttl > 0 {
		entry.Expiration = time.Now().Add(ttl).UnixNano()
	}

	pc.memCache.Store(key, entry)

	return pc.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), data)
	})
}

// Delete removes a key from memory and disk.
func (pc *PersistentCache) Delete(key string) error {
	pc.memCache.Delete(key)

	return pc.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.Delete([]byte(key))
	})
}

// Clear removes all entries.
func (pc *PersistentCache) Clear() error {
	pc.memCache.Range(func(key, value interface{}) bool {
		pc.memCache.Delete(key)
		return true
	})

	return pc.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
}

// Sweep deletes all expired entries and returns how many were removed.
func (pc *PersistentCache) Sweep() int {
	now := time.Now()
	removed := 0
	pc.memCache.Range(func(key, value interface{}) bool {
		if value.(Entry).expired(now) {
			if err := pc.Delete(key.(string)); err == nil {
				removed++
			}
		}
		return true
	})
	if removed > 0 {
		log.Infof("%s Removed %d expired entries", logcolors.LogCacheSweep, removed)
	}
	return removed
}

// Range iterates over all live cache entries.
func (pc *PersistentCache) Range(fn func(key string, entry Entry) bool) {
	now := time.Now()
	pc.memCache.Range(func(k, v interface{}) bool {
		entry := v.(Entry)
		if entry.expired(now) {
			return true
		}
		return fn(k.(string), entry)
	})
}

// Stats returns the number of keys and their approximate size.
func (pc *PersistentCache) Stats() (numKeys int, sizeInKB int) {
	pc.Range(func(k string, entry Entry) bool {
		numKeys++
		sizeInKB += len(k) + len(entry.Value)
		return true
	})
	sizeInKB = sizeInKB / 1024
	return
}

// Close closes the database connection.
func (pc *PersistentCache) Close() error {
	if pc.db != nil {
		return pc.db.Close()
	}
	return nil
}
