// Package store provides the in-memory artwork cache using a Bloom filter and an expiring LRU.
package store

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"coverart/pkg/artwork"
)

const (
	// DefaultMaxEntries is the default number of artwork entries kept in memory.
	DefaultMaxEntries = 4096
	// DefaultBloomFalsePositiveRate is the default false positive rate of the membership filter.
	DefaultBloomFalsePositiveRate = 0.001
)

// ArtworkCache is a thread-safe artwork.Cache. Entries are immutable once stored.
// A TTL of zero keeps entries until they are evicted by capacity.
type ArtworkCache struct {
	bloom                  *bloom.BloomFilter
	lru                    *expirable.LRU[string, artwork.Entry]
	mutex                  sync.RWMutex
	maxEntries             int
	bloomFalsePositiveRate float64
	evictions              atomic.Int64
}

// NewArtworkCache creates a cache holding up to maxEntries entries for at most ttl each.
func NewArtworkCache(maxEntries int, ttl time.Duration, bloomFalsePositiveRate float64) *ArtworkCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if bloomFalsePositiveRate <= 0 || bloomFalsePositiveRate >= 1 {
		bloomFalsePositiveRate = DefaultBloomFalsePositiveRate
	}

	c := &ArtworkCache{
		maxEntries:             maxEntries,
		bloomFalsePositiveRate: bloomFalsePositiveRate,
	}
	c.bloom = c.newBloom()
	// The callback runs under the LRU's own lock, including from its expiry goroutine.
	c.lru = expirable.NewLRU[string, artwork.Entry](maxEntries, func(string, artwork.Entry) {
		c.evictions.Add(1)
	}, ttl)

	return c
}

// Get returns the entry stored for key.
func (c *ArtworkCache) Get(key string) (artwork.Entry, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if !c.bloom.TestString(key) {
		return artwork.Entry{}, false
	}

	return c.lru.Get(key)
}

// Has checks whether an entry exists for key.
func (c *ArtworkCache) Has(key string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if !c.bloom.TestString(key) {
		return false
	}

	return c.lru.Contains(key)
}

// Put stores entry unless an entry for the same key already exists.
func (c *ArtworkCache) Put(entry artwork.Entry) {
	if entry.Key == "" {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.lru.Contains(entry.Key) {
		return
	}

	c.lru.Add(entry.Key, entry)
	c.bloom.AddString(entry.Key)

	// Evicted keys stay set in the filter; rebuild once they outnumber the capacity.
	if c.evictions.Load() >= int64(c.maxEntries) {
		c.rebuildBloom()
	}
}

// Len returns the number of entries currently stored.
func (c *ArtworkCache) Len() int {
	return c.lru.Len()
}

// Entries returns the stored entries, oldest first.
func (c *ArtworkCache) Entries() []artwork.Entry {
	return c.lru.Values()
}

// Purge removes all entries from the cache.
func (c *ArtworkCache) Purge() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.lru.Purge()
	c.bloom = c.newBloom()
	c.evictions.Store(0)
}

func (c *ArtworkCache) newBloom() *bloom.BloomFilter {
	return bloom.NewWithEstimates(uint(c.maxEntries), c.bloomFalsePositiveRate)
}

func (c *ArtworkCache) rebuildBloom() {
	c.bloom = c.newBloom()
	for _, key := range c.lru.Keys() {
		c.bloom.AddString(key)
	}
	c.evictions.Store(0)
}
