// Package flood provides per-client request limiting for endpoints that trigger upstream lookups.
package flood

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// cleanupInterval is how often we clean up expired entries
	cleanupInterval = 10 * time.Minute
	// idleTimeout is how long before we remove idle client entries
	idleTimeout = 10 * time.Minute
)

// Floodgate limits each client to a number of requests per minute with a token bucket per client.
type Floodgate struct {
	limitPerMinute int
	entries        map[string]*clientEntry
	mutex          sync.Mutex
	stopCleanup    chan struct{}
	stopOnce       sync.Once
}

// clientEntry tracks the limiter of a single client
type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time // When this client was last seen (for cleanup)
}

// New creates a new Floodgate allowing limitPerMinute requests per client.
// The full allowance may be used as a burst.
func New(limitPerMinute int) *Floodgate {
	fg := &Floodgate{
		limitPerMinute: limitPerMinute,
		entries:        make(map[string]*clientEntry),
		stopCleanup:    make(chan struct{}),
	}

	// Start background cleanup goroutine
	go fg.cleanup()

	return fg
}

// Stop stops the background cleanup goroutine
func (fg *Floodgate) Stop() {
	fg.stopOnce.Do(func() {
		close(fg.stopCleanup)
	})
}

// Allow reports whether a request from clientID should be served.
// A non-positive limit blocks every request.
func (fg *Floodgate) Allow(clientID string) bool {
	if fg.limitPerMinute <= 0 {
		return false
	}

	return fg.limiterFor(clientID).Allow()
}

func (fg *Floodgate) limiterFor(clientID string) *rate.Limiter {
	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	entry, exists := fg.entries[clientID]
	if !exists {
		entry = &clientEntry{
			limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(fg.limitPerMinute)), fg.limitPerMinute),
		}
		fg.entries[clientID] = entry
	}
	entry.lastSeen = time.Now()

	return entry.limiter
}

// cleanup removes idle client entries to prevent memory leaks
func (fg *Floodgate) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fg.performCleanup(time.Now())
		case <-fg.stopCleanup:
			return
		}
	}
}

// performCleanup removes entries that have been idle for too long
func (fg *Floodgate) performCleanup(now time.Time) {
	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	cutoff := now.Add(-idleTimeout)
	for key, entry := range fg.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(fg.entries, key)
		}
	}
}

// GetStats returns statistics about the floodgate for monitoring/debugging
func (fg *Floodgate) GetStats() Stats {
	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	return Stats{
		ActiveClients:  len(fg.entries),
		LimitPerMinute: fg.limitPerMinute,
	}
}

// Stats contains floodgate statistics
type Stats struct {
	ActiveClients  int `json:"active_clients"`
	LimitPerMinute int `json:"limit_per_minute"`
}
