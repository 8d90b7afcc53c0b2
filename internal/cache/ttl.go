// Package cache provides the generic TTL store backing the article and
// summary caches. Entries expire lazily: staleness is checked on read and
// the expired entry removed as a side effect. There is no background sweep,
// so Size can report entries that are already past their TTL but have not
// been touched since.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// DeriveKey maps a raw query to its cache key: trimmed, case-folded, then
// content-hashed to a fixed-width hex string, so "Quantum Computing" and
// "quantum computing  " share one entry. The article and summary caches
// share this derivation but store entries separately.
func DeriveKey(query string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// TTL is a thread-safe in-memory key-value store with lazy TTL expiration.
// The zero value is not usable; create instances with New.
type TTL[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry[V]
	now     func() time.Time
}

// New creates a TTL cache whose entries expire ttl after they were stored.
func New[V any](ttl time.Duration) *TTL[V] {
	return &TTL[V]{
		ttl:     ttl,
		entries: make(map[string]entry[V]),
		now:     time.Now,
	}
}

// Get returns the value stored under key. An entry is live strictly less
// than the TTL after it was stored; at exactly the TTL it is expired and
// removed before reporting a miss.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set inserts or replaces the entry under key, restarting its TTL.
// Entries are replaced wholesale, never mutated in place.
func (c *TTL[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, storedAt: c.now()}
}

// Clear removes all entries.
func (c *TTL[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}

// Size returns the raw entry count. Entries past their TTL that have not
// been read since expiring are still counted; they are only swept lazily
// on access.
func (c *TTL[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// TTLSeconds returns the configured TTL in whole seconds.
func (c *TTL[V]) TTLSeconds() int {
	return int(c.ttl / time.Second)
}
