// Package ratelimit provides a per-client sliding-window rate limiter.
// Each client identifier gets an ordered window of request timestamps from
// the trailing minute; admission prunes stale timestamps, rejects when the
// window is full, and appends the current instant otherwise.
package ratelimit

import (
	"sync"
	"time"
)

// SlidingWindow admits at most limit requests per client per trailing window.
type SlidingWindow struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	enabled bool
	clients map[string][]time.Time
	now     func() time.Time
}

// New creates a limiter allowing perMinute requests per client over a
// 60-second sliding window. When enabled is false, Admit always allows
// and keeps no per-client state.
func New(perMinute int, enabled bool) *SlidingWindow {
	return &SlidingWindow{
		limit:   perMinute,
		window:  time.Minute,
		enabled: enabled,
		clients: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Admit reports whether clientID may proceed. On rejection it returns the
// number of whole seconds after which the oldest windowed request will have
// aged out and admission can succeed again.
//
// A client exactly at the limit is rejected: admission requires the pruned
// window count to be strictly below the limit.
func (s *SlidingWindow) Admit(clientID string) (bool, int) {
	if !s.enabled {
		return true, 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-s.window)

	window := s.clients[clientID]
	kept := window[:0]
	for _, ts := range window {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= s.limit {
		// Timestamps are appended in order, so the oldest survivor is first.
		oldest := kept[0]
		retryAfter := int(s.window.Seconds()-now.Sub(oldest).Seconds()) + 1
		s.clients[clientID] = kept
		return false, retryAfter
	}

	s.clients[clientID] = append(kept, now)
	return true, 0
}

// Reset clears the window for a client. Administrative and test hook.
func (s *SlidingWindow) Reset(clientID string) {
	if !s.enabled {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, clientID)
}

// Enabled reports whether admission control is active.
func (s *SlidingWindow) Enabled() bool { return s.enabled }

// Limit returns the configured per-window request limit.
func (s *SlidingWindow) Limit() int { return s.limit }
