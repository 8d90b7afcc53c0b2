// Package circuitbreaker shields the model backend from sustained failure.
// After enough consecutive failed generations the breaker opens and calls
// fail fast with ErrOpen instead of burning the client's latency budget on
// a backend that is down. Once the cool-off elapses a single probe call is
// let through; its outcome decides whether the circuit closes again.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned by Do while the circuit is open.
var ErrOpen = errors.New("model backend unavailable (circuit open)")

type state int

const (
	closed state = iota
	open
	halfOpen
)

func (s state) String() string {
	switch s {
	case closed:
		return "closed"
	case open:
		return "open"
	case halfOpen:
		return "half_open"
	}
	return "unknown"
}

// Breaker guards calls to a single downstream backend.
type Breaker struct {
	mu        sync.Mutex
	state     state
	failures  int
	threshold int
	coolOff   time.Duration
	openUntil time.Time
	now       func() time.Time
}

// New creates a Breaker that opens after threshold consecutive failures and
// stays open for coolOff before probing. Non-positive arguments fall back
// to 5 failures and 30 seconds.
func New(threshold int, coolOff time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if coolOff <= 0 {
		coolOff = 30 * time.Second
	}
	return &Breaker{
		threshold: threshold,
		coolOff:   coolOff,
		now:       time.Now,
	}
}

// Do runs fn under the breaker. While the circuit is open it returns ErrOpen
// without calling fn. In the half-open state exactly the probing call runs;
// a success closes the circuit, a failure re-opens it for another cool-off.
func (b *Breaker) Do(fn func() error) error {
	if !b.admit() {
		return ErrOpen
	}
	err := fn()
	b.record(err == nil)
	return err
}

// State returns the current state name for logging and health output.
func (b *Breaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.resolve().String()
}

func (b *Breaker) admit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.resolve() != open
}

// resolve moves open to halfOpen once the cool-off has elapsed.
// Must be called with b.mu held.
func (b *Breaker) resolve() state {
	if b.state == open && !b.now().Before(b.openUntil) {
		b.state = halfOpen
	}
	return b.state
}

func (b *Breaker) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if success {
		b.state = closed
		b.failures = 0
		return
	}

	switch b.state {
	case halfOpen:
		b.state = open
		b.openUntil = b.now().Add(b.coolOff)
	case closed:
		b.failures++
		if b.failures >= b.threshold {
			b.state = open
			b.openUntil = b.now().Add(b.coolOff)
		}
	}
}
