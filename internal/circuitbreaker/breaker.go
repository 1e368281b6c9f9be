// Package circuitbreaker stops hammering an exchange that is failing.
package circuitbreaker

import (
	"sync"
	"time"
)

// State is the breaker's current position.
type State int

const (
	// StateClosed lets all requests through.
	StateClosed State = iota
	// StateOpen rejects requests until the cool-down elapses.
	StateOpen
	// StateHalfOpen lets probe requests through to test recovery.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Config tunes the breaker thresholds.
type Config struct {
	// FailThreshold is the consecutive failures that open the breaker.
	FailThreshold int `json:"fail_threshold"`
	// SuccessThreshold is the consecutive successes that close it again.
	SuccessThreshold int `json:"success_threshold"`
	// Timeout is the cool-down before probing.
	Timeout time.Duration `json:"timeout"`
}

// Breaker is a three-state circuit breaker. All methods are safe for
// concurrent use.
type Breaker struct {
	mu           sync.Mutex
	state        State
	failures     int
	successes    int
	lastFailTime time.Time
	config       Config

	// now is swappable for tests.
	now func() time.Time
}

// New creates a closed breaker with the given thresholds.
func New(config Config) *Breaker {
	return &Breaker{
		state:  StateClosed,
		config: config,
		now:    time.Now,
	}
}

// Allow reports whether a request may proceed. An open breaker transitions
// to half-open once the cool-down elapses.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		if b.now().Sub(b.lastFailTime) >= b.config.Timeout {
			b.state = StateHalfOpen
			b.successes = 0
			return true
		}
		return false
	}
	return false
}

// Record feeds the outcome of a request into the state machine.
func (b *Breaker) Record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		if success {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.config.FailThreshold {
			b.trip()
		}
	case StateHalfOpen:
		if !success {
			b.trip()
			return
		}
		b.successes++
		if b.successes >= b.config.SuccessThreshold {
			b.state = StateClosed
			b.failures = 0
			b.successes = 0
		}
	case StateOpen:
		// Outcomes of requests started before the trip are stale.
	}
}

func (b *Breaker) trip() {
	b.state = StateOpen
	b.failures = 0
	b.successes = 0
	b.lastFailTime = b.now()
}

// State returns the breaker's current position.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset forces the breaker closed and clears all counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
}
