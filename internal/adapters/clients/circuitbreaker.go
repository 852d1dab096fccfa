package clients

import (
	"sync"
	"time"
)

// State is the circuit breaker position.
type State int

const (
	// StateClosed lets every quote request through.
	StateClosed State = iota

	// StateOpen rejects requests until the cool-down ends. Callers serve a
	// local quote instead of waiting on a failing provider.
	StateOpen

	// StateHalfOpen admits a few trial requests to see if the provider is back.
	StateHalfOpen
)

// String returns the state name used in logs and health output.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures the circuit breaker behavior.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failures that open the circuit.
	MaxFailures int

	// Timeout is the open-state cool-down before trial calls are admitted.
	Timeout time.Duration

	// HalfOpenLimit caps in-flight trial calls and is the number of consecutive
	// trial successes needed to close the circuit.
	HalfOpenLimit int
}

// Snapshot is a point-in-time view of a CircuitBreaker.
type Snapshot struct {
	State State

	// Failures counts consecutive failures while closed.
	Failures int

	// ReopenAt is when an open circuit starts admitting trial calls. Zero unless open.
	ReopenAt time.Time
}

// CircuitBreaker guards the quote provider.
//
//	closed    -> open       after MaxFailures consecutive failures
//	open      -> half-open  once Timeout has passed since the last failure
//	half-open -> closed     after HalfOpenLimit consecutive successes
//	half-open -> open       on any failure
type CircuitBreaker struct {
	cfg CircuitBreakerConfig
	now func() time.Time

	mu          sync.RWMutex
	state       State
	failures    int
	successes   int
	trials      int
	lastFailure time.Time
	onChange    func(from, to State)
}

// NewCircuitBreaker creates a closed circuit breaker.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		cfg:   cfg,
		now:   time.Now,
		state: StateClosed,
	}
}

// OnStateChange registers fn to run, on its own goroutine, after every transition.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.onChange = fn
}

// Allow reports whether a request may proceed. An open circuit whose
// cool-down has elapsed moves to half-open and admits the caller as a trial call.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if cb.now().Before(cb.reopenAt()) {
			return false
		}
		cb.setState(StateHalfOpen)
		cb.trials = 1
		return true
	case StateHalfOpen:
		if cb.trials >= cb.cfg.HalfOpenLimit {
			return false
		}
		cb.trials++
		return true
	default:
		return false
	}
}

// RecordSuccess records a successful request.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.trials--
		cb.successes++
		if cb.successes >= cb.cfg.HalfOpenLimit {
			cb.setState(StateClosed)
		}
	}
}

// RecordFailure records a failed request.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailure = cb.now()

	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.cfg.MaxFailures {
			cb.setState(StateOpen)
		}
	case StateHalfOpen:
		cb.trials--
		cb.setState(StateOpen)
	}
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	return cb.state
}

// Snapshot returns the current state with its counters.
func (cb *CircuitBreaker) Snapshot() Snapshot {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	s := Snapshot{State: cb.state, Failures: cb.failures}
	if cb.state == StateOpen {
		s.ReopenAt = cb.reopenAt()
	}

	return s
}

// reopenAt must be called with the lock held.
func (cb *CircuitBreaker) reopenAt() time.Time {
	return cb.lastFailure.Add(cb.cfg.Timeout)
}

// setState must be called with the lock held. Counters reset on every transition.
func (cb *CircuitBreaker) setState(to State) {
	if cb.state == to {
		return
	}

	from := cb.state
	cb.state = to
	cb.failures = 0
	cb.successes = 0

	if cb.onChange != nil {
		go cb.onChange(from, to)
	}
}
