package utils

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned without running the request while the
// breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker shields request handling from an unhealthy cache
// backend: after enough consecutive failures calls are short-circuited
// until the timeout elapses, then a single probe decides whether to
// close again.
type CircuitBreaker struct {
	name        string
	maxFailures uint32
	timeout     time.Duration

	mutex    sync.Mutex
	state    BreakerState
	failures uint32
	openedAt time.Time
	probing  bool
}

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerHalfOpen
	BreakerOpen
)

func NewCircuitBreaker(name string) *CircuitBreaker {
	return &CircuitBreaker{
		name:        name,
		maxFailures: 5,
		timeout:     30 * time.Second,
		state:       BreakerClosed,
	}
}

// NewCircuitBreakerWithConfig allows tuning thresholds, mainly for tests.
func NewCircuitBreakerWithConfig(name string, maxFailures uint32, timeout time.Duration) *CircuitBreaker {
	cb := NewCircuitBreaker(name)
	cb.maxFailures = maxFailures
	cb.timeout = timeout
	return cb
}

// Execute runs req unless the breaker is open. The request's error is
// returned as-is; ErrCircuitOpen means req never ran.
func (cb *CircuitBreaker) Execute(req func() error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := req()
	cb.afterRequest(err == nil)
	return err
}

func (cb *CircuitBreaker) State() BreakerState {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.currentState(time.Now())
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.currentState(time.Now()) {
	case BreakerOpen:
		return ErrCircuitOpen
	case BreakerHalfOpen:
		if cb.probing {
			// one probe at a time while half open
			return ErrCircuitOpen
		}
		cb.probing = true
	}
	return nil
}

func (cb *CircuitBreaker) afterRequest(success bool) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	state := cb.currentState(time.Now())
	cb.probing = false

	if success {
		cb.failures = 0
		cb.state = BreakerClosed
		return
	}

	cb.failures++
	if state == BreakerHalfOpen || cb.failures >= cb.maxFailures {
		cb.state = BreakerOpen
		cb.openedAt = time.Now()
	}
}

// currentState resolves open -> half-open once the timeout has elapsed.
// Callers must hold the mutex.
func (cb *CircuitBreaker) currentState(now time.Time) BreakerState {
	if cb.state == BreakerOpen && now.Sub(cb.openedAt) >= cb.timeout {
		cb.state = BreakerHalfOpen
		cb.probing = false
	}
	return cb.state
}
