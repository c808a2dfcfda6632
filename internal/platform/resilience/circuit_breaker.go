package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitClosed   CircuitState = "closed"
	CircuitOpen     CircuitState = "open"
	CircuitHalfOpen CircuitState = "half_open"
)

type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func (c CircuitBreakerConfig) normalized() CircuitBreakerConfig {
	if c.FailureThreshold < 1 {
		c.FailureThreshold = 5
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 15 * time.Second
	}
	if c.HalfOpenMaxReq < 1 {
		c.HalfOpenMaxReq = 2
	}
	return c
}

// CircuitBreaker guards the provider dependency: after enough consecutive
// failures it rejects calls for OpenTimeout, then probes with a bounded
// number of half-open requests.
type CircuitBreaker struct {
	mu  sync.Mutex
	cfg CircuitBreakerConfig
	now func() time.Time

	state     CircuitState
	failures  int
	openedAt  time.Time
	probing   int
	probeWins int
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		cfg:   cfg.normalized(),
		now:   time.Now,
		state: CircuitClosed,
	}
}

func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitOpen {
		if b.now().Sub(b.openedAt) < b.cfg.OpenTimeout {
			return ErrCircuitOpen
		}
		b.state = CircuitHalfOpen
		b.probing = 0
		b.probeWins = 0
	}

	if b.state == CircuitHalfOpen {
		if b.probing >= b.cfg.HalfOpenMaxReq {
			return ErrCircuitOpen
		}
		b.probing++
	}

	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitClosed:
		b.failures = 0
	case CircuitHalfOpen:
		if b.probing > 0 {
			b.probing--
		}
		b.probeWins++
		if b.probeWins >= b.cfg.HalfOpenMaxReq && b.probing == 0 {
			b.state = CircuitClosed
			b.failures = 0
			b.openedAt = time.Time{}
		}
	}
}

func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.trip()
		}
	case CircuitHalfOpen:
		if b.probing > 0 {
			b.probing--
		}
		b.trip()
	case CircuitOpen:
		b.openedAt = b.now()
	}
}

func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitOpen && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		return CircuitHalfOpen
	}
	return b.state
}

func (b *CircuitBreaker) trip() {
	b.state = CircuitOpen
	b.openedAt = b.now()
	b.probing = 0
	b.probeWins = 0
}
