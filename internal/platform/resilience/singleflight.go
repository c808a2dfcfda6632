package resilience

import "sync"

// SingleFlight collapses concurrent calls for the same key into one
// execution; waiters receive the leader's result.
type SingleFlight struct {
	mu       sync.Mutex
	inFlight map[string]*flightCall
}

type flightCall struct {
	done  chan struct{}
	value any
	err   error
}

// Do runs fn once per key at a time. The third result reports whether this
// caller shared another caller's execution.
func (g *SingleFlight) Do(key string, fn func() (any, error)) (any, error, bool) {
	g.mu.Lock()
	if g.inFlight == nil {
		g.inFlight = make(map[string]*flightCall)
	}
	if c, ok := g.inFlight[key]; ok {
		g.mu.Unlock()
		<-c.done
		return c.value, c.err, true
	}

	c := &flightCall{done: make(chan struct{})}
	g.inFlight[key] = c
	g.mu.Unlock()

	c.value, c.err = fn()
	close(c.done)

	g.mu.Lock()
	delete(g.inFlight, key)
	g.mu.Unlock()

	return c.value, c.err, false
}
