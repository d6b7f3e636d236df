package websocket

import (
	"sync"
	"time"
)

// Minimum intervals between repeats of the same operation by the same
// identity. Anything quicker is dropped on the floor; this is abuse
// prevention, not flow control.
var defaultIntervals = map[string]time.Duration{
	EventChatMessage: 500 * time.Millisecond,
	EventCloseConns:  3 * time.Second,
	EventGetGames:    time.Second,
}

// Limiter enforces a per-(identity, operation) minimum interval.
type Limiter struct {
	mu        sync.Mutex
	intervals map[string]time.Duration
	last      map[string]time.Time
	now       func() time.Time // swappable for tests
}

func NewLimiter() *Limiter {
	return &Limiter{
		intervals: defaultIntervals,
		last:      make(map[string]time.Time),
		now:       time.Now,
	}
}

// Allow reports whether the operation may run now, and records the
// attempt if so. Operations without a configured interval always pass.
func (l *Limiter) Allow(identity, op string) bool {
	interval, ok := l.intervals[op]
	if !ok {
		return true
	}
	key := identity + "|" + op

	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if prev, ok := l.last[key]; ok && now.Sub(prev) < interval {
		return false
	}
	l.last[key] = now
	return true
}
