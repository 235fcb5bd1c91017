package ratelimit

import (
	"sync"
	"time"
)

type bucket struct {
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	last       time.Time
}

// Limiter is a keyed token bucket. Forced refreshes are keyed by client.
type Limiter struct {
	mu  sync.Mutex
	m   map[string]*bucket
	now func() time.Time
}

func New() *Limiter { return &Limiter{m: make(map[string]*bucket), now: time.Now} }

// WithClock swaps the time source.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string, capacity, refillPerSec float64) bool {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.m[key]
	if !ok {
		b = &bucket{tokens: capacity, capacity: capacity, refillRate: refillPerSec, last: now}
		l.m[key] = b
	}
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens += elapsed * b.refillRate
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.last = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Sweep drops buckets untouched for longer than idle. Returns how many were removed.
func (l *Limiter) Sweep(idle time.Duration) int {
	cutoff := l.now().Add(-idle)
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for k, b := range l.m {
		if b.last.Before(cutoff) {
			delete(l.m, k)
			n++
		}
	}
	return n
}

// ForceGuard limits how often one client may bypass the view cache.
type ForceGuard struct {
	l        *Limiter
	capacity float64
	refill   float64
}

func NewForceGuard(l *Limiter, capacity, refillPerSec float64) *ForceGuard {
	if capacity < 1 {
		capacity = 1
	}
	return &ForceGuard{l: l, capacity: capacity, refill: refillPerSec}
}

// Allow consumes one forced refresh for client.
func (g *ForceGuard) Allow(client string) bool {
	return g.l.Allow("force:"+client, g.capacity, g.refill)
}

// Sweep forwards to the underlying limiter.
func (g *ForceGuard) Sweep(idle time.Duration) int {
	return g.l.Sweep(idle)
}
