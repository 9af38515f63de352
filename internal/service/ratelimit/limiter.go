package ratelimit

import (
	"sync"
	"time"
)

type bucket struct {
	tokens float64
	last   time.Time
}

// Limiter is a keyed token bucket. Every key starts full with Burst tokens
// and refills at Rate tokens per second.
type Limiter struct {
	mu    sync.Mutex
	m     map[string]*bucket
	burst float64
	rate  float64
	now   func() time.Time
}

func New(burst, perSecond float64) *Limiter {
	return &Limiter{
		m:     make(map[string]*bucket),
		burst: burst,
		rate:  perSecond,
		now:   time.Now,
	}
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.m[key]
	if !ok {
		b = &bucket{tokens: l.burst, last: now}
		l.m[key] = b
	}
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens += elapsed * l.rate
		if b.tokens > l.burst {
			b.tokens = l.burst
		}
		b.last = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Prune drops buckets idle long enough to have refilled completely.
func (l *Limiter) Prune() int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	full := time.Duration(l.burst / l.rate * float64(time.Second))
	n := 0
	for k, b := range l.m {
		if now.Sub(b.last) >= full {
			delete(l.m, k)
			n++
		}
	}
	return n
}
