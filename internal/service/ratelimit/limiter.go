package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	lim  *rate.Limiter
	last time.Time
}

// Limiter keeps one token bucket per key (client IP on the API).
// Buckets idle longer than expiry are dropped on the next sweep.
type Limiter struct {
	mu     sync.Mutex
	m      map[string]*entry
	rps    rate.Limit
	burst  int
	expiry time.Duration
	now    func() time.Time
}

func New(rps float64, burst int, expiry time.Duration) *Limiter {
	if burst < 1 {
		burst = 1
	}
	if expiry <= 0 {
		expiry = 5 * time.Minute
	}
	return &Limiter{m: make(map[string]*entry), rps: rate.Limit(rps), burst: burst, expiry: expiry, now: time.Now}
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	e, ok := l.m[key]
	if !ok {
		e = &entry{lim: rate.NewLimiter(l.rps, l.burst)}
		l.m[key] = e
	}
	e.last = now
	l.mu.Unlock()
	return e.lim.AllowN(now, 1)
}

// Sweep removes idle buckets and returns how many were dropped.
func (l *Limiter) Sweep() int {
	cutoff := l.now().Add(-l.expiry)
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, e := range l.m {
		if e.last.Before(cutoff) {
			delete(l.m, k)
			n++
		}
	}
	return n
}

// Run sweeps every interval until stop is closed.
func (l *Limiter) Run(interval time.Duration, stop <-chan struct{}) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			l.Sweep()
		}
	}
}
