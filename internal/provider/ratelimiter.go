package provider

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket shared by every call going to the same upstream
// host. Wait blocks for a token; Allow takes one only if it is available now.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     int
	burst      int
	every      time.Duration
	lastRefill time.Time
	now        func() time.Time
}

// NewRateLimiter starts full with burst tokens and adds one every interval.
func NewRateLimiter(burst int, every time.Duration) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if every <= 0 {
		every = time.Second
	}
	r := &RateLimiter{tokens: burst, burst: burst, every: every, now: time.Now}
	r.lastRefill = r.now()
	return r
}

func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		if r.Allow() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.every):
		}
	}
}

func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if added := int(r.now().Sub(r.lastRefill) / r.every); added > 0 {
		r.tokens = min(r.tokens+added, r.burst)
		r.lastRefill = r.lastRefill.Add(time.Duration(added) * r.every)
	}
	if r.tokens == 0 {
		return false
	}
	r.tokens--
	return true
}
