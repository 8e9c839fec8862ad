// Package retrylimit retries flaky extraction calls behind a shared adaptive
// rate limit. Media hosts throttle aggressively, so every resolver in a
// process shares one limiter: failures halve the rate, a quiet period of
// successes raises it again.
//
//	lim := retrylimit.NewLimiter(4, 1, 8)
//	err := retrylimit.Do(ctx, lim, retrylimit.Policy{Attempts: 3}, func(ctx context.Context) error {
//	    return fetch(ctx)
//	})
package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Limiter is a token bucket whose rate moves between min and max.
type Limiter struct {
	mu        sync.Mutex
	bucket    *rate.Limiter
	min, max  rate.Limit
	lastFault time.Time
	calm      time.Duration
}

// NewLimiter returns a limiter starting at initial requests per second.
func NewLimiter(initial, min, max rate.Limit) *Limiter {
	if min <= 0 {
		min = 1
	}
	if max < min {
		max = min
	}
	initial = clamp(initial, min, max)
	return &Limiter{
		bucket: rate.NewLimiter(initial, burstFor(initial)),
		min:    min,
		max:    max,
		calm:   10 * time.Second,
	}
}

// Wait blocks until a token is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.bucket.Wait(ctx)
}

// Success nudges the rate up once no failure was seen for a while.
func (l *Limiter) Success() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if time.Since(l.lastFault) > l.calm {
		l.set(l.bucket.Limit() + 1)
	}
}

// Failure halves the rate.
func (l *Limiter) Failure() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastFault = time.Now()
	l.set(l.bucket.Limit() / 2)
}

// Limit returns the current rate.
func (l *Limiter) Limit() rate.Limit {
	return l.bucket.Limit()
}

func (l *Limiter) set(r rate.Limit) {
	r = clamp(r, l.min, l.max)
	if r == l.bucket.Limit() {
		return
	}
	l.bucket.SetLimit(r)
	l.bucket.SetBurst(burstFor(r))
}

// Permanent marks an error that must not be retried.
type Permanent struct {
	Err error
}

func (p *Permanent) Error() string { return p.Err.Error() }
func (p *Permanent) Unwrap() error { return p.Err }

// Stop wraps err so Do returns it without further attempts.
func Stop(err error) error {
	if err == nil {
		return nil
	}
	return &Permanent{Err: err}
}

// Policy controls the number of attempts and the backoff between them.
type Policy struct {
	Attempts int
	Delay    time.Duration
	MaxDelay time.Duration
	// Name labels log lines.
	Name string
}

func (p Policy) withDefaults() Policy {
	if p.Attempts <= 0 {
		p.Attempts = 3
	}
	if p.Delay <= 0 {
		p.Delay = 300 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 5 * time.Second
	}
	if p.Name == "" {
		p.Name = "call"
	}
	return p
}

// Do runs fn until it succeeds, returns a Permanent error, ctx ends or the
// attempts run out. lim may be nil.
func Do(ctx context.Context, lim *Limiter, p Policy, fn func(ctx context.Context) error) error {
	p = p.withDefaults()
	delay := p.Delay

	var err error
	for attempt := 1; attempt <= p.Attempts; attempt++ {
		if lim != nil {
			if werr := lim.Wait(ctx); werr != nil {
				return werr
			}
		}

		err = fn(ctx)
		if err == nil {
			if lim != nil {
				lim.Success()
			}
			return nil
		}

		var perm *Permanent
		if errors.As(err, &perm) {
			return perm.Err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if lim != nil {
			lim.Failure()
		}
		if attempt == p.Attempts {
			break
		}

		log.Debug().Err(err).Str("call", p.Name).Int("attempt", attempt).Dur("sleep", delay).Msg("[Retry] attempt failed")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(jitter(delay)):
		}
		delay = min(delay*2, p.MaxDelay)
	}

	return fmt.Errorf("%s failed after %d attempts: %w", p.Name, p.Attempts, err)
}

func jitter(d time.Duration) time.Duration {
	if d < 4 {
		return d
	}
	return d + rand.N(d/4)
}

func clamp(r, lo, hi rate.Limit) rate.Limit {
	if r < lo {
		return lo
	}
	if r > hi {
		return hi
	}
	return r
}

func burstFor(r rate.Limit) int {
	return max(1, int(r))
}
