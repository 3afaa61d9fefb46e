package retry

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Policy describes capped exponential backoff with jitter.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Jitter is the fraction of each delay that is randomised, in [0,1].
	Jitter float64
}

// DefaultPolicy mirrors the gateway defaults.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: 200 * time.Millisecond, MaxDelay: 2 * time.Second, Jitter: 0.2}
}

func (p Policy) normalised() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 200 * time.Millisecond
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = p.BaseDelay
	}
	if p.Jitter < 0 {
		p.Jitter = 0
	}
	if p.Jitter > 1 {
		p.Jitter = 1
	}
	return p
}

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// Delay returns the wait before the given retry (attempt 1 is the first retry).
func (p Policy) Delay(attempt int) time.Duration {
	p = p.normalised()
	if attempt < 1 {
		attempt = 1
	}
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			delay = p.MaxDelay
			break
		}
	}
	if p.Jitter == 0 {
		return delay
	}
	rngMu.Lock()
	factor := 1 - p.Jitter + rng.Float64()*p.Jitter
	rngMu.Unlock()
	return time.Duration(float64(delay) * factor)
}

// Retryable reports whether an error returned from an attempt may be retried.
type Retryable func(err error) bool

// Do runs fn until it succeeds, the error is not retryable, attempts run out,
// or ctx is done. It returns the last error observed.
func Do(ctx context.Context, p Policy, retryable Retryable, fn func(ctx context.Context, attempt int) error) error {
	p = p.normalised()
	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err = fn(ctx, attempt)
		if err == nil {
			return nil
		}
		if attempt == p.MaxAttempts || (retryable != nil && !retryable(err)) {
			return err
		}
		timer := time.NewTimer(p.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
	return err
}
