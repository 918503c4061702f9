package retry

import (
	"context"
	"time"

	"github.com/AnirudhB3000/buildaquery/backoff"
	"github.com/AnirudhB3000/buildaquery/dberrors"
)

// Policy configures Do's bounded exponential backoff.
type Policy struct {
	MaxAttempts       uint64
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64

	// SleepFunc, if set, replaces time.Sleep — used by tests to make retry
	// timing deterministic and instant.
	SleepFunc func(time.Duration)
}

func (p Policy) backoff() backoff.Backoff {
	mult := p.BackoffMultiplier
	if mult <= 1 {
		mult = 2
	}
	base := p.BaseDelay
	if base <= 0 {
		base = 50 * time.Millisecond
	}
	maxDelay := p.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 5 * time.Second
	}
	return backoff.NewBoundedExponential(base, maxDelay, mult)
}

func (p Policy) sleep(d time.Duration) {
	if p.SleepFunc != nil {
		p.SleepFunc(d)
		return
	}
	time.Sleep(d)
}

func (p Policy) maxAttempts() uint64 {
	if p.MaxAttempts == 0 {
		return 1
	}
	return p.MaxAttempts
}

// Hooks observes the lifecycle of a Do call.
type Hooks struct {
	// OnRetry is called after a transient error, before the backoff sleep.
	OnRetry func(attempt uint64, delay time.Duration, err error)
}

// Do runs fn, retrying on a dberrors.TransientError up to policy.MaxAttempts
// times with bounded exponential backoff:
// delay = min(base*multiplier^(attempt-1), max), no jitter. A non-transient
// error, or the final attempt's error, is returned immediately.
func Do(ctx context.Context, fn func(context.Context) error, policy Policy, hooks Hooks) error {
	backoffFn := policy.backoff()
	max := policy.maxAttempts()

	var lastErr error
	for attempt := uint64(1); attempt <= max; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		te, ok := lastErr.(dberrors.TransientError)
		isTransient := ok && te.Transient()

		if !isTransient || attempt == max {
			return lastErr
		}

		delay := backoffFn(attempt)
		if hooks.OnRetry != nil {
			hooks.OnRetry(attempt, delay, lastErr)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		policy.sleep(delay)
	}

	return lastErr
}
