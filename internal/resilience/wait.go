package resilience

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
)

// WaitConfig controls a bounded condition wait.
type WaitConfig struct {
	// Interval between condition checks. Default: 500ms.
	Interval time.Duration

	// Timeout bounds the total wait. Default: 10s.
	Timeout time.Duration
}

func (c WaitConfig) withDefaults() WaitConfig {
	if c.Interval <= 0 {
		c.Interval = 500 * time.Millisecond
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return c
}

// WaitUntil polls cond at a fixed interval until it returns true, the
// timeout elapses, or ctx is cancelled. A cond error aborts the wait
// immediately. Exceeding the timeout yields a CategoryTimeout error
// naming what was being waited for; it never hangs indefinitely.
//
// This is the only retry mechanism in the system: failed operations are
// surfaced, not re-attempted, but readiness checks (page load, composer
// appearance, send confirmation) poll through here.
func WaitUntil(ctx context.Context, what string, cfg WaitConfig, cond func(ctx context.Context) (bool, error)) error {
	cfg = cfg.withDefaults()

	deadline := time.Now().Add(cfg.Timeout)
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		ok, err := cond(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return Categorize(CategoryTimeout, eris.Errorf("timed out after %s waiting for %s", cfg.Timeout, what))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Sleep blocks for d or until ctx is cancelled, returning ctx.Err() in
// the cancelled case.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Countdown sleeps for the given number of seconds, invoking tick with
// the remaining seconds before each one-second wait. A tick error
// aborts the countdown and is returned, so callers can bail out
// mid-wait. It returns early with ctx.Err() on cancellation. tick may
// be nil.
func Countdown(ctx context.Context, seconds int, tick func(remaining int) error) error {
	for remaining := seconds; remaining > 0; remaining-- {
		if tick != nil {
			if err := tick(remaining); err != nil {
				return err
			}
		}
		if err := Sleep(ctx, time.Second); err != nil {
			return err
		}
	}
	return nil
}
