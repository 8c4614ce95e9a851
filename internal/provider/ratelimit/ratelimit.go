package ratelimit

import (
	"context"
	"time"
)

// WaitFunc blocks for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default WaitFunc. It returns ctx.Err() if the context ends
// first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Pacer runs units strictly one after another and waits Delay between two
// consecutive units. Nothing is waited after the last unit.
type Pacer struct {
	Delay time.Duration
	// Wait defaults to Sleep.
	Wait WaitFunc
}

// Run calls fn for unit indexes 0..n-1 and stops at the first error, which
// is returned as is. A canceled context stops the run between units.
func (p Pacer) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	wait := p.Wait
	if wait == nil {
		wait = Sleep
	}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, i); err != nil {
			return err
		}
		if i < n-1 && p.Delay > 0 {
			if err := wait(ctx, p.Delay); err != nil {
				return err
			}
		}
	}
	return nil
}
