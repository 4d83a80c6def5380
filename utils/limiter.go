package utils

import "context"

// Limiter caps how many jobs may run at the same time.
type Limiter struct {
	slots chan struct{}
}

// NewLimiter creates a Limiter allowing maxJobs concurrent holders.
// Values below 1 are treated as 1.
func NewLimiter(maxJobs int) *Limiter {
	if maxJobs < 1 {
		maxJobs = 1
	}
	return &Limiter{slots: make(chan struct{}, maxJobs)}
}

// Acquire blocks until a slot is free or ctx is done.
func (l *Limiter) Acquire(ctx context.Context) error {
	select {
	case l.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot obtained by Acquire.
func (l *Limiter) Release() {
	<-l.slots
}

// Do runs job while holding a slot.
func (l *Limiter) Do(ctx context.Context, job func() error) error {
	if err := l.Acquire(ctx); err != nil {
		return err
	}
	defer l.Release()
	return job()
}

// InUse returns the number of slots currently held.
func (l *Limiter) InUse() int {
	return len(l.slots)
}

// Capacity returns the maximum number of concurrent holders.
func (l *Limiter) Capacity() int {
	return cap(l.slots)
}
