// Package ratelimit bounds how many operations may begin per second.
package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter admits operations at a fixed rate using a token bucket whose burst
// equals the rate: up to rps operations may begin within any rolling
// one-second window, front-loaded bursts included. It bounds admissions only;
// an admitted operation may run as long as it likes.
type Limiter struct {
	bucket *rate.Limiter
	mu     sync.Mutex // serializes admission so Submit stays FIFO
	rps    int
}

// New creates a Limiter admitting up to rps operations per second.
func New(rps int) (*Limiter, error) {
	if rps <= 0 {
		return nil, fmt.Errorf("rate must be positive, got %d", rps)
	}
	return &Limiter{
		bucket: rate.NewLimiter(rate.Limit(rps), rps),
		rps:    rps,
	}, nil
}

// Rate returns the configured admissions per second.
func (l *Limiter) Rate() int {
	return l.rps
}

// Submit blocks until the bucket admits op, then starts op in its own
// goroutine and returns a Ticket that resolves when op returns. Operations
// are admitted in submission order. Whether op succeeds is op's concern; the
// only error Submit reports is context cancellation while waiting.
func (l *Limiter) Submit(ctx context.Context, op func(context.Context)) (*Ticket, error) {
	l.mu.Lock()
	err := l.bucket.Wait(ctx)
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}

	t := &Ticket{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		op(ctx)
	}()
	return t, nil
}

// Ticket resolves when a submitted operation has completed.
type Ticket struct {
	done chan struct{}
}

// Done returns a channel that is closed when the operation has completed.
func (t *Ticket) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the operation completes or ctx is cancelled.
func (t *Ticket) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
