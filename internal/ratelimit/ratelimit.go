package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Pacer spaces actions out in time.
type Pacer interface {
	Wait(ctx context.Context) error
}

// FixedPacer serializes callers behind one mutex so consecutive releases are
// at least delay apart, no matter how many goroutines contend. A zero delay
// never blocks.
type FixedPacer struct {
	delay      time.Duration
	lastAction time.Time
	mu         sync.Mutex
}

func NewFixedPacer(delay time.Duration) *FixedPacer {
	return &FixedPacer{delay: delay}
}

func (p *FixedPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.lastAction)
	if elapsed < p.delay {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.delay - elapsed):
		}
	}

	p.lastAction = time.Now()
	return nil
}
