package ticket

import (
	"context"
	"log"
	"sync/atomic"
	"time"
)

const DefaultSweepInterval = time.Hour

// Sweeper periodically deletes expired tickets. One sweep at a time: a tick
// that fires while the previous sweep still runs is skipped.
type Sweeper struct {
	svc      *Service
	interval time.Duration
	running  atomic.Bool
}

func NewSweeper(svc *Service, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{svc: svc, interval: interval}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	defer s.running.Store(false)

	deleted, err := s.svc.DeleteExpired(ctx)
	if err != nil {
		log.Printf("sweeper: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("sweeper: removed %d expired ticket(s)", deleted)
	}
}
