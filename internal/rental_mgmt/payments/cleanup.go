package payments

import (
	"context"
	"log"
	"time"
)

// Sweeper fails payments that sat pending for longer than the TTL and
// cancels the rentals waiting on them. Run it as a goroutine; it stops
// when the context is cancelled.
type Sweeper struct {
	store    PaymentStore
	ttl      time.Duration
	interval time.Duration
}

func NewSweeper(store PaymentStore, ttl, interval time.Duration) *Sweeper {
	return &Sweeper{store: store, ttl: ttl, interval: interval}
}

func (s *Sweeper) Run(ctx context.Context) {
	log.Printf("[INFO] payment sweeper started (ttl=%s interval=%s)", s.ttl, s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[INFO] payment sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.ttl)
	n, err := s.store.ExpirePending(ctx, cutoff)
	if err != nil {
		log.Printf("[WARN] payment sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[INFO] payment sweep expired %d pending payment(s)", n)
	}
}
