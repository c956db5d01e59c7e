package service

import (
	"context"
	"log"
	"time"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/clock"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/metrics"
)

const sweepLockKey = "ticketing:hold-sweeper"

// Locker grants a lease so that only one replica sweeps at a time.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// Sweeper periodically returns lapsed holds to AVAILABLE. Reads already
// treat lapsed holds as free; sweeping keeps the stored state close to it.
type Sweeper struct {
	inventory InventoryService
	clock     clock.Clock
	interval  time.Duration
	locker    Locker
	publisher Publisher
}

// NewSweeper builds a sweeper. locker and publisher may be nil.
func NewSweeper(inventory InventoryService, clk clock.Clock, interval time.Duration, locker Locker, publisher Publisher) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		inventory: inventory,
		clock:     clk,
		interval:  interval,
		locker:    locker,
		publisher: publisher,
	}
}

// Run sweeps every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("[Sweeper] started, interval %s", s.interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("[Sweeper] stopped")
			return nil
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
				log.Printf("[Sweeper] sweep failed: %v", err)
			}
		}
	}
}

// SweepOnce releases every hold lapsed at the clock's now. It returns nothing
// when another replica holds the lease.
func (s *Sweeper) SweepOnce(ctx context.Context) ([]SeatRef, error) {
	if s.locker != nil {
		ok, err := s.locker.TryLock(ctx, sweepLockKey, s.interval)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		defer func() {
			if err := s.locker.Unlock(context.WithoutCancel(ctx), sweepLockKey); err != nil {
				log.Printf("[Sweeper] failed to release lease: %v", err)
			}
		}()
	}

	start := time.Now()
	released, err := s.inventory.SweepExpired(ctx, s.clock.Now())
	metrics.SweepDuration.Observe(time.Since(start).Seconds())

	// Batches committed before a failure stay released.
	if len(released) > 0 {
		publish(s.publisher, RoutingSeatsReleased, SeatsReleasedMessage{
			Seats:      released,
			OccurredAt: s.clock.Now(),
		})
	}
	return released, err
}
