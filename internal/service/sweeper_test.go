package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLocker struct {
	granted  bool
	err      error
	locked   []string
	unlocked []string
}

func (l *stubLocker) TryLock(_ context.Context, key string, _ time.Duration) (bool, error) {
	l.locked = append(l.locked, key)
	return l.granted, l.err
}

func (l *stubLocker) Unlock(_ context.Context, key string) error {
	l.unlocked = append(l.unlocked, key)
	return nil
}

func TestSweeper_ReleasesLapsedHolds(t *testing.T) {
	f := newFixture(t)
	r := f.reserveSeats(t, 12)

	sweeper := NewSweeper(f.inventory, f.clock, time.Minute, nil, f.publisher)

	f.clock.Advance(DefaultHoldTTL - time.Second)
	released, err := sweeper.SweepOnce(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, released)

	f.clock.Advance(2 * time.Second)
	released, err = sweeper.SweepOnce(f.ctx)
	require.NoError(t, err)
	require.Len(t, released, 1)
	assert.Equal(t, uint(12), released[0].SeatID)
	assert.Equal(t, r.ID, *released[0].HeldBy)
	assert.Equal(t, models.SeatAvailable, f.seat(t, 12).Status)
	assert.Contains(t, f.publisher.Keys(), RoutingSeatsReleased)

	other := f.reserve(t, normal(1))
	_, err = f.reservations.AddTicket(f.ctx, other.ID, testEventID, 12, "Normal")
	require.NoError(t, err)
}

func TestSweeper_Lease(t *testing.T) {
	f := newFixture(t)
	f.reserveSeats(t, 3)
	f.clock.Advance(time.Hour)

	busy := &stubLocker{granted: false}
	released, err := NewSweeper(f.inventory, f.clock, time.Minute, busy, nil).SweepOnce(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, released)
	assert.Empty(t, busy.unlocked)
	assert.Equal(t, models.SeatHold, f.seat(t, 3).Status)

	broken := &stubLocker{err: errors.New("redis down")}
	_, err = NewSweeper(f.inventory, f.clock, time.Minute, broken, nil).SweepOnce(f.ctx)
	assert.Error(t, err)

	free := &stubLocker{granted: true}
	released, err = NewSweeper(f.inventory, f.clock, time.Minute, free, nil).SweepOnce(f.ctx)
	require.NoError(t, err)
	assert.Len(t, released, 1)
	assert.Equal(t, []string{sweepLockKey}, free.unlocked)
}

func TestSweeper_RunStopsWithContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(f.ctx)

	done := make(chan error, 1)
	go func() {
		done <- NewSweeper(f.inventory, f.clock, 10*time.Millisecond, nil, nil).Run(ctx)
	}()
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
