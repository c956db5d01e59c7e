package service

import (
	"time"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
)

const DefaultHoldTTL = 15 * time.Minute

// HoldPolicy is the one place that decides whether a hold still counts.
// Every inventory read and write looks at seats through it, so an expired
// HOLD is never reported as unavailable even before the sweeper runs.
type HoldPolicy struct {
	TTL time.Duration
}

func NewHoldPolicy(ttl time.Duration) HoldPolicy {
	if ttl <= 0 {
		ttl = DefaultHoldTTL
	}
	return HoldPolicy{TTL: ttl}
}

// Lapsed reports whether seat is a HOLD whose expiry is at or before now.
// A HOLD without an expiry is inconsistent and is treated as lapsed.
func (p HoldPolicy) Lapsed(seat *models.EventSeat, now time.Time) bool {
	if seat.Status != models.SeatHold {
		return false
	}
	return seat.HoldExpiresAt == nil || !seat.HoldExpiresAt.After(now)
}

func (p HoldPolicy) Effective(seat *models.EventSeat, now time.Time) models.SeatStatus {
	if p.Lapsed(seat, now) {
		return models.SeatAvailable
	}
	return seat.Status
}

// HeldBy reports whether holder currently owns a live HOLD on seat.
func (p HoldPolicy) HeldBy(seat *models.EventSeat, holder uint, now time.Time) bool {
	return seat.Status == models.SeatHold && owner(seat) == holder && !p.Lapsed(seat, now)
}

func (p HoldPolicy) ExpiresAt(now time.Time) time.Time {
	return now.Add(p.TTL)
}

func (p HoldPolicy) hold(seat *models.EventSeat, holder uint, now time.Time) {
	expires := p.ExpiresAt(now)
	seat.Status = models.SeatHold
	seat.HoldExpiresAt = &expires
	seat.HeldBy = &holder
	seat.UpdatedAt = now
}

func release(seat *models.EventSeat, now time.Time) {
	seat.Status = models.SeatAvailable
	seat.HoldExpiresAt = nil
	seat.HeldBy = nil
	seat.UpdatedAt = now
}

func sell(seat *models.EventSeat, now time.Time) {
	seat.Status = models.SeatSold
	seat.HoldExpiresAt = nil
	seat.UpdatedAt = now
}

func owner(seat *models.EventSeat) uint {
	if seat.HeldBy == nil {
		return 0
	}
	return *seat.HeldBy
}
