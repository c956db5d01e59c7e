package service

import (
	"testing"
	"time"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestHoldPolicy(t *testing.T) {
	p := NewHoldPolicy(0)
	assert.Equal(t, DefaultHoldTTL, p.TTL)

	expires := t0.Add(15 * time.Minute)
	held := &models.EventSeat{Status: models.SeatHold, HoldExpiresAt: &expires}

	tests := []struct {
		name   string
		seat   *models.EventSeat
		at     time.Time
		lapsed bool
		status models.SeatStatus
	}{
		{"hold before expiry", held, t0.Add(14 * time.Minute), false, models.SeatHold},
		{"hold at expiry", held, expires, true, models.SeatAvailable},
		{"hold after expiry", held, expires.Add(time.Second), true, models.SeatAvailable},
		{"hold without expiry", &models.EventSeat{Status: models.SeatHold}, t0, true, models.SeatAvailable},
		{"sold never lapses", &models.EventSeat{Status: models.SeatSold}, expires.Add(time.Hour), false, models.SeatSold},
		{"available", &models.EventSeat{Status: models.SeatAvailable}, t0, false, models.SeatAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.lapsed, p.Lapsed(tt.seat, tt.at))
			assert.Equal(t, tt.status, p.Effective(tt.seat, tt.at))
		})
	}
}

func TestHoldPolicy_HeldBy(t *testing.T) {
	p := NewHoldPolicy(10 * time.Minute)
	seat := &models.EventSeat{Status: models.SeatAvailable}

	p.hold(seat, 7, t0)

	assert.Equal(t, t0.Add(10*time.Minute), *seat.HoldExpiresAt)
	assert.True(t, p.HeldBy(seat, 7, t0.Add(time.Minute)))
	assert.False(t, p.HeldBy(seat, 8, t0.Add(time.Minute)))
	assert.False(t, p.HeldBy(seat, 7, t0.Add(10*time.Minute)))

	release(seat, t0)
	assert.Equal(t, models.SeatAvailable, seat.Status)
	assert.Nil(t, seat.HoldExpiresAt)
	assert.Nil(t, seat.HeldBy)
}
