package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/clock"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/metrics"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/repository"
	"github.com/shopspring/decimal"
)

const defaultSweepBatch = 500

// SeatView is a seat of an event as buyers see it: lapsed holds read as AVAILABLE.
type SeatView struct {
	SeatID        uint              `json:"seat_id"`
	Name          string            `json:"name"`
	Type          string            `json:"type"`
	Sector        string            `json:"sector"`
	Supplement    decimal.Decimal   `json:"supplement"`
	Status        models.SeatStatus `json:"status"`
	HoldExpiresAt *time.Time        `json:"hold_expires_at,omitempty"`
}

// SeatRef identifies a seat released by the sweeper and the reservation that held it.
type SeatRef struct {
	EventID uint  `json:"event_id"`
	SeatID  uint  `json:"seat_id"`
	HeldBy  *uint `json:"held_by,omitempty"`
}

// InventoryService owns every seat status transition. Methods called with a
// transaction in ctx join it, so callers can make a transition atomic with
// their own writes.
type InventoryService interface {
	ListSeats(ctx context.Context, eventID uint, status *models.SeatStatus) ([]SeatView, error)
	TryHold(ctx context.Context, eventID, seatID, holder uint) (*models.EventSeat, error)
	// ClaimAny holds count claimable seats for holder in sector and seat order.
	ClaimAny(ctx context.Context, eventID uint, count int, holder uint) ([]models.EventSeat, error)
	Release(ctx context.Context, eventID, seatID uint) error
	// ReleaseHeldBy releases the seat only if holder owns it and reports whether it did.
	ReleaseHeldBy(ctx context.Context, eventID, seatID, holder uint) (bool, error)
	ConfirmSold(ctx context.Context, eventID uint, seatIDs []uint, holder uint) error
	SweepExpired(ctx context.Context, now time.Time) ([]SeatRef, error)
}

type inventoryService struct {
	tx        repository.TxManager
	inventory repository.InventoryRepository
	policy    HoldPolicy
	clock     clock.Clock
	batch     int
}

func NewInventoryService(repos *repository.Set, policy HoldPolicy, clk clock.Clock) InventoryService {
	return &inventoryService{
		tx:        repos.Tx,
		inventory: repos.Inventory,
		policy:    policy,
		clock:     clk,
		batch:     defaultSweepBatch,
	}
}

func (s *inventoryService) ListSeats(ctx context.Context, eventID uint, status *models.SeatStatus) ([]SeatView, error) {
	seats, err := s.inventory.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, persistence("list seats", err)
	}

	now := s.clock.Now()
	views := make([]SeatView, 0, len(seats))
	for i := range seats {
		effective := s.policy.Effective(&seats[i], now)
		if status != nil && effective != *status {
			continue
		}
		view := SeatView{
			SeatID: seats[i].SeatID,
			Status: effective,
		}
		if effective == models.SeatHold {
			view.HoldExpiresAt = seats[i].HoldExpiresAt
		}
		if seat := seats[i].Seat; seat != nil {
			view.Name = seat.Name
			view.Type = seat.Type
			if seat.Sector != nil {
				view.Sector = seat.Sector.Name
				view.Supplement = seat.Sector.Supplement
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *inventoryService) TryHold(ctx context.Context, eventID, seatID, holder uint) (*models.EventSeat, error) {
	var held *models.EventSeat
	err := runTx(ctx, s.tx, "hold seat", func(ctx context.Context) error {
		seat, err := s.lock(ctx, eventID, seatID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if status := s.policy.Effective(seat, now); status != models.SeatAvailable {
			return &SeatUnavailableError{EventID: eventID, SeatID: seatID, Status: status}
		}

		s.policy.hold(seat, holder, now)
		if err := s.inventory.Update(ctx, seat); err != nil {
			return persistence("hold seat", err)
		}
		held = seat
		return nil
	})
	metrics.SeatHolds.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		return nil, err
	}
	return held, nil
}

func (s *inventoryService) ClaimAny(ctx context.Context, eventID uint, count int, holder uint) ([]models.EventSeat, error) {
	if count <= 0 {
		return nil, nil
	}

	var claimed []models.EventSeat
	err := runTx(ctx, s.tx, "claim seats", func(ctx context.Context) error {
		now := s.clock.Now()
		seats, err := s.inventory.ListClaimableForUpdate(ctx, eventID, now, count)
		if err != nil {
			return persistence("claim seats", err)
		}
		if len(seats) < count {
			return fmt.Errorf("%w: %d requested, %d free", ErrInsufficientSeats, count, len(seats))
		}

		for i := range seats {
			s.policy.hold(&seats[i], holder, now)
			if err := s.inventory.Update(ctx, &seats[i]); err != nil {
				return persistence("claim seats", err)
			}
		}
		claimed = seats
		return nil
	})
	metrics.SeatHolds.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (s *inventoryService) Release(ctx context.Context, eventID, seatID uint) error {
	return runTx(ctx, s.tx, "release seat", func(ctx context.Context) error {
		seat, err := s.lock(ctx, eventID, seatID)
		if err != nil {
			return err
		}

		switch seat.Status {
		case models.SeatAvailable:
			return nil
		case models.SeatSold:
			return &SeatUnavailableError{EventID: eventID, SeatID: seatID, Status: seat.Status}
		}

		release(seat, s.clock.Now())
		if err := s.inventory.Update(ctx, seat); err != nil {
			return persistence("release seat", err)
		}
		metrics.SeatReleases.WithLabelValues("released").Inc()
		return nil
	})
}

func (s *inventoryService) ReleaseHeldBy(ctx context.Context, eventID, seatID, holder uint) (bool, error) {
	var released bool
	err := runTx(ctx, s.tx, "release seat", func(ctx context.Context) error {
		seat, err := s.lock(ctx, eventID, seatID)
		if errors.Is(err, ErrSeatNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if seat.Status != models.SeatHold && seat.Status != models.SeatReserved {
			return nil
		}
		if owner(seat) != holder {
			return nil
		}

		release(seat, s.clock.Now())
		if err := s.inventory.Update(ctx, seat); err != nil {
			return persistence("release seat", err)
		}
		released = true
		metrics.SeatReleases.WithLabelValues("cancelled").Inc()
		return nil
	})
	return released, err
}

func (s *inventoryService) ConfirmSold(ctx context.Context, eventID uint, seatIDs []uint, holder uint) error {
	ids := slices.Clone(seatIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	return runTx(ctx, s.tx, "confirm seats", func(ctx context.Context) error {
		seats, err := s.inventory.ListForUpdate(ctx, eventID, ids)
		if err != nil {
			return persistence("confirm seats", err)
		}
		if len(seats) != len(ids) {
			return fmt.Errorf("%w: %d of %d seats of event %d", ErrSeatNotFound, len(ids)-len(seats), len(ids), eventID)
		}

		now := s.clock.Now()
		for i := range seats {
			seat := &seats[i]
			if seat.Status == models.SeatSold && owner(seat) == holder {
				log.Printf("[Inventory] seat %d of event %d already SOLD to unpaid reservation %d", seat.SeatID, eventID, holder)
				return fmt.Errorf("%w: seat %d already sold", ErrInconsistentState, seat.SeatID)
			}
			if !s.policy.HeldBy(seat, holder, now) {
				return &SeatUnavailableError{EventID: eventID, SeatID: seat.SeatID, Status: s.policy.Effective(seat, now)}
			}
		}

		for i := range seats {
			sell(&seats[i], now)
			if err := s.inventory.Update(ctx, &seats[i]); err != nil {
				return persistence("confirm seats", err)
			}
		}
		metrics.SeatsSold.Add(float64(len(seats)))
		return nil
	})
}

func (s *inventoryService) SweepExpired(ctx context.Context, now time.Time) ([]SeatRef, error) {
	var released []SeatRef
	for {
		var batch []SeatRef
		err := runTx(ctx, s.tx, "sweep holds", func(ctx context.Context) error {
			seats, err := s.inventory.ListLapsedForUpdate(ctx, now, s.batch)
			if err != nil {
				return persistence("sweep holds", err)
			}
			for i := range seats {
				seat := &seats[i]
				if !s.policy.Lapsed(seat, now) {
					continue
				}
				ref := SeatRef{EventID: seat.EventID, SeatID: seat.SeatID, HeldBy: seat.HeldBy}
				release(seat, now)
				if err := s.inventory.Update(ctx, seat); err != nil {
					return persistence("sweep holds", err)
				}
				batch = append(batch, ref)
			}
			return nil
		})
		if err != nil {
			return released, err
		}

		released = append(released, batch...)
		if len(batch) < s.batch {
			break
		}
	}

	if len(released) > 0 {
		metrics.SeatReleases.WithLabelValues("expired").Add(float64(len(released)))
		log.Printf("[Inventory] released %d expired holds", len(released))
	}
	return released, nil
}

func (s *inventoryService) lock(ctx context.Context, eventID, seatID uint) (*models.EventSeat, error) {
	seat, err := s.inventory.FindForUpdate(ctx, eventID, seatID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: seat %d of event %d", ErrSeatNotFound, seatID, eventID)
	}
	if err != nil {
		return nil, persistence("lock seat", err)
	}
	return seat, nil
}
