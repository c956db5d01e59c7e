package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/repository"
	"github.com/shopspring/decimal"
)

type inventoryRepo struct {
	s *Store
}

// view returns a caller-owned copy of a stored record with Seat.Sector attached.
func (d *dataset) view(es models.EventSeat) models.EventSeat {
	es.HoldExpiresAt = ptrCopy(es.HoldExpiresAt)
	es.HeldBy = ptrCopy(es.HeldBy)
	if seat, ok := d.seats[es.SeatID]; ok {
		if sector, ok := d.sectors[seat.SectorID]; ok {
			seat.Sector = &sector
		}
		es.Seat = &seat
	}
	return es
}

func (d *dataset) orderedSeats(eventID uint, keep func(models.EventSeat) bool) []models.EventSeat {
	var out []models.EventSeat
	for key, es := range d.inventory {
		if key.eventID == eventID && keep(es) {
			out = append(out, d.view(es))
		}
	}
	slices.SortFunc(out, func(a, b models.EventSeat) int {
		return cmp.Or(
			cmp.Compare(sectorName(a), sectorName(b)),
			cmp.Compare(seatName(a), seatName(b)),
			cmp.Compare(a.SeatID, b.SeatID),
		)
	})
	return out
}

func sectorName(es models.EventSeat) string {
	if es.Seat == nil || es.Seat.Sector == nil {
		return ""
	}
	return es.Seat.Sector.Name
}

func seatName(es models.EventSeat) string {
	if es.Seat == nil {
		return ""
	}
	return es.Seat.Name
}

func lapsed(es models.EventSeat, at time.Time) bool {
	return es.Status == models.SeatHold && es.HoldExpiresAt != nil && !es.HoldExpiresAt.After(at)
}

func (r *inventoryRepo) InitForEvent(ctx context.Context, eventID uint, configuration string) (int64, error) {
	var created int64
	err := r.s.run(ctx, func(d *dataset) error {
		for _, seat := range d.seats {
			if seat.Configuration != configuration {
				continue
			}
			key := seatKey{eventID: eventID, seatID: seat.ID}
			if _, ok := d.inventory[key]; ok {
				continue
			}
			d.inventory[key] = models.EventSeat{
				EventID:   eventID,
				SeatID:    seat.ID,
				Status:    models.SeatAvailable,
				UpdatedAt: now(),
			}
			created++
		}
		return nil
	})
	return created, err
}

func (r *inventoryRepo) ListByEvent(ctx context.Context, eventID uint) ([]models.EventSeat, error) {
	var out []models.EventSeat
	err := r.s.run(ctx, func(d *dataset) error {
		out = d.orderedSeats(eventID, func(models.EventSeat) bool { return true })
		return nil
	})
	return out, err
}

func (r *inventoryRepo) FindForUpdate(ctx context.Context, eventID, seatID uint) (*models.EventSeat, error) {
	var out *models.EventSeat
	err := r.s.run(ctx, func(d *dataset) error {
		es, ok := d.inventory[seatKey{eventID: eventID, seatID: seatID}]
		if !ok {
			return repository.ErrNotFound
		}
		v := d.view(es)
		out = &v
		return nil
	})
	return out, err
}

// ListBySeats and ListForUpdate read alike: every transaction already holds the store mutex.
func (r *inventoryRepo) ListBySeats(ctx context.Context, eventID uint, seatIDs []uint) ([]models.EventSeat, error) {
	return r.ListForUpdate(ctx, eventID, seatIDs)
}

func (r *inventoryRepo) ListForUpdate(ctx context.Context, eventID uint, seatIDs []uint) ([]models.EventSeat, error) {
	ids := slices.Clone(seatIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	var out []models.EventSeat
	err := r.s.run(ctx, func(d *dataset) error {
		for _, id := range ids {
			if es, ok := d.inventory[seatKey{eventID: eventID, seatID: id}]; ok {
				out = append(out, d.view(es))
			}
		}
		return nil
	})
	return out, err
}

func (r *inventoryRepo) ListClaimableForUpdate(ctx context.Context, eventID uint, at time.Time, limit int) ([]models.EventSeat, error) {
	var out []models.EventSeat
	err := r.s.run(ctx, func(d *dataset) error {
		out = d.orderedSeats(eventID, func(es models.EventSeat) bool {
			return es.Status == models.SeatAvailable || lapsed(es, at)
		})
		return nil
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (r *inventoryRepo) ListLapsedForUpdate(ctx context.Context, at time.Time, limit int) ([]models.EventSeat, error) {
	var out []models.EventSeat
	err := r.s.run(ctx, func(d *dataset) error {
		for _, es := range d.inventory {
			if lapsed(es, at) {
				out = append(out, d.view(es))
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b models.EventSeat) int {
		return cmp.Or(
			a.HoldExpiresAt.Compare(*b.HoldExpiresAt),
			cmp.Compare(a.EventID, b.EventID),
			cmp.Compare(a.SeatID, b.SeatID),
		)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (r *inventoryRepo) Update(ctx context.Context, seat *models.EventSeat) error {
	return r.s.run(ctx, func(d *dataset) error {
		key := seatKey{eventID: seat.EventID, seatID: seat.SeatID}
		if _, ok := d.inventory[key]; !ok {
			return repository.ErrNotFound
		}
		d.inventory[key] = models.EventSeat{
			EventID:       seat.EventID,
			SeatID:        seat.SeatID,
			Status:        seat.Status,
			HoldExpiresAt: ptrCopy(seat.HoldExpiresAt),
			HeldBy:        ptrCopy(seat.HeldBy),
			UpdatedAt:     seat.UpdatedAt,
		}
		return nil
	})
}

func (r *inventoryRepo) SectorSupplements(ctx context.Context, eventID uint) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	err := r.s.run(ctx, func(d *dataset) error {
		for key := range d.inventory {
			if key.eventID != eventID {
				continue
			}
			seat, ok := d.seats[key.seatID]
			if !ok {
				continue
			}
			if sector, ok := d.sectors[seat.SectorID]; ok {
				out[sector.Name] = sector.Supplement
			}
		}
		return nil
	})
	return out, err
}
