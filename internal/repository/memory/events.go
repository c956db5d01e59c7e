package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/repository"
)

type eventRepo struct {
	s *Store
}

func (r *eventRepo) Upsert(ctx context.Context, event *models.Event) error {
	return r.s.run(ctx, func(d *dataset) error {
		ts := now()
		if event.ID == 0 {
			event.ID = d.next("events")
		} else {
			d.bump("events", event.ID)
		}
		if existing, ok := d.events[event.ID]; ok {
			event.CreatedAt = existing.CreatedAt
		} else if event.CreatedAt.IsZero() {
			event.CreatedAt = ts
		}
		event.UpdatedAt = ts
		d.events[event.ID] = *event
		return nil
	})
}

func (r *eventRepo) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	var out *models.Event
	err := r.s.run(ctx, func(d *dataset) error {
		event, ok := d.events[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &event
		return nil
	})
	return out, err
}

func (r *eventRepo) ListOpen(ctx context.Context, at time.Time) ([]models.Event, error) {
	var out []models.Event
	err := r.s.run(ctx, func(d *dataset) error {
		for _, event := range d.events {
			if event.Status.Sellable() && event.StartAt.After(at) {
				out = append(out, event)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b models.Event) int {
		return cmp.Or(a.StartAt.Compare(b.StartAt), cmp.Compare(a.ID, b.ID))
	})
	return out, err
}

func (r *eventRepo) UpdateStatus(ctx context.Context, id uint, status models.EventStatus) error {
	return r.s.run(ctx, func(d *dataset) error {
		event, ok := d.events[id]
		if !ok {
			return repository.ErrNotFound
		}
		event.Status = status
		event.UpdatedAt = now()
		d.events[id] = event
		return nil
	})
}

type tariffRepo struct {
	s *Store
}

func (r *tariffRepo) ReplaceForEvent(ctx context.Context, eventID uint, tariffs []models.Tariff) error {
	return r.s.run(ctx, func(d *dataset) error {
		for id, tariff := range d.tariffs {
			if tariff.EventID == eventID {
				delete(d.tariffs, id)
			}
		}
		seen := make(map[string]bool, len(tariffs))
		for _, tariff := range tariffs {
			if seen[tariff.Name] {
				return repository.ErrDuplicate
			}
			seen[tariff.Name] = true
		}
		for i := range tariffs {
			tariffs[i].ID = d.next("tariffs")
			tariffs[i].EventID = eventID
			d.tariffs[tariffs[i].ID] = tariffs[i]
		}
		return nil
	})
}

func (r *tariffRepo) ListByEvent(ctx context.Context, eventID uint) ([]models.Tariff, error) {
	var out []models.Tariff
	err := r.s.run(ctx, func(d *dataset) error {
		for _, tariff := range d.tariffs {
			if tariff.EventID == eventID {
				out = append(out, tariff)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b models.Tariff) int {
		return cmp.Or(b.Price.Cmp(a.Price), cmp.Compare(a.Name, b.Name))
	})
	return out, err
}
