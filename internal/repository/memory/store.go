// Package memory is an in-process implementation of the repository contract.
// Every transaction runs under one mutex against a copy of the dataset that
// replaces the committed one only when the transaction function succeeds.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/repository"
	"github.com/shopspring/decimal"
)

type seatKey struct {
	eventID uint
	seatID  uint
}

// Stored values never share pointers with callers: writes and reads both copy
// pointer fields, so the maps can be cloned shallowly.
type dataset struct {
	events       map[uint]models.Event
	tariffs      map[uint]models.Tariff
	sectors      map[uint]models.Sector
	seats        map[uint]models.Seat
	inventory    map[seatKey]models.EventSeat
	clients      map[uint]models.Client
	reservations map[uint]models.Reservation
	lines        map[uint]models.ReservationLine
	tickets      map[uint]models.Ticket
	payments     map[uint]models.Payment
	scans        map[uint]models.ScanTicket
	seq          map[string]uint
}

func newDataset() *dataset {
	return &dataset{
		events:       map[uint]models.Event{},
		tariffs:      map[uint]models.Tariff{},
		sectors:      map[uint]models.Sector{},
		seats:        map[uint]models.Seat{},
		inventory:    map[seatKey]models.EventSeat{},
		clients:      map[uint]models.Client{},
		reservations: map[uint]models.Reservation{},
		lines:        map[uint]models.ReservationLine{},
		tickets:      map[uint]models.Ticket{},
		payments:     map[uint]models.Payment{},
		scans:        map[uint]models.ScanTicket{},
		seq:          map[string]uint{},
	}
}

func (d *dataset) clone() *dataset {
	return &dataset{
		events:       maps.Clone(d.events),
		tariffs:      maps.Clone(d.tariffs),
		sectors:      maps.Clone(d.sectors),
		seats:        maps.Clone(d.seats),
		inventory:    maps.Clone(d.inventory),
		clients:      maps.Clone(d.clients),
		reservations: maps.Clone(d.reservations),
		lines:        maps.Clone(d.lines),
		tickets:      maps.Clone(d.tickets),
		payments:     maps.Clone(d.payments),
		scans:        maps.Clone(d.scans),
		seq:          maps.Clone(d.seq),
	}
}

func (d *dataset) next(table string) uint {
	d.seq[table]++
	return d.seq[table]
}

// bump keeps the sequence ahead of explicitly assigned ids.
func (d *dataset) bump(table string, id uint) {
	if id > d.seq[table] {
		d.seq[table] = id
	}
}

type Store struct {
	mu   sync.Mutex
	data *dataset
}

func NewStore() *Store {
	return &Store{data: newDataset()}
}

// NewSet returns every repository backed by one fresh Store.
func NewSet() (*repository.Set, *Store) {
	s := NewStore()
	return &repository.Set{
		Tx:           s,
		Events:       &eventRepo{s: s},
		Tariffs:      &tariffRepo{s: s},
		Inventory:    &inventoryRepo{s: s},
		Clients:      &clientRepo{s: s},
		Reservations: &reservationRepo{s: s},
		Tickets:      &ticketRepo{s: s},
		Payments:     &paymentRepo{s: s},
		Scans:        &scanRepo{s: s},
	}, s
}

type txKey struct{}

type txState struct {
	store *Store
	data  *dataset
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if st, ok := ctx.Value(txKey{}).(*txState); ok && st.store == s {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := &txState{store: s, data: s.data.clone()}
	if err := fn(context.WithValue(ctx, txKey{}, st)); err != nil {
		return err
	}
	s.data = st.data
	return nil
}

func (s *Store) run(ctx context.Context, fn func(d *dataset) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if st, ok := ctx.Value(txKey{}).(*txState); ok && st.store == s {
		return fn(st.data)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// SeedSector stores static sector reference data.
func (s *Store) SeedSector(name string, supplement decimal.Decimal) models.Sector {
	s.mu.Lock()
	defer s.mu.Unlock()
	sector := models.Sector{ID: s.data.next("sectors"), Name: name, Supplement: supplement}
	s.data.sectors[sector.ID] = sector
	return sector
}

// SeedSeat stores a seat of a seating configuration.
func (s *Store) SeedSeat(name string, sectorID uint, seatType, configuration string) models.Seat {
	s.mu.Lock()
	defer s.mu.Unlock()
	seat := models.Seat{
		ID:            s.data.next("seats"),
		Name:          name,
		SectorID:      sectorID,
		Type:          seatType,
		Configuration: configuration,
	}
	s.data.seats[seat.ID] = seat
	return seat
}

func ptrCopy[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func now() time.Time {
	return time.Now().UTC()
}
