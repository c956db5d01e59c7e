package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/clock"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/repository"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testEventID uint = 1

var t0 = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu       sync.Mutex
	keys     []string
	payloads []any
}

func (p *recordingPublisher) Publish(routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *recordingPublisher) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

type fixture struct {
	ctx          context.Context
	repos        *repository.Set
	store        *memory.Store
	clock        *clock.Manual
	publisher    *recordingPublisher
	inventory    InventoryService
	reservations ReservationService
	payments     PaymentService
	catalog      CatalogService
	clients      ClientService
	scans        ScanService
}

// newFixture seeds one on-sale event on the "theatre" configuration: seats
// 1-10 (A01-A10) in Parterre, seats 11-12 (V01-V02) in VIP at +25.00.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	repos, store := memory.NewSet()
	clk := clock.NewManual(t0)
	pub := &recordingPublisher{}
	inventory := NewInventoryService(repos, NewHoldPolicy(DefaultHoldTTL), clk)

	f := &fixture{
		ctx:          context.Background(),
		repos:        repos,
		store:        store,
		clock:        clk,
		publisher:    pub,
		inventory:    inventory,
		reservations: NewReservationService(repos, inventory, pub, clk),
		payments:     NewPaymentService(repos, inventory, pub, clk),
		catalog:      NewCatalogService(repos, clk),
		clients:      NewClientService(repos),
		scans:        NewScanService(repos, clk),
	}

	parterre := store.SeedSector("Parterre", decimal.Zero)
	vip := store.SeedSector("VIP", decimal.RequireFromString("25.00"))
	for i := 1; i <= 10; i++ {
		store.SeedSeat(fmt.Sprintf("A%02d", i), parterre.ID, "standard", "theatre")
	}
	store.SeedSeat("V01", vip.ID, "standard", "theatre")
	store.SeedSeat("V02", vip.ID, "standard", "theatre")

	created, err := f.catalog.SyncEvent(f.ctx, CatalogEvent{
		Event: models.Event{
			ID:              testEventID,
			Name:            "La Traviata",
			Type:            "opera",
			StartAt:         t0.Add(48 * time.Hour),
			EndAt:           t0.Add(51 * time.Hour),
			Room:            "Grande salle",
			SeatingConfig:   "theatre",
			NeedReservation: true,
			Status:          models.EventOnSale,
		},
		Tariffs: []models.Tariff{
			{Name: "Normal", Price: decimal.RequireFromString("50.00")},
			{Name: "Student", Price: decimal.RequireFromString("50.00"), DiscountPercent: decimal.NewFromInt(30)},
		},
	})
	require.NoError(t, err)
	require.Equal(t, int64(12), created)
	return f
}

func (f *fixture) reserve(t *testing.T, selections ...TariffSelection) *models.Reservation {
	t.Helper()
	res, err := f.reservations.Create(f.ctx, CreateReservationInput{
		EventID:    testEventID,
		VendorID:   1,
		Selections: selections,
	})
	require.NoError(t, err)
	return res
}

func (f *fixture) seat(t *testing.T, seatID uint) models.EventSeat {
	t.Helper()
	seats, err := f.repos.Inventory.ListForUpdate(f.ctx, testEventID, []uint{seatID})
	require.NoError(t, err)
	require.Len(t, seats, 1)
	return seats[0]
}

func normal(n int) TariffSelection  { return TariffSelection{Name: "Normal", Quantity: n} }
func student(n int) TariffSelection { return TariffSelection{Name: "Student", Quantity: n} }
