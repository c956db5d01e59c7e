package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/clock"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/repository"
	"github.com/shopspring/decimal"
)

// CatalogEvent is an event as published by the administration service,
// together with its tariffs.
type CatalogEvent struct {
	Event   models.Event    `json:"event"`
	Tariffs []models.Tariff `json:"tariffs"`
}

type CatalogService interface {
	ListOpenEvents(ctx context.Context) ([]models.Event, error)
	GetEvent(ctx context.Context, id uint) (*models.Event, error)
	ListTariffs(ctx context.Context, eventID uint) ([]models.Tariff, error)
	SectorSupplements(ctx context.Context, eventID uint) (map[string]decimal.Decimal, error)
	NeedsSeatSelection(ctx context.Context, eventID uint) (bool, error)
	// SyncEvent upserts the event with its tariffs and creates the missing
	// inventory records of its seating configuration. It returns how many
	// inventory records were created.
	SyncEvent(ctx context.Context, in CatalogEvent) (int64, error)
	UpdateEventStatus(ctx context.Context, id uint, status models.EventStatus) error
	// Quote prices a selection before any reservation exists, one sector
	// name per chosen seat.
	Quote(ctx context.Context, eventID uint, selections []TariffSelection, sectors []string) (*Quote, error)
}

type catalogService struct {
	repos *repository.Set
	clock clock.Clock
}

func NewCatalogService(repos *repository.Set, clk clock.Clock) CatalogService {
	return &catalogService{repos: repos, clock: clk}
}

func (s *catalogService) ListOpenEvents(ctx context.Context) ([]models.Event, error) {
	events, err := s.repos.Events.ListOpen(ctx, s.clock.Now())
	if err != nil {
		return nil, persistence("list events", err)
	}
	return events, nil
}

func (s *catalogService) GetEvent(ctx context.Context, id uint) (*models.Event, error) {
	event, err := s.repos.Events.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, persistence("load event", err)
	}
	return event, nil
}

func (s *catalogService) ListTariffs(ctx context.Context, eventID uint) ([]models.Tariff, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	tariffs, err := s.repos.Tariffs.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, persistence("list tariffs", err)
	}
	return tariffs, nil
}

func (s *catalogService) SectorSupplements(ctx context.Context, eventID uint) (map[string]decimal.Decimal, error) {
	supplements, err := s.repos.Inventory.SectorSupplements(ctx, eventID)
	if err != nil {
		return nil, persistence("load supplements", err)
	}
	return supplements, nil
}

// NeedsSeatSelection reports whether buyers pick their seats on the map.
// Unknown events default to true.
func (s *catalogService) NeedsSeatSelection(ctx context.Context, eventID uint) (bool, error) {
	event, err := s.GetEvent(ctx, eventID)
	if errors.Is(err, ErrEventNotFound) {
		return true, nil
	}
	if err != nil {
		return true, err
	}
	return event.NeedReservation, nil
}

func (s *catalogService) SyncEvent(ctx context.Context, in CatalogEvent) (int64, error) {
	event := in.Event
	if event.ID == 0 {
		return 0, fmt.Errorf("%w: catalog event without id", ErrEventNotFound)
	}
	if event.Status == "" {
		event.Status = models.EventOnSale
	}
	if err := checkTariffNames(in.Tariffs); err != nil {
		return 0, fmt.Errorf("%w: event %d: %w", ErrInvalidCatalogEvent, event.ID, err)
	}

	var created int64
	err := runTx(ctx, s.repos.Tx, "sync event", func(ctx context.Context) error {
		if err := s.repos.Events.Upsert(ctx, &event); err != nil {
			return persistence("upsert event", err)
		}
		if err := s.repos.Tariffs.ReplaceForEvent(ctx, event.ID, in.Tariffs); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return fmt.Errorf("%w: event %d: %w", ErrInvalidCatalogEvent, event.ID, err)
			}
			return persistence("replace tariffs", err)
		}
		if event.SeatingConfig == "" {
			return nil
		}
		n, err := s.repos.Inventory.InitForEvent(ctx, event.ID, event.SeatingConfig)
		if err != nil {
			return persistence("init inventory", err)
		}
		created = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Printf("[Catalog] synced event %d (%s): %d tariffs, %d new seats", event.ID, event.Name, len(in.Tariffs), created)
	return created, nil
}

func (s *catalogService) UpdateEventStatus(ctx context.Context, id uint, status models.EventStatus) error {
	err := s.repos.Events.UpdateStatus(ctx, id, status)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrEventNotFound
	}
	if err != nil {
		return persistence("update event status", err)
	}
	log.Printf("[Catalog] event %d is now %s", id, status)
	return nil
}

func (s *catalogService) Quote(ctx context.Context, eventID uint, selections []TariffSelection, sectors []string) (*Quote, error) {
	tariffs, err := s.ListTariffs(ctx, eventID)
	if err != nil {
		return nil, err
	}
	prices := make(map[string]decimal.Decimal, len(tariffs))
	for _, t := range tariffs {
		prices[t.Name] = UnitPrice(t)
	}

	lines := make(map[string]TariffLine, len(selections))
	for _, sel := range selections {
		if sel.Quantity < 0 {
			return nil, fmt.Errorf("%w: %s has quantity %d", ErrInvalidQuantity, sel.Name, sel.Quantity)
		}
		price, ok := prices[sel.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTariff, sel.Name)
		}
		line := lines[sel.Name]
		line.Price = price
		line.Quantity += sel.Quantity
		lines[sel.Name] = line
	}

	supplements, err := s.SectorSupplements(ctx, eventID)
	if err != nil {
		return nil, err
	}
	seats := make([]SeatSector, 0, len(sectors))
	for _, name := range sectors {
		seats = append(seats, SeatSector{Sector: name})
	}

	quote := &Quote{
		Tariffs:     tariffTotal(lines),
		Supplements: supplementTotal(seats, supplements),
	}
	quote.Total = ComputeTotal(lines, seats, supplements)
	return quote, nil
}

// checkTariffNames rejects tariffs without a name or sharing one, since
// reservations refer to tariffs by name.
func checkTariffNames(tariffs []models.Tariff) error {
	seen := make(map[string]bool, len(tariffs))
	for _, t := range tariffs {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return errors.New("tariff without a name")
		}
		if seen[name] {
			return fmt.Errorf("tariff %q listed twice", name)
		}
		seen[name] = true
	}
	return nil
}
