package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/clock"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/metrics"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/repository"
)

type TariffSelection struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// OnlineVendorID attributes reservations that arrive without a vendor.
const OnlineVendorID uint = 1

type CreateReservationInput struct {
	EventID    uint
	ClientID   *uint
	// VendorID is stored as given for audit; zero means OnlineVendorID.
	VendorID   uint
	Selections []TariffSelection
}

type ReservationService interface {
	Create(ctx context.Context, in CreateReservationInput) (*models.Reservation, error)
	Get(ctx context.Context, id uint) (*models.Reservation, error)
	AddTicket(ctx context.Context, reservationID, eventID, seatID uint, tariffName string) (*models.Ticket, error)
	// AutoAssign fills every missing ticket of the reservation with seats
	// picked in sector and seat order, all or nothing.
	AutoAssign(ctx context.Context, reservationID uint) ([]models.Ticket, error)
	Cancel(ctx context.Context, reservationID uint) (*models.Reservation, error)
	Delete(ctx context.Context, reservationID uint) error
	Quote(ctx context.Context, reservationID uint) (*Quote, error)
}

type reservationService struct {
	repos     *repository.Set
	inventory InventoryService
	publisher Publisher
	clock     clock.Clock
}

func NewReservationService(repos *repository.Set, inventory InventoryService, publisher Publisher, clk clock.Clock) ReservationService {
	return &reservationService{
		repos:     repos,
		inventory: inventory,
		publisher: publisher,
		clock:     clk,
	}
}

func (s *reservationService) Create(ctx context.Context, in CreateReservationInput) (*models.Reservation, error) {
	wanted := make(map[string]int, len(in.Selections))
	for _, sel := range in.Selections {
		if sel.Quantity < 0 {
			return nil, fmt.Errorf("%w: %s has quantity %d", ErrInvalidQuantity, sel.Name, sel.Quantity)
		}
		if sel.Quantity > 0 {
			wanted[strings.TrimSpace(sel.Name)] += sel.Quantity
		}
	}
	if len(wanted) == 0 {
		return nil, ErrInvalidQuantity
	}

	var reservation *models.Reservation
	err := runTx(ctx, s.repos.Tx, "create reservation", func(ctx context.Context) error {
		event, err := s.repos.Events.FindByID(ctx, in.EventID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEventNotFound
		}
		if err != nil {
			return persistence("load event", err)
		}
		if !event.Status.Sellable() {
			return fmt.Errorf("%w: %s", ErrEventNotOnSale, event.Status)
		}

		tariffs, err := s.repos.Tariffs.ListByEvent(ctx, event.ID)
		if err != nil {
			return persistence("load tariffs", err)
		}
		known := make(map[string]bool, len(tariffs))
		for _, t := range tariffs {
			known[t.Name] = true
		}
		for name := range wanted {
			if !known[name] {
				return fmt.Errorf("%w: %q", ErrUnknownTariff, name)
			}
		}

		res := &models.Reservation{
			EventID:  event.ID,
			ClientID: in.ClientID,
			VendorID: cmp.Or(in.VendorID, OnlineVendorID),
			Status:   models.ReservationPending,
		}
		for _, t := range tariffs {
			qty, ok := wanted[t.Name]
			if !ok {
				continue
			}
			res.Quantity += qty
			res.Lines = append(res.Lines, models.ReservationLine{
				TariffName: t.Name,
				Quantity:   qty,
				UnitPrice:  UnitPrice(t),
			})
		}

		if err := s.repos.Reservations.Create(ctx, res); err != nil {
			return persistence("create reservation", err)
		}
		reservation = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ReservationTransitions.WithLabelValues(string(models.ReservationPending)).Inc()
	log.Printf("[Reservation] created reservation %d for event %d with %d tickets", reservation.ID, reservation.EventID, reservation.Quantity)
	return reservation, nil
}

func (s *reservationService) Get(ctx context.Context, id uint) (*models.Reservation, error) {
	res, err := s.repos.Reservations.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, persistence("load reservation", err)
	}
	return res, nil
}

func (s *reservationService) AddTicket(ctx context.Context, reservationID, eventID, seatID uint, tariffName string) (*models.Ticket, error) {
	var ticket *models.Ticket
	err := runTx(ctx, s.repos.Tx, "add ticket", func(ctx context.Context) error {
		res, err := s.lockPending(ctx, reservationID)
		if err != nil {
			return err
		}
		if res.EventID != eventID {
			return fmt.Errorf("%w: reservation %d is for event %d", ErrEventMismatch, res.ID, res.EventID)
		}

		line := findLine(res.Lines, tariffName)
		if line == nil {
			return fmt.Errorf("%w: %q", ErrUnknownTariff, tariffName)
		}
		if len(res.Tickets) >= res.Quantity {
			return ErrQuantityExceeded
		}
		if countTariff(res.Tickets, line.TariffName) >= line.Quantity {
			return fmt.Errorf("%w: all %d %q tickets assigned", ErrQuantityExceeded, line.Quantity, line.TariffName)
		}

		if _, err := s.inventory.TryHold(ctx, eventID, seatID, res.ID); err != nil {
			return err
		}

		t := &models.Ticket{
			ReservationID: res.ID,
			EventID:       eventID,
			SeatID:        seatID,
			TariffName:    line.TariffName,
		}
		if err := s.repos.Tickets.Create(ctx, t); err != nil {
			return persistence("create ticket", err)
		}
		ticket = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *reservationService) AutoAssign(ctx context.Context, reservationID uint) ([]models.Ticket, error) {
	var created []models.Ticket
	err := runTx(ctx, s.repos.Tx, "auto assign", func(ctx context.Context) error {
		res, err := s.lockPending(ctx, reservationID)
		if err != nil {
			return err
		}

		missing := make([]string, 0, res.Quantity)
		for _, line := range res.Lines {
			for range line.Quantity - countTariff(res.Tickets, line.TariffName) {
				missing = append(missing, line.TariffName)
			}
		}
		if len(missing) == 0 {
			return nil
		}

		seats, err := s.inventory.ClaimAny(ctx, res.EventID, len(missing), res.ID)
		if err != nil {
			return err
		}

		for i, seat := range seats {
			t := models.Ticket{
				ReservationID: res.ID,
				EventID:       res.EventID,
				SeatID:        seat.SeatID,
				TariffName:    missing[i],
			}
			if err := s.repos.Tickets.Create(ctx, &t); err != nil {
				return persistence("create ticket", err)
			}
			created = append(created, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *reservationService) Cancel(ctx context.Context, reservationID uint) (*models.Reservation, error) {
	var (
		res     *models.Reservation
		seatIDs []uint
		noop    bool
	)
	err := runTx(ctx, s.repos.Tx, "cancel reservation", func(ctx context.Context) error {
		var err error
		res, err = s.lock(ctx, reservationID)
		if err != nil {
			return err
		}
		switch res.Status {
		case models.ReservationCancelled:
			noop = true
			return nil
		case models.ReservationPaid:
			return fmt.Errorf("%w: reservation %d is paid", ErrReservationNotPending, res.ID)
		}

		seatIDs, err = s.releaseTickets(ctx, res)
		if err != nil {
			return err
		}
		if err := s.repos.Reservations.UpdateStatus(ctx, res.ID, models.ReservationCancelled); err != nil {
			return persistence("cancel reservation", err)
		}
		res.Status = models.ReservationCancelled
		res.Tickets = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	if noop {
		return res, nil
	}

	metrics.ReservationTransitions.WithLabelValues(string(models.ReservationCancelled)).Inc()
	log.Printf("[Reservation] cancelled reservation %d, released %d seats", res.ID, len(seatIDs))
	publish(s.publisher, RoutingReservationCancelled, ReservationMessage{
		ReservationID: res.ID,
		EventID:       res.EventID,
		Status:        res.Status,
		SeatIDs:       seatIDs,
		OccurredAt:    s.clock.Now(),
	})
	return res, nil
}

func (s *reservationService) Delete(ctx context.Context, reservationID uint) error {
	return runTx(ctx, s.repos.Tx, "delete reservation", func(ctx context.Context) error {
		res, err := s.lock(ctx, reservationID)
		if err != nil {
			return err
		}
		if res.Status == models.ReservationPaid {
			return fmt.Errorf("%w: reservation %d is paid", ErrReservationNotPending, res.ID)
		}
		_, err = s.repos.Payments.FindByReservation(ctx, res.ID)
		if err == nil {
			return fmt.Errorf("%w: reservation %d has a payment", ErrReservationNotPending, res.ID)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return persistence("load payment", err)
		}

		if _, err := s.releaseTickets(ctx, res); err != nil {
			return err
		}
		if err := s.repos.Reservations.Delete(ctx, res.ID); err != nil {
			return persistence("delete reservation", err)
		}
		log.Printf("[Reservation] deleted reservation %d", res.ID)
		return nil
	})
}

func (s *reservationService) Quote(ctx context.Context, reservationID uint) (*Quote, error) {
	var quote *Quote
	err := runTx(ctx, s.repos.Tx, "quote reservation", func(ctx context.Context) error {
		res, err := s.repos.Reservations.FindByID(ctx, reservationID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReservationNotFound
		}
		if err != nil {
			return persistence("load reservation", err)
		}
		quote, err = quoteReservation(ctx, s.repos, res)
		return err
	})
	return quote, err
}

// releaseTickets frees the seats this reservation still holds and deletes its
// tickets. Seats are visited in id order so concurrent releases lock alike.
func (s *reservationService) releaseTickets(ctx context.Context, res *models.Reservation) ([]uint, error) {
	tickets := slices.Clone(res.Tickets)
	slices.SortFunc(tickets, func(a, b models.Ticket) int {
		return cmp.Compare(a.SeatID, b.SeatID)
	})

	var released []uint
	for _, t := range tickets {
		ok, err := s.inventory.ReleaseHeldBy(ctx, t.EventID, t.SeatID, res.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			released = append(released, t.SeatID)
		}
	}
	if _, err := s.repos.Tickets.DeleteByReservation(ctx, res.ID); err != nil {
		return nil, persistence("delete tickets", err)
	}
	return released, nil
}

func (s *reservationService) lock(ctx context.Context, id uint) (*models.Reservation, error) {
	res, err := s.repos.Reservations.FindByIDForUpdate(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, persistence("lock reservation", err)
	}
	return res, nil
}

func (s *reservationService) lockPending(ctx context.Context, id uint) (*models.Reservation, error) {
	res, err := s.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Status != models.ReservationPending {
		return nil, fmt.Errorf("%w: reservation %d is %s", ErrReservationNotPending, res.ID, res.Status)
	}
	return res, nil
}

func findLine(lines []models.ReservationLine, name string) *models.ReservationLine {
	name = strings.TrimSpace(name)
	for i := range lines {
		if lines[i].TariffName == name {
			return &lines[i]
		}
	}
	return nil
}

func countTariff(tickets []models.Ticket, name string) int {
	n := 0
	for _, t := range tickets {
		if t.TariffName == name {
			n++
		}
	}
	return n
}
