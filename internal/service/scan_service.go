package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/clock"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/metrics"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/repository"
)

type ScanService interface {
	// Scan admits a paid ticket once.
	Scan(ctx context.Context, ticketID, staffID uint, door string) (*models.ScanTicket, error)
}

type scanService struct {
	repos *repository.Set
	clock clock.Clock
}

func NewScanService(repos *repository.Set, clk clock.Clock) ScanService {
	return &scanService{repos: repos, clock: clk}
}

func (s *scanService) Scan(ctx context.Context, ticketID, staffID uint, door string) (*models.ScanTicket, error) {
	door = strings.ToUpper(strings.TrimSpace(door))
	if staffID == 0 || door == "" {
		return nil, ErrInvalidScan
	}

	var scan *models.ScanTicket
	err := runTx(ctx, s.repos.Tx, "scan ticket", func(ctx context.Context) error {
		ticket, err := s.repos.Tickets.FindByID(ctx, ticketID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTicketNotFound
		}
		if err != nil {
			return persistence("load ticket", err)
		}

		// Admission needs both the paid status and the payment row.
		res, err := s.repos.Reservations.FindByID(ctx, ticket.ReservationID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTicketNotFound
		}
		if err != nil {
			return persistence("load reservation", err)
		}
		if res.Status != models.ReservationPaid {
			return fmt.Errorf("%w: reservation %d is %s", ErrTicketNotPaid, res.ID, res.Status)
		}
		if _, err := s.repos.Payments.FindByReservation(ctx, ticket.ReservationID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTicketNotPaid
			}
			return persistence("load payment", err)
		}

		previous, err := s.repos.Scans.FindByTicket(ctx, ticket.ID)
		if err == nil {
			return fmt.Errorf("%w at door %s", ErrAlreadyScanned, previous.Door)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return persistence("load scan", err)
		}

		sc := &models.ScanTicket{
			TicketID:  ticket.ID,
			StaffID:   staffID,
			Door:      door,
			ScannedAt: s.clock.Now(),
		}
		if err := s.repos.Scans.Create(ctx, sc); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAlreadyScanned
			}
			return persistence("record scan", err)
		}
		scan = sc
		return nil
	})
	metrics.TicketScans.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		return nil, err
	}
	log.Printf("[Scan] ticket %d admitted at door %s by staff %d", scan.TicketID, scan.Door, scan.StaffID)
	return scan, nil
}
