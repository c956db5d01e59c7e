package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/clock"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/metrics"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type FinalizeInput struct {
	ReservationID  uint
	Method         models.PaymentMethod
	AmountReceived *decimal.Decimal
}

type PaymentService interface {
	// Finalize records the payment and sells every seat of the reservation
	// in one transaction. Calling it again for a paid reservation returns
	// the recorded payment together with ErrAlreadyFinalized.
	Finalize(ctx context.Context, in FinalizeInput) (*models.Payment, error)
	GetPayment(ctx context.Context, reservationID uint) (*models.Payment, error)
}

type paymentService struct {
	repos     *repository.Set
	inventory InventoryService
	publisher Publisher
	clock     clock.Clock
}

func NewPaymentService(repos *repository.Set, inventory InventoryService, publisher Publisher, clk clock.Clock) PaymentService {
	return &paymentService{
		repos:     repos,
		inventory: inventory,
		publisher: publisher,
		clock:     clk,
	}
}

func (s *paymentService) Finalize(ctx context.Context, in FinalizeInput) (*models.Payment, error) {
	if !in.Method.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, in.Method)
	}

	var (
		payment *models.Payment
		res     *models.Reservation
		replay  bool
	)
	err := runTx(ctx, s.repos.Tx, "finalize payment", func(ctx context.Context) error {
		var err error
		res, err = s.repos.Reservations.FindByIDForUpdate(ctx, in.ReservationID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReservationNotFound
		}
		if err != nil {
			return persistence("lock reservation", err)
		}

		existing, err := s.repos.Payments.FindByReservation(ctx, res.ID)
		if err == nil {
			payment, replay = existing, true
			return nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return persistence("load payment", err)
		}

		if res.Status != models.ReservationPending {
			return fmt.Errorf("%w: reservation %d is %s", ErrReservationNotPending, res.ID, res.Status)
		}
		if len(res.Tickets) == 0 || len(res.Tickets) < res.Quantity {
			return fmt.Errorf("%w: %d of %d tickets", ErrIncompleteReservation, len(res.Tickets), res.Quantity)
		}

		quote, err := quoteReservation(ctx, s.repos, res)
		if err != nil {
			return err
		}

		p := &models.Payment{
			ReservationID: res.ID,
			Total:         quote.Total,
			Method:        in.Method,
			Reference:     uuid.NewString(),
		}
		if in.Method == models.PaymentCash {
			if in.AmountReceived == nil {
				return fmt.Errorf("%w: no amount received", ErrInsufficientCash)
			}
			change, err := Change(*in.AmountReceived, quote.Total)
			if err != nil {
				return err
			}
			received := *in.AmountReceived
			p.AmountReceived = &received
			p.Change = &change
		}

		if err := s.inventory.ConfirmSold(ctx, res.EventID, ticketSeats(res.Tickets), res.ID); err != nil {
			return err
		}
		if err := s.repos.Payments.Create(ctx, p); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAlreadyFinalized
			}
			return persistence("create payment", err)
		}
		if err := s.repos.Reservations.UpdateStatus(ctx, res.ID, models.ReservationPaid); err != nil {
			return persistence("mark reservation paid", err)
		}
		res.Status = models.ReservationPaid
		payment = p
		return nil
	})
	if errors.Is(err, ErrAlreadyFinalized) && !replay {
		// Another finalize committed between our check and insert; answer with its payment.
		existing, ferr := s.repos.Payments.FindByReservation(ctx, in.ReservationID)
		if ferr != nil {
			log.Printf("[Payment] reservation %d: payment lost to a concurrent finalize but not readable: %v", in.ReservationID, ferr)
		} else {
			payment, replay = existing, true
		}
	}
	if replay {
		err = ErrAlreadyFinalized
	}
	metrics.Payments.WithLabelValues(string(in.Method), resultLabel(err)).Inc()
	if replay {
		return payment, err
	}
	if err != nil {
		log.Printf("[Payment] finalize reservation %d failed: %v", in.ReservationID, err)
		return nil, err
	}

	metrics.ReservationTransitions.WithLabelValues(string(models.ReservationPaid)).Inc()
	log.Printf("[Payment] reservation %d paid %s by %s (%s)", res.ID, payment.Total.StringFixed(2), payment.Method, payment.Reference)
	publish(s.publisher, RoutingReservationPaid, ReservationMessage{
		ReservationID: res.ID,
		EventID:       res.EventID,
		Status:        res.Status,
		SeatIDs:       ticketSeats(res.Tickets),
		Total:         payment.Total.StringFixed(2),
		Method:        payment.Method,
		Reference:     payment.Reference,
		OccurredAt:    s.clock.Now(),
	})
	return payment, nil
}

func (s *paymentService) GetPayment(ctx context.Context, reservationID uint) (*models.Payment, error) {
	p, err := s.repos.Payments.FindByReservation(ctx, reservationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, persistence("load payment", err)
	}
	return p, nil
}
