package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/metrics"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/repository"
)

var (
	ErrSeatUnavailable       = errors.New("seat is no longer available, choose another")
	ErrSeatNotFound          = errors.New("seat not found for event")
	ErrInsufficientSeats     = errors.New("not enough seats available")
	ErrReservationNotFound   = errors.New("reservation not found")
	ErrReservationNotPending = errors.New("reservation is not pending")
	ErrAlreadyFinalized      = errors.New("reservation is already paid")
	ErrIncompleteReservation = errors.New("reservation does not have all its tickets yet")
	ErrQuantityExceeded      = errors.New("reservation already has all its tickets")
	ErrEventMismatch         = errors.New("event does not match the reservation")
	ErrEventNotFound         = errors.New("event not found")
	ErrEventNotOnSale        = errors.New("event is not on sale")
	ErrUnknownTariff         = errors.New("unknown tariff for this event")
	ErrInvalidQuantity       = errors.New("at least one ticket must be selected")
	ErrInvalidPaymentMethod  = errors.New("payment method must be card, cash or twint")
	ErrInsufficientCash      = errors.New("amount received is lower than the total")
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrInconsistentState     = errors.New("inventory is inconsistent with the reservation")
	ErrInvalidClient         = errors.New("a valid email, firstname and lastname are required")
	ErrTicketNotFound        = errors.New("invalid ticket")
	ErrTicketNotPaid         = errors.New("ticket is not paid")
	ErrAlreadyScanned        = errors.New("ticket already scanned")
	ErrInvalidScan           = errors.New("staff and door are required")
	ErrInvalidCatalogEvent   = errors.New("invalid catalog event")
	ErrPersistenceFailure    = errors.New("persistence failure")
)

var domainErrors = []error{
	ErrSeatUnavailable, ErrSeatNotFound, ErrInsufficientSeats, ErrReservationNotFound,
	ErrReservationNotPending, ErrAlreadyFinalized, ErrIncompleteReservation,
	ErrQuantityExceeded, ErrEventMismatch, ErrEventNotFound, ErrEventNotOnSale,
	ErrUnknownTariff, ErrInvalidQuantity, ErrInvalidPaymentMethod, ErrInsufficientCash, ErrPaymentNotFound,
	ErrInconsistentState, ErrInvalidClient, ErrTicketNotFound, ErrTicketNotPaid,
	ErrAlreadyScanned, ErrInvalidScan, ErrInvalidCatalogEvent, ErrPersistenceFailure,
}

// SeatUnavailableError reports which seat was lost and in which state it was
// found. It matches ErrSeatUnavailable with errors.Is.
type SeatUnavailableError struct {
	EventID uint
	SeatID  uint
	Status  models.SeatStatus
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("seat %d is no longer available (%s), choose another", e.SeatID, e.Status)
}

func (e *SeatUnavailableError) Is(target error) bool {
	return target == ErrSeatUnavailable
}

func persistence(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistenceFailure, err)
}

func isDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// runTx runs fn in a transaction; errors that are not part of the service
// vocabulary (begin, commit, driver) are reported as persistence failures.
func runTx(ctx context.Context, tx repository.TxManager, op string, fn func(ctx context.Context) error) error {
	err := tx.WithTx(ctx, fn)
	if err == nil || isDomainError(err) {
		return err
	}
	return persistence(op, err)
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, ErrSeatUnavailable), errors.Is(err, ErrInsufficientSeats):
		return metrics.ResultConflict
	case errors.Is(err, ErrAlreadyFinalized):
		return metrics.ResultReplay
	case errors.Is(err, ErrPersistenceFailure):
		return metrics.ResultError
	default:
		return metrics.ResultRejected
	}
}
