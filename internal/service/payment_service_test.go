package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) reserveSeats(t *testing.T, seatIDs ...uint) *models.Reservation {
	t.Helper()
	r := f.reserve(t, normal(len(seatIDs)))
	for _, id := range seatIDs {
		_, err := f.reservations.AddTicket(f.ctx, r.ID, testEventID, id, "Normal")
		require.NoError(t, err)
	}
	return r
}

func TestPayment_Finalize(t *testing.T) {
	f := newFixture(t)
	r := f.reserveSeats(t, 5, 6)

	payment, err := f.payments.Finalize(f.ctx, FinalizeInput{ReservationID: r.ID, Method: models.PaymentCard})
	require.NoError(t, err)
	assert.Equal(t, r.ID, payment.ReservationID)
	assert.Equal(t, "100.00", payment.Total.StringFixed(2))
	assert.Equal(t, models.PaymentCard, payment.Method)
	assert.NotEmpty(t, payment.Reference)
	assert.Nil(t, payment.Change)

	for _, id := range []uint{5, 6} {
		assert.Equal(t, models.SeatSold, f.seat(t, id).Status)
	}
	stored, err := f.reservations.Get(f.ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationPaid, stored.Status)
	assert.Equal(t, []string{RoutingReservationPaid}, f.publisher.Keys())

	again, err := f.payments.Finalize(f.ctx, FinalizeInput{ReservationID: r.ID, Method: models.PaymentCard})
	require.ErrorIs(t, err, ErrAlreadyFinalized)
	assert.Equal(t, payment.ID, again.ID)
	assert.Equal(t, payment.Reference, again.Reference)
	assert.Len(t, f.publisher.Keys(), 1)

	recorded, err := f.payments.GetPayment(f.ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.ID, recorded.ID)
}

func TestPayment_Finalize_Concurrent(t *testing.T) {
	f := newFixture(t)
	r := f.reserveSeats(t, 1, 2, 3)

	const callers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		replayed int
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.payments.Finalize(f.ctx, FinalizeInput{ReservationID: r.ID, Method: models.PaymentTwint})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case assert.ErrorIs(t, err, ErrAlreadyFinalized):
				replayed++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, callers-1, replayed)
	assert.Len(t, f.publisher.Keys(), 1)
}

func TestPayment_Finalize_Cash(t *testing.T) {
	f := newFixture(t)
	r := f.reserve(t, normal(2), student(1))
	for _, pick := range []struct {
		seat   uint
		tariff string
	}{{1, "Normal"}, {2, "Normal"}, {12, "Student"}} {
		_, err := f.reservations.AddTicket(f.ctx, r.ID, testEventID, pick.seat, pick.tariff)
		require.NoError(t, err)
	}

	short := dec("150.00")
	_, err := f.payments.Finalize(f.ctx, FinalizeInput{ReservationID: r.ID, Method: models.PaymentCash, AmountReceived: &short})
	require.ErrorIs(t, err, ErrInsufficientCash)
	assert.Equal(t, models.SeatHold, f.seat(t, 12).Status)

	_, err = f.payments.Finalize(f.ctx, FinalizeInput{ReservationID: r.ID, Method: models.PaymentCash})
	require.ErrorIs(t, err, ErrInsufficientCash)

	received := dec("200.00")
	payment, err := f.payments.Finalize(f.ctx, FinalizeInput{ReservationID: r.ID, Method: models.PaymentCash, AmountReceived: &received})
	require.NoError(t, err)
	assert.Equal(t, "160.00", payment.Total.StringFixed(2))
	assert.Equal(t, "200.00", payment.AmountReceived.StringFixed(2))
	assert.Equal(t, "40.00", payment.Change.StringFixed(2))
}

func TestPayment_Finalize_Rejections(t *testing.T) {
	f := newFixture(t)

	_, err := f.payments.Finalize(f.ctx, FinalizeInput{ReservationID: 1, Method: "bitcoin"})
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)

	_, err = f.payments.Finalize(f.ctx, FinalizeInput{ReservationID: 999, Method: models.PaymentCard})
	assert.ErrorIs(t, err, ErrReservationNotFound)

	empty := f.reserve(t, normal(1))
	_, err = f.payments.Finalize(f.ctx, FinalizeInput{ReservationID: empty.ID, Method: models.PaymentCard})
	assert.ErrorIs(t, err, ErrIncompleteReservation)

	partial := f.reserve(t, normal(2))
	_, err = f.reservations.AddTicket(f.ctx, partial.ID, testEventID, 3, "Normal")
	require.NoError(t, err)
	_, err = f.payments.Finalize(f.ctx, FinalizeInput{ReservationID: partial.ID, Method: models.PaymentCard})
	assert.ErrorIs(t, err, ErrIncompleteReservation)
	assert.Equal(t, models.SeatHold, f.seat(t, 3).Status)

	cancelled := f.reserveSeats(t, 4)
	_, err = f.reservations.Cancel(f.ctx, cancelled.ID)
	require.NoError(t, err)
	_, err = f.payments.Finalize(f.ctx, FinalizeInput{ReservationID: cancelled.ID, Method: models.PaymentCard})
	assert.ErrorIs(t, err, ErrReservationNotPending)

	_, err = f.payments.GetPayment(f.ctx, partial.ID)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestPayment_Finalize_LapsedHold(t *testing.T) {
	f := newFixture(t)
	r := f.reserveSeats(t, 5, 6)

	f.clock.Advance(DefaultHoldTTL + time.Second)
	other := f.reserveSeats(t, 6)

	_, err := f.payments.Finalize(f.ctx, FinalizeInput{ReservationID: r.ID, Method: models.PaymentCard})
	require.ErrorIs(t, err, ErrSeatUnavailable)

	assert.Equal(t, models.SeatHold, f.seat(t, 5).Status)
	assert.Equal(t, other.ID, *f.seat(t, 6).HeldBy)
	_, err = f.payments.GetPayment(f.ctx, r.ID)
	assert.ErrorIs(t, err, ErrPaymentNotFound)

	stored, err := f.reservations.Get(f.ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationPending, stored.Status)
}

// racedPayments behaves as if another finalize committed its payment between
// the existence check and the insert.
type racedPayments struct {
	repository.PaymentRepository
	winner *models.Payment
}

func (r *racedPayments) Create(_ context.Context, p *models.Payment) error {
	w := *p
	w.ID, w.Reference = 77, "committed-elsewhere"
	r.winner = &w
	return repository.ErrDuplicate
}

func (r *racedPayments) FindByReservation(ctx context.Context, reservationID uint) (*models.Payment, error) {
	if r.winner != nil && r.winner.ReservationID == reservationID {
		w := *r.winner
		return &w, nil
	}
	return r.PaymentRepository.FindByReservation(ctx, reservationID)
}

func TestPayment_Finalize_DuplicateInsertReturnsCommittedPayment(t *testing.T) {
	f := newFixture(t)
	r := f.reserveSeats(t, 4)

	repos := *f.repos
	repos.Payments = &racedPayments{PaymentRepository: f.repos.Payments}
	svc := NewPaymentService(&repos, f.inventory, f.publisher, f.clock)

	payment, err := svc.Finalize(f.ctx, FinalizeInput{ReservationID: r.ID, Method: models.PaymentCard})
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
	require.NotNil(t, payment)
	assert.Equal(t, uint(77), payment.ID)
	assert.Equal(t, "committed-elsewhere", payment.Reference)
	assert.Empty(t, f.publisher.Keys())
}
