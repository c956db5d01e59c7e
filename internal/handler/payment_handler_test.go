package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePayment(reservationID uint) *models.Payment {
	received := decimal.RequireFromString("200")
	change := decimal.RequireFromString("40")
	return &models.Payment{
		ID:             1,
		ReservationID:  reservationID,
		Total:          decimal.RequireFromString("160"),
		Method:         models.PaymentCash,
		AmountReceived: &received,
		Change:         &change,
		Reference:      "0b7f4c1e-3f38-4a8e-9f57-2a4f3c3f8d11",
		CreatedAt:      time.Date(2026, 3, 14, 18, 5, 0, 0, time.UTC),
	}
}

func TestFinalize_Handler_Cash(t *testing.T) {
	var got service.FinalizeInput
	svc := &mockPaymentService{
		finalizeFn: func(ctx context.Context, in service.FinalizeInput) (*models.Payment, error) {
			got = in
			return samplePayment(in.ReservationID), nil
		},
	}
	c, rec := newContext(http.MethodPost, "/api/v1/reservations/7/payments", `{"method":"cash","amount_received":"200.00"}`, "7")

	err := NewPaymentHandler(svc).Finalize(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, uint(7), got.ReservationID)
	assert.Equal(t, models.PaymentCash, got.Method)
	require.NotNil(t, got.AmountReceived)
	assert.Equal(t, "200.00", got.AmountReceived.StringFixed(2))

	var resp dto.PaymentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "160.00", resp.Total)
	require.NotNil(t, resp.Change)
	assert.Equal(t, "40.00", *resp.Change)
}

func TestFinalize_Handler_Replay(t *testing.T) {
	svc := &mockPaymentService{
		finalizeFn: func(ctx context.Context, in service.FinalizeInput) (*models.Payment, error) {
			return samplePayment(in.ReservationID), service.ErrAlreadyFinalized
		},
	}
	c, rec := newContext(http.MethodPost, "/api/v1/reservations/7/payments", `{"method":"card"}`, "7")

	err := NewPaymentHandler(svc).Finalize(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp dto.PaymentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint(1), resp.ID)
}

func TestFinalize_Handler_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"incomplete", service.ErrIncompleteReservation, http.StatusUnprocessableEntity},
		{"not enough cash", service.ErrInsufficientCash, http.StatusUnprocessableEntity},
		{"bad method", service.ErrInvalidPaymentMethod, http.StatusBadRequest},
		{"hold lapsed", &service.SeatUnavailableError{SeatID: 5, Status: models.SeatAvailable}, http.StatusConflict},
		{"cancelled", service.ErrReservationNotPending, http.StatusConflict},
		{"not found", service.ErrReservationNotFound, http.StatusNotFound},
		{"inconsistent", service.ErrInconsistentState, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockPaymentService{
				finalizeFn: func(ctx context.Context, in service.FinalizeInput) (*models.Payment, error) {
					return nil, tt.err
				},
			}
			c, _ := newContext(http.MethodPost, "/api/v1/reservations/7/payments", `{"method":"card"}`, "7")

			err := NewPaymentHandler(svc).Finalize(c)

			he, ok := err.(*echo.HTTPError)
			require.True(t, ok)
			assert.Equal(t, tt.code, he.Code)
		})
	}
}

func TestGetPayment_Handler_NotPaid(t *testing.T) {
	svc := &mockPaymentService{
		getPaymentFn: func(ctx context.Context, reservationID uint) (*models.Payment, error) {
			return nil, service.ErrPaymentNotFound
		},
	}
	c, _ := newContext(http.MethodGet, "/api/v1/reservations/7/payment", "", "7")

	err := NewPaymentHandler(svc).GetPayment(c)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}
