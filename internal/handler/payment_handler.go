package handler

import (
	"errors"
	"net/http"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/service"
	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	svc service.PaymentService
}

func NewPaymentHandler(svc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo) {
	reservations := e.Group("/api/v1/reservations")
	reservations.POST("/:id/payments", h.Finalize)
	reservations.GET("/:id/payment", h.GetPayment)
}

// Finalize answers 201 for a new payment and 200 with the recorded payment
// when the reservation was already paid.
func (h *PaymentHandler) Finalize(c echo.Context) error {
	id, err := parseID(c, "reservation")
	if err != nil {
		return err
	}

	var req dto.FinalizeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	payment, err := h.svc.Finalize(c.Request().Context(), service.FinalizeInput{
		ReservationID:  id,
		Method:         models.PaymentMethod(req.Method),
		AmountReceived: req.AmountReceived,
	})
	switch {
	case errors.Is(err, service.ErrAlreadyFinalized) && payment != nil:
		return c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
	case err != nil:
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToPaymentResponse(payment))
}

func (h *PaymentHandler) GetPayment(c echo.Context) error {
	id, err := parseID(c, "reservation")
	if err != nil {
		return err
	}

	payment, err := h.svc.GetPayment(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}
