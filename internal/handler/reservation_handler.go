package handler

import (
	"net/http"
	"strings"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/service"
	"github.com/labstack/echo/v4"
)

type ReservationHandler struct {
	svc service.ReservationService
}

func NewReservationHandler(svc service.ReservationService) *ReservationHandler {
	return &ReservationHandler{svc: svc}
}

func (h *ReservationHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/events/:id/reservations", h.CreateReservation)

	reservations := e.Group("/api/v1/reservations")
	reservations.GET("/:id", h.GetReservation)
	reservations.DELETE("/:id", h.DeleteReservation)
	reservations.POST("/:id/tickets", h.AddTicket)
	reservations.POST("/:id/auto-assign", h.AutoAssign)
	reservations.POST("/:id/cancel", h.CancelReservation)
	reservations.GET("/:id/quote", h.Quote)
}

func (h *ReservationHandler) CreateReservation(c echo.Context) error {
	eventID, err := parseID(c, "event")
	if err != nil {
		return err
	}

	var req dto.CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Tariffs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "tariffs are required")
	}

	res, err := h.svc.Create(c.Request().Context(), service.CreateReservationInput{
		EventID:    eventID,
		ClientID:   req.ClientID,
		VendorID:   req.VendorID,
		Selections: toSelections(req.Tariffs),
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToReservationResponse(res))
}

func (h *ReservationHandler) GetReservation(c echo.Context) error {
	id, err := parseID(c, "reservation")
	if err != nil {
		return err
	}

	res, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToReservationResponse(res))
}

func (h *ReservationHandler) DeleteReservation(c echo.Context) error {
	id, err := parseID(c, "reservation")
	if err != nil {
		return err
	}

	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ReservationHandler) AddTicket(c echo.Context) error {
	id, err := parseID(c, "reservation")
	if err != nil {
		return err
	}

	var req dto.AddTicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.EventID == 0 || req.SeatID == 0 || strings.TrimSpace(req.Tariff) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "event_id, seat_id and tariff are required")
	}

	ticket, err := h.svc.AddTicket(c.Request().Context(), id, req.EventID, req.SeatID, req.Tariff)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToTicketResponse(ticket))
}

func (h *ReservationHandler) AutoAssign(c echo.Context) error {
	id, err := parseID(c, "reservation")
	if err != nil {
		return err
	}

	tickets, err := h.svc.AutoAssign(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}

	resp := make([]dto.TicketResponse, len(tickets))
	for i := range tickets {
		resp[i] = dto.ToTicketResponse(&tickets[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ReservationHandler) CancelReservation(c echo.Context) error {
	id, err := parseID(c, "reservation")
	if err != nil {
		return err
	}

	res, err := h.svc.Cancel(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToReservationResponse(res))
}

func (h *ReservationHandler) Quote(c echo.Context) error {
	id, err := parseID(c, "reservation")
	if err != nil {
		return err
	}

	quote, err := h.svc.Quote(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToQuoteResponse(quote))
}
