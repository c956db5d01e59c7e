package handler

import (
	"net/http"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/service"
	"github.com/labstack/echo/v4"
)

type CatalogHandler struct {
	catalog   service.CatalogService
	inventory service.InventoryService
}

func NewCatalogHandler(catalog service.CatalogService, inventory service.InventoryService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, inventory: inventory}
}

func (h *CatalogHandler) RegisterRoutes(e *echo.Echo) {
	events := e.Group("/api/v1/events")
	events.GET("", h.ListEvents)
	events.GET("/:id", h.GetEvent)
	events.GET("/:id/tariffs", h.ListTariffs)
	events.GET("/:id/seats", h.ListSeats)

	e.POST("/api/v1/quotes", h.Quote)
}

func (h *CatalogHandler) ListEvents(c echo.Context) error {
	events, err := h.catalog.ListOpenEvents(c.Request().Context())
	if err != nil {
		return httpError(err)
	}

	resp := make([]dto.EventResponse, len(events))
	for i := range events {
		resp[i] = dto.ToEventResponse(&events[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) GetEvent(c echo.Context) error {
	id, err := parseID(c, "event")
	if err != nil {
		return err
	}

	event, err := h.catalog.GetEvent(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

func (h *CatalogHandler) ListTariffs(c echo.Context) error {
	id, err := parseID(c, "event")
	if err != nil {
		return err
	}

	tariffs, err := h.catalog.ListTariffs(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}

	resp := make([]dto.TariffResponse, len(tariffs))
	for i := range tariffs {
		resp[i] = dto.ToTariffResponse(&tariffs[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) ListSeats(c echo.Context) error {
	id, err := parseID(c, "event")
	if err != nil {
		return err
	}

	var status *models.SeatStatus
	if s := c.QueryParam("status"); s != "" {
		st := models.SeatStatus(s)
		if !st.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "status must be AVAILABLE, HOLD, RESERVED or SOLD")
		}
		status = &st
	}

	seats, err := h.inventory.ListSeats(c.Request().Context(), id, status)
	if err != nil {
		return httpError(err)
	}

	resp := make([]dto.SeatResponse, len(seats))
	for i := range seats {
		resp[i] = dto.ToSeatResponse(&seats[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) Quote(c echo.Context) error {
	var req dto.QuoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.EventID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "event_id is required")
	}

	quote, err := h.catalog.Quote(c.Request().Context(), req.EventID, toSelections(req.Tariffs), req.Sectors)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToQuoteResponse(quote))
}
