package handler

import (
	"net/http"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/service"
	"github.com/labstack/echo/v4"
)

type ScanHandler struct {
	svc service.ScanService
}

func NewScanHandler(svc service.ScanService) *ScanHandler {
	return &ScanHandler{svc: svc}
}

func (h *ScanHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/tickets/:id/scans", h.Scan)
}

func (h *ScanHandler) Scan(c echo.Context) error {
	ticketID, err := parseID(c, "ticket")
	if err != nil {
		return err
	}

	var req dto.ScanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	scan, err := h.svc.Scan(c.Request().Context(), ticketID, req.StaffID, req.Door)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToScanResponse(scan))
}
