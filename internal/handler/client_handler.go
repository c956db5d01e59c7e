package handler

import (
	"net/http"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/service"
	"github.com/labstack/echo/v4"
)

type ClientHandler struct {
	svc service.ClientService
}

func NewClientHandler(svc service.ClientService) *ClientHandler {
	return &ClientHandler{svc: svc}
}

func (h *ClientHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/clients", h.LookupOrCreate)
}

func (h *ClientHandler) LookupOrCreate(c echo.Context) error {
	var req dto.ClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	client, err := h.svc.LookupOrCreate(c.Request().Context(), req.Email, req.Firstname, req.Lastname)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dto.ToClientResponse(client))
}
