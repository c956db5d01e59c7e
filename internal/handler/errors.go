package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/dto"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/service"
	"github.com/labstack/echo/v4"
)

var statusByError = []struct {
	err  error
	code int
}{
	{service.ErrReservationNotFound, http.StatusNotFound},
	{service.ErrEventNotFound, http.StatusNotFound},
	{service.ErrSeatNotFound, http.StatusNotFound},
	{service.ErrTicketNotFound, http.StatusNotFound},
	{service.ErrPaymentNotFound, http.StatusNotFound},

	{service.ErrSeatUnavailable, http.StatusConflict},
	{service.ErrInsufficientSeats, http.StatusConflict},
	{service.ErrReservationNotPending, http.StatusConflict},
	{service.ErrAlreadyFinalized, http.StatusConflict},
	{service.ErrAlreadyScanned, http.StatusConflict},
	{service.ErrQuantityExceeded, http.StatusConflict},

	{service.ErrInvalidQuantity, http.StatusBadRequest},
	{service.ErrUnknownTariff, http.StatusBadRequest},
	{service.ErrEventMismatch, http.StatusBadRequest},
	{service.ErrInvalidPaymentMethod, http.StatusBadRequest},
	{service.ErrInvalidClient, http.StatusBadRequest},
	{service.ErrInvalidScan, http.StatusBadRequest},

	{service.ErrIncompleteReservation, http.StatusUnprocessableEntity},
	{service.ErrInsufficientCash, http.StatusUnprocessableEntity},
	{service.ErrEventNotOnSale, http.StatusUnprocessableEntity},
	{service.ErrTicketNotPaid, http.StatusUnprocessableEntity},
}

// httpError maps a service error to the status the GUI acts on. Storage and
// unknown failures are logged and reported without detail.
func httpError(err error) *echo.HTTPError {
	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			return echo.NewHTTPError(m.code, err.Error())
		}
	}
	log.Printf("[Handler] internal error: %v", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error, please retry")
}

func parseID(c echo.Context, what string) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+what+" id")
	}
	return uint(id), nil
}

func toSelections(in []dto.TariffSelectionRequest) []service.TariffSelection {
	out := make([]service.TariffSelection, len(in))
	for i, s := range in {
		out[i] = service.TariffSelection{Name: s.Name, Quantity: s.Quantity}
	}
	return out
}
