package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/dto"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, method string, err error) (*httptest.ResponseRecorder, dto.ErrorResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/api/v1/reservations/1", nil)
	rec := httptest.NewRecorder()

	ErrorHandler(err, e.NewContext(req, rec))

	var body dto.ErrorResponse
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestErrorHandler_HTTPError(t *testing.T) {
	rec, body := render(t, http.MethodPost, echo.NewHTTPError(http.StatusConflict, "seat 12 is no longer available (HOLD), choose another"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "seat 12 is no longer available (HOLD), choose another", body.Message)
}

func TestErrorHandler_NonStringMessage(t *testing.T) {
	rec, body := render(t, http.MethodGet, echo.NewHTTPError(http.StatusNotFound, map[string]int{"id": 1}))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", body.Message)
}

func TestErrorHandler_PlainErrorIsHidden(t *testing.T) {
	rec, body := render(t, http.MethodGet, errors.New("pq: connection reset"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", body.Message)
}

func TestErrorHandler_Head(t *testing.T) {
	rec, _ := render(t, http.MethodHead, echo.NewHTTPError(http.StatusNotFound, "reservation not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, rec.Body.Len())
}
