package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// --- Mock ReservationService ---

type mockReservationService struct {
	createFn     func(ctx context.Context, in service.CreateReservationInput) (*models.Reservation, error)
	getFn        func(ctx context.Context, id uint) (*models.Reservation, error)
	addTicketFn  func(ctx context.Context, reservationID, eventID, seatID uint, tariff string) (*models.Ticket, error)
	autoAssignFn func(ctx context.Context, reservationID uint) ([]models.Ticket, error)
	cancelFn     func(ctx context.Context, reservationID uint) (*models.Reservation, error)
	deleteFn     func(ctx context.Context, reservationID uint) error
	quoteFn      func(ctx context.Context, reservationID uint) (*service.Quote, error)
}

func (m *mockReservationService) Create(ctx context.Context, in service.CreateReservationInput) (*models.Reservation, error) {
	return m.createFn(ctx, in)
}
func (m *mockReservationService) Get(ctx context.Context, id uint) (*models.Reservation, error) {
	return m.getFn(ctx, id)
}
func (m *mockReservationService) AddTicket(ctx context.Context, reservationID, eventID, seatID uint, tariff string) (*models.Ticket, error) {
	return m.addTicketFn(ctx, reservationID, eventID, seatID, tariff)
}
func (m *mockReservationService) AutoAssign(ctx context.Context, reservationID uint) ([]models.Ticket, error) {
	return m.autoAssignFn(ctx, reservationID)
}
func (m *mockReservationService) Cancel(ctx context.Context, reservationID uint) (*models.Reservation, error) {
	return m.cancelFn(ctx, reservationID)
}
func (m *mockReservationService) Delete(ctx context.Context, reservationID uint) error {
	return m.deleteFn(ctx, reservationID)
}
func (m *mockReservationService) Quote(ctx context.Context, reservationID uint) (*service.Quote, error) {
	return m.quoteFn(ctx, reservationID)
}

// --- Mock PaymentService ---

type mockPaymentService struct {
	finalizeFn   func(ctx context.Context, in service.FinalizeInput) (*models.Payment, error)
	getPaymentFn func(ctx context.Context, reservationID uint) (*models.Payment, error)
}

func (m *mockPaymentService) Finalize(ctx context.Context, in service.FinalizeInput) (*models.Payment, error) {
	return m.finalizeFn(ctx, in)
}
func (m *mockPaymentService) GetPayment(ctx context.Context, reservationID uint) (*models.Payment, error) {
	return m.getPaymentFn(ctx, reservationID)
}

// --- Mock CatalogService ---

type mockCatalogService struct {
	listFn    func(ctx context.Context) ([]models.Event, error)
	getFn     func(ctx context.Context, id uint) (*models.Event, error)
	tariffsFn func(ctx context.Context, eventID uint) ([]models.Tariff, error)
	quoteFn   func(ctx context.Context, eventID uint, selections []service.TariffSelection, sectors []string) (*service.Quote, error)
}

func (m *mockCatalogService) ListOpenEvents(ctx context.Context) ([]models.Event, error) {
	return m.listFn(ctx)
}
func (m *mockCatalogService) GetEvent(ctx context.Context, id uint) (*models.Event, error) {
	return m.getFn(ctx, id)
}
func (m *mockCatalogService) ListTariffs(ctx context.Context, eventID uint) ([]models.Tariff, error) {
	return m.tariffsFn(ctx, eventID)
}
func (m *mockCatalogService) SectorSupplements(ctx context.Context, eventID uint) (map[string]decimal.Decimal, error) {
	return nil, nil
}
func (m *mockCatalogService) NeedsSeatSelection(ctx context.Context, eventID uint) (bool, error) {
	return true, nil
}
func (m *mockCatalogService) SyncEvent(ctx context.Context, in service.CatalogEvent) (int64, error) {
	return 0, nil
}
func (m *mockCatalogService) UpdateEventStatus(ctx context.Context, id uint, status models.EventStatus) error {
	return nil
}
func (m *mockCatalogService) Quote(ctx context.Context, eventID uint, selections []service.TariffSelection, sectors []string) (*service.Quote, error) {
	return m.quoteFn(ctx, eventID, selections, sectors)
}

// --- Mock InventoryService ---

type mockInventoryService struct {
	service.InventoryService
	listSeatsFn func(ctx context.Context, eventID uint, status *models.SeatStatus) ([]service.SeatView, error)
}

func (m *mockInventoryService) ListSeats(ctx context.Context, eventID uint, status *models.SeatStatus) ([]service.SeatView, error) {
	return m.listSeatsFn(ctx, eventID, status)
}

// --- Mock ClientService / ScanService ---

type mockClientService struct {
	lookupFn func(ctx context.Context, email, firstname, lastname string) (*models.Client, error)
}

func (m *mockClientService) LookupOrCreate(ctx context.Context, email, firstname, lastname string) (*models.Client, error) {
	return m.lookupFn(ctx, email, firstname, lastname)
}

type mockScanService struct {
	scanFn func(ctx context.Context, ticketID, staffID uint, door string) (*models.ScanTicket, error)
}

func (m *mockScanService) Scan(ctx context.Context, ticketID, staffID uint, door string) (*models.ScanTicket, error) {
	return m.scanFn(ctx, ticketID, staffID, door)
}

// --- Helpers ---

func newContext(method, target, body string, id string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if id != "" {
		c.SetParamNames("id")
		c.SetParamValues(id)
	}
	return c, rec
}

func samplePending(id uint) *models.Reservation {
	return &models.Reservation{
		ID:       id,
		EventID:  1,
		VendorID: 1,
		Status:   models.ReservationPending,
		Quantity: 2,
		Lines: []models.ReservationLine{
			{ID: 1, ReservationID: id, TariffName: "Normal", Quantity: 2, UnitPrice: decimal.RequireFromString("50")},
		},
		CreatedAt: time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC),
	}
}
