package dto

import (
	"time"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/service"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

type EventResponse struct {
	ID              uint               `json:"id"`
	Name            string             `json:"name"`
	Type            string             `json:"type"`
	StartAt         time.Time          `json:"start_at"`
	EndAt           time.Time          `json:"end_at"`
	Room            string             `json:"room"`
	NeedReservation bool               `json:"need_reservation"`
	Status          models.EventStatus `json:"status"`
}

type TariffResponse struct {
	Name            string `json:"name"`
	Price           string `json:"price"`
	DiscountPercent string `json:"discount_percent"`
	UnitPrice       string `json:"unit_price"`
}

type SeatResponse struct {
	SeatID        uint              `json:"seat_id"`
	Name          string            `json:"name"`
	Type          string            `json:"type"`
	Sector        string            `json:"sector"`
	Supplement    string            `json:"supplement"`
	Status        models.SeatStatus `json:"status"`
	HoldExpiresAt *time.Time        `json:"hold_expires_at,omitempty"`
}

type LineResponse struct {
	TariffName string `json:"tariff_name"`
	Quantity   int    `json:"quantity"`
	UnitPrice  string `json:"unit_price"`
}

type TicketResponse struct {
	ID         uint   `json:"id"`
	EventID    uint   `json:"event_id"`
	SeatID     uint   `json:"seat_id"`
	TariffName string `json:"tariff_name"`
}

type ReservationResponse struct {
	ID        uint                     `json:"id"`
	EventID   uint                     `json:"event_id"`
	ClientID  *uint                    `json:"client_id"`
	VendorID  uint                     `json:"vendor_id"`
	Status    models.ReservationStatus `json:"status"`
	Quantity  int                      `json:"quantity"`
	Lines     []LineResponse           `json:"lines"`
	Tickets   []TicketResponse         `json:"tickets"`
	CreatedAt time.Time                `json:"created_at"`
}

type QuoteResponse struct {
	Tariffs     string `json:"tariffs"`
	Supplements string `json:"supplements"`
	Total       string `json:"total"`
}

type PaymentResponse struct {
	ID             uint                 `json:"id"`
	ReservationID  uint                 `json:"reservation_id"`
	Total          string               `json:"total"`
	Method         models.PaymentMethod `json:"method"`
	AmountReceived *string              `json:"amount_received,omitempty"`
	Change         *string              `json:"change,omitempty"`
	Reference      string               `json:"reference"`
	CreatedAt      time.Time            `json:"created_at"`
}

type ClientResponse struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

type ScanResponse struct {
	ID        uint      `json:"id"`
	TicketID  uint      `json:"ticket_id"`
	StaffID   uint      `json:"staff_id"`
	Door      string    `json:"door"`
	ScannedAt time.Time `json:"scanned_at"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func optionalMoney(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := money(*d)
	return &s
}

func ToEventResponse(e *models.Event) EventResponse {
	return EventResponse{
		ID:              e.ID,
		Name:            e.Name,
		Type:            e.Type,
		StartAt:         e.StartAt,
		EndAt:           e.EndAt,
		Room:            e.Room,
		NeedReservation: e.NeedReservation,
		Status:          e.Status,
	}
}

func ToTariffResponse(t *models.Tariff) TariffResponse {
	return TariffResponse{
		Name:            t.Name,
		Price:           money(t.Price),
		DiscountPercent: t.DiscountPercent.String(),
		UnitPrice:       money(service.UnitPrice(*t)),
	}
}

func ToSeatResponse(v *service.SeatView) SeatResponse {
	return SeatResponse{
		SeatID:        v.SeatID,
		Name:          v.Name,
		Type:          v.Type,
		Sector:        v.Sector,
		Supplement:    money(v.Supplement),
		Status:        v.Status,
		HoldExpiresAt: v.HoldExpiresAt,
	}
}

func ToTicketResponse(t *models.Ticket) TicketResponse {
	return TicketResponse{
		ID:         t.ID,
		EventID:    t.EventID,
		SeatID:     t.SeatID,
		TariffName: t.TariffName,
	}
}

func ToReservationResponse(r *models.Reservation) ReservationResponse {
	resp := ReservationResponse{
		ID:        r.ID,
		EventID:   r.EventID,
		ClientID:  r.ClientID,
		VendorID:  r.VendorID,
		Status:    r.Status,
		Quantity:  r.Quantity,
		Lines:     make([]LineResponse, len(r.Lines)),
		Tickets:   make([]TicketResponse, len(r.Tickets)),
		CreatedAt: r.CreatedAt,
	}
	for i, l := range r.Lines {
		resp.Lines[i] = LineResponse{TariffName: l.TariffName, Quantity: l.Quantity, UnitPrice: money(l.UnitPrice)}
	}
	for i := range r.Tickets {
		resp.Tickets[i] = ToTicketResponse(&r.Tickets[i])
	}
	return resp
}

func ToQuoteResponse(q *service.Quote) QuoteResponse {
	return QuoteResponse{
		Tariffs:     money(q.Tariffs),
		Supplements: money(q.Supplements),
		Total:       money(q.Total),
	}
}

func ToPaymentResponse(p *models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:             p.ID,
		ReservationID:  p.ReservationID,
		Total:          money(p.Total),
		Method:         p.Method,
		AmountReceived: optionalMoney(p.AmountReceived),
		Change:         optionalMoney(p.Change),
		Reference:      p.Reference,
		CreatedAt:      p.CreatedAt,
	}
}

func ToClientResponse(c *models.Client) ClientResponse {
	return ClientResponse{
		ID:        c.ID,
		Email:     c.Email,
		Firstname: c.Firstname,
		Lastname:  c.Lastname,
	}
}

func ToScanResponse(s *models.ScanTicket) ScanResponse {
	return ScanResponse{
		ID:        s.ID,
		TicketID:  s.TicketID,
		StaffID:   s.StaffID,
		Door:      s.Door,
		ScannedAt: s.ScannedAt,
	}
}
