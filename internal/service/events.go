package service

import (
	"log"
	"time"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
)

const (
	RoutingReservationPaid      = "reservation.paid"
	RoutingReservationCancelled = "reservation.cancelled"
	RoutingSeatsReleased        = "seats.released"
)

// Publisher emits domain events after a transaction commits. A nil Publisher
// disables emission.
type Publisher interface {
	Publish(routingKey string, payload any) error
}

type ReservationMessage struct {
	ReservationID uint                     `json:"reservation_id"`
	EventID       uint                     `json:"event_id"`
	Status        models.ReservationStatus `json:"status"`
	SeatIDs       []uint                   `json:"seat_ids"`
	Total         string                   `json:"total,omitempty"`
	Method        models.PaymentMethod     `json:"method,omitempty"`
	Reference     string                   `json:"reference,omitempty"`
	OccurredAt    time.Time                `json:"occurred_at"`
}

type SeatsReleasedMessage struct {
	Seats      []SeatRef `json:"seats"`
	OccurredAt time.Time `json:"occurred_at"`
}

func publish(p Publisher, routingKey string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(routingKey, payload); err != nil {
		log.Printf("[Publisher] failed to publish %s: %v", routingKey, err)
	}
}

func ticketSeats(tickets []models.Ticket) []uint {
	ids := make([]uint, 0, len(tickets))
	for _, t := range tickets {
		ids = append(ids, t.SeatID)
	}
	return ids
}
