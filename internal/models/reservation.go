package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationPaid      ReservationStatus = "paid"
	ReservationCancelled ReservationStatus = "cancelled"
)

type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"not null;uniqueIndex" json:"email"`
	Firstname string    `gorm:"not null" json:"firstname"`
	Lastname  string    `gorm:"not null" json:"lastname"`
	CreatedAt time.Time `json:"created_at"`
}

// Reservation groups the tickets of one checkout. ClientID is nil for sales
// made at the desk by staff; VendorID records who made the sale.
type Reservation struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	EventID   uint              `gorm:"not null;index" json:"event_id"`
	ClientID  *uint             `gorm:"index" json:"client_id"`
	VendorID  uint              `gorm:"not null" json:"vendor_id"`
	Status    ReservationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Quantity  int               `gorm:"not null" json:"quantity"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`

	Lines   []ReservationLine `gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
	Tickets []Ticket          `gorm:"foreignKey:ReservationID;constraint:OnDelete:CASCADE" json:"tickets,omitempty"`
}

// ReservationLine freezes one tariff selection at creation time.
type ReservationLine struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	ReservationID uint            `gorm:"not null;index" json:"reservation_id"`
	TariffName    string          `gorm:"not null" json:"tariff_name"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price"`
}

type Ticket struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ReservationID uint      `gorm:"not null;index" json:"reservation_id"`
	EventID       uint      `gorm:"not null;index:idx_ticket_event_seat" json:"event_id"`
	SeatID        uint      `gorm:"not null;index:idx_ticket_event_seat" json:"seat_id"`
	TariffName    string    `gorm:"not null" json:"tariff_name"`
	CreatedAt     time.Time `json:"created_at"`
}
