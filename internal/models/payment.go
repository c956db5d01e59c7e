package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCard  PaymentMethod = "card"
	PaymentCash  PaymentMethod = "cash"
	PaymentTwint PaymentMethod = "twint"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentCash, PaymentTwint:
		return true
	}
	return false
}

// Payment exists once per reservation; its presence is the proof of payment.
type Payment struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	ReservationID  uint             `gorm:"not null;uniqueIndex" json:"reservation_id"`
	Total          decimal.Decimal  `gorm:"type:numeric(10,2);not null" json:"total"`
	Method         PaymentMethod    `gorm:"type:varchar(10);not null" json:"method"`
	AmountReceived *decimal.Decimal `gorm:"type:numeric(10,2)" json:"amount_received,omitempty"`
	Change         *decimal.Decimal `gorm:"type:numeric(10,2)" json:"change,omitempty"`
	Reference      string           `gorm:"type:varchar(36);not null;uniqueIndex" json:"reference"`
	CreatedAt      time.Time        `json:"created_at"`
}

type ScanTicket struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TicketID  uint      `gorm:"not null;uniqueIndex" json:"ticket_id"`
	StaffID   uint      `gorm:"not null" json:"staff_id"`
	Door      string    `gorm:"type:varchar(10);not null" json:"door"`
	ScannedAt time.Time `gorm:"not null" json:"scanned_at"`
}
