package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventStatus string

const (
	EventOnSale    EventStatus = "on_sale"
	EventOnSite    EventStatus = "on_site"
	EventCancelled EventStatus = "cancelled"
	EventFinished  EventStatus = "finished"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventOnSale, EventOnSite, EventCancelled, EventFinished:
		return true
	}
	return false
}

// Sellable reports whether reservations may be opened for an event in this status.
func (s EventStatus) Sellable() bool {
	return s == EventOnSale || s == EventOnSite
}

type Event struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	Name            string      `gorm:"not null" json:"name"`
	Type            string      `gorm:"not null" json:"type"`
	StartAt         time.Time   `gorm:"not null;index" json:"start_at"`
	EndAt           time.Time   `gorm:"not null" json:"end_at"`
	Room            string      `json:"room"`
	SeatingConfig   string      `gorm:"not null" json:"seating_config"`
	NeedReservation bool        `gorm:"not null" json:"need_reservation"`
	Status          EventStatus `gorm:"type:varchar(20);not null;default:'on_sale'" json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

type Tariff struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	EventID         uint            `gorm:"not null;uniqueIndex:idx_tariff_event_name" json:"event_id"`
	Name            string          `gorm:"not null;uniqueIndex:idx_tariff_event_name" json:"name"`
	Price           decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	DiscountPercent decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"discount_percent"`
}
