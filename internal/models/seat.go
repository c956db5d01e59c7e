package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE"
	SeatHold      SeatStatus = "HOLD"
	SeatReserved  SeatStatus = "RESERVED"
	SeatSold      SeatStatus = "SOLD"
)

func (s SeatStatus) Valid() bool {
	switch s {
	case SeatAvailable, SeatHold, SeatReserved, SeatSold:
		return true
	}
	return false
}

type Sector struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Name       string          `gorm:"not null;uniqueIndex" json:"name"`
	Supplement decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"supplement"`
}

type Seat struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	Name          string  `gorm:"not null" json:"name"`
	SectorID      uint    `gorm:"not null;index" json:"sector_id"`
	Type          string  `gorm:"not null;default:'standard'" json:"type"`
	Configuration string  `gorm:"not null;index" json:"configuration"`
	Sector        *Sector `gorm:"foreignKey:SectorID" json:"sector,omitempty"`
}

// EventSeat is the inventory record for one seat of one event.
// HoldExpiresAt is set if and only if Status is SeatHold.
type EventSeat struct {
	EventID       uint       `gorm:"primaryKey;autoIncrement:false" json:"event_id"`
	SeatID        uint       `gorm:"primaryKey;autoIncrement:false" json:"seat_id"`
	Status        SeatStatus `gorm:"type:varchar(10);not null;default:'AVAILABLE';index" json:"status"`
	HoldExpiresAt *time.Time `gorm:"index;check:(status = 'HOLD') = (hold_expires_at IS NOT NULL)" json:"hold_expires_at,omitempty"`
	HeldBy        *uint      `gorm:"index" json:"held_by,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Seat *Seat `gorm:"foreignKey:SeatID" json:"seat,omitempty"`
}
