package dto

import "github.com/shopspring/decimal"

type TariffSelectionRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type CreateReservationRequest struct {
	ClientID *uint                    `json:"client_id"`
	VendorID uint                     `json:"vendor_id"`
	Tariffs  []TariffSelectionRequest `json:"tariffs"`
}

type AddTicketRequest struct {
	EventID uint   `json:"event_id"`
	SeatID  uint   `json:"seat_id"`
	Tariff  string `json:"tariff"`
}

type FinalizeRequest struct {
	Method         string           `json:"method"`
	AmountReceived *decimal.Decimal `json:"amount_received"`
}

type QuoteRequest struct {
	EventID uint                     `json:"event_id"`
	Tariffs []TariffSelectionRequest `json:"tariffs"`
	Sectors []string                 `json:"sectors"`
}

type ClientRequest struct {
	Email     string `json:"email"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

type ScanRequest struct {
	StaffID uint   `json:"staff_id"`
	Door    string `json:"door"`
}
