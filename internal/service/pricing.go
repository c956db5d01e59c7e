package service

import (
	"context"
	"fmt"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/repository"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// TariffLine is the quantity bought at one tariff and its unit price.
type TariffLine struct {
	Quantity int
	Price    decimal.Decimal
}

// SeatSector is the sector of one selected seat.
type SeatSector struct {
	Sector string
}

// Quote is the price of a reservation split into its two components.
type Quote struct {
	ReservationID uint            `json:"reservation_id"`
	Tariffs       decimal.Decimal `json:"tariffs"`
	Supplements   decimal.Decimal `json:"supplements"`
	Total         decimal.Decimal `json:"total"`
}

// UnitPrice applies the tariff discount, rounded to cents.
func UnitPrice(t models.Tariff) decimal.Decimal {
	if t.DiscountPercent.IsZero() {
		return t.Price.Round(2)
	}
	factor := hundred.Sub(t.DiscountPercent).Div(hundred)
	return t.Price.Mul(factor).Round(2)
}

// ComputeTotal is the sum of quantity times price over the tariffs plus the
// supplement of each seat's sector. Unknown sectors add nothing.
func ComputeTotal(tariffs map[string]TariffLine, seats []SeatSector, supplements map[string]decimal.Decimal) decimal.Decimal {
	return tariffTotal(tariffs).Add(supplementTotal(seats, supplements))
}

func tariffTotal(tariffs map[string]TariffLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range tariffs {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

func supplementTotal(seats []SeatSector, supplements map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, seat := range seats {
		total = total.Add(supplements[seat.Sector])
	}
	return total
}

// Change returns what to hand back for a cash payment.
func Change(received, total decimal.Decimal) (decimal.Decimal, error) {
	change := received.Sub(total)
	if change.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s received for %s", ErrInsufficientCash, received.StringFixed(2), total.StringFixed(2))
	}
	return change, nil
}

// quoteReservation prices res from its frozen lines and the sectors of its
// ticket seats. Seat sectors are static, so the seats are read without locks.
func quoteReservation(ctx context.Context, repos *repository.Set, res *models.Reservation) (*Quote, error) {
	tariffs := make(map[string]TariffLine, len(res.Lines))
	for _, line := range res.Lines {
		tariffs[line.TariffName] = TariffLine{Quantity: line.Quantity, Price: line.UnitPrice}
	}

	seatIDs := make([]uint, 0, len(res.Tickets))
	for _, t := range res.Tickets {
		seatIDs = append(seatIDs, t.SeatID)
	}
	seats, err := repos.Inventory.ListBySeats(ctx, res.EventID, seatIDs)
	if err != nil {
		return nil, persistence("load ticket seats", err)
	}
	sectorOf := make(map[uint]string, len(seats))
	supplements := make(map[string]decimal.Decimal)
	for _, es := range seats {
		if es.Seat != nil && es.Seat.Sector != nil {
			sectorOf[es.SeatID] = es.Seat.Sector.Name
			supplements[es.Seat.Sector.Name] = es.Seat.Sector.Supplement
		}
	}

	selected := make([]SeatSector, 0, len(res.Tickets))
	for _, t := range res.Tickets {
		selected = append(selected, SeatSector{Sector: sectorOf[t.SeatID]})
	}

	quote := &Quote{
		ReservationID: res.ID,
		Tariffs:       tariffTotal(tariffs),
		Supplements:   supplementTotal(selected, supplements),
	}
	quote.Total = quote.Tariffs.Add(quote.Supplements)
	return quote, nil
}
