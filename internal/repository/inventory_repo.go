package repository

import (
	"context"
	"time"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryRepository stores per-event seat records. It performs no status
// logic of its own; callers decide transitions under the locks it hands out.
type InventoryRepository interface {
	// InitForEvent creates an AVAILABLE record for every seat of the given
	// seating configuration. Existing records are left untouched.
	InitForEvent(ctx context.Context, eventID uint, configuration string) (int64, error)
	ListByEvent(ctx context.Context, eventID uint) ([]models.EventSeat, error)
	FindForUpdate(ctx context.Context, eventID, seatID uint) (*models.EventSeat, error)
	// ListBySeats reads the given seats in seat id order without locking them.
	ListBySeats(ctx context.Context, eventID uint, seatIDs []uint) ([]models.EventSeat, error)
	// ListForUpdate locks the given seats in seat id order.
	ListForUpdate(ctx context.Context, eventID uint, seatIDs []uint) ([]models.EventSeat, error)
	// ListClaimableForUpdate locks up to limit seats that are AVAILABLE or
	// whose hold lapsed at now, skipping rows locked by other transactions.
	ListClaimableForUpdate(ctx context.Context, eventID uint, now time.Time, limit int) ([]models.EventSeat, error)
	ListLapsedForUpdate(ctx context.Context, now time.Time, limit int) ([]models.EventSeat, error)
	Update(ctx context.Context, seat *models.EventSeat) error
	SectorSupplements(ctx context.Context, eventID uint) (map[string]decimal.Decimal, error)
}

type inventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

var lockEventSeats = clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "event_seats"}}

var lockEventSeatsSkipLocked = clause.Locking{
	Strength: "UPDATE",
	Table:    clause.Table{Name: "event_seats"},
	Options:  "SKIP LOCKED",
}

func (r *inventoryRepository) InitForEvent(ctx context.Context, eventID uint, configuration string) (int64, error) {
	res := conn(ctx, r.db).Exec(`
		INSERT INTO event_seats (event_id, seat_id, status, updated_at)
		SELECT ?, s.id, ?, NOW()
		FROM seats s
		WHERE s.configuration = ?
		ON CONFLICT (event_id, seat_id) DO NOTHING
	`, eventID, models.SeatAvailable, configuration)
	return res.RowsAffected, translate(res.Error)
}

func (r *inventoryRepository) ordered(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).
		Joins("JOIN seats ON seats.id = event_seats.seat_id").
		Joins("JOIN sectors ON sectors.id = seats.sector_id").
		Preload("Seat.Sector").
		Order("sectors.name ASC, seats.name ASC")
}

func (r *inventoryRepository) ListByEvent(ctx context.Context, eventID uint) ([]models.EventSeat, error) {
	var seats []models.EventSeat
	err := r.ordered(ctx).
		Where("event_seats.event_id = ?", eventID).
		Find(&seats).Error
	return seats, translate(err)
}

func (r *inventoryRepository) FindForUpdate(ctx context.Context, eventID, seatID uint) (*models.EventSeat, error) {
	var seat models.EventSeat
	err := conn(ctx, r.db).
		Clauses(lockEventSeats).
		Preload("Seat.Sector").
		Where("event_id = ? AND seat_id = ?", eventID, seatID).
		First(&seat).Error
	if err != nil {
		return nil, translate(err)
	}
	return &seat, nil
}

func (r *inventoryRepository) ListBySeats(ctx context.Context, eventID uint, seatIDs []uint) ([]models.EventSeat, error) {
	var seats []models.EventSeat
	if len(seatIDs) == 0 {
		return seats, nil
	}
	err := conn(ctx, r.db).
		Preload("Seat.Sector").
		Where("event_id = ? AND seat_id IN ?", eventID, seatIDs).
		Order("seat_id ASC").
		Find(&seats).Error
	return seats, translate(err)
}

func (r *inventoryRepository) ListForUpdate(ctx context.Context, eventID uint, seatIDs []uint) ([]models.EventSeat, error) {
	var seats []models.EventSeat
	if len(seatIDs) == 0 {
		return seats, nil
	}
	err := conn(ctx, r.db).
		Clauses(lockEventSeats).
		Preload("Seat.Sector").
		Where("event_id = ? AND seat_id IN ?", eventID, seatIDs).
		Order("seat_id ASC").
		Find(&seats).Error
	return seats, translate(err)
}

func (r *inventoryRepository) ListClaimableForUpdate(ctx context.Context, eventID uint, now time.Time, limit int) ([]models.EventSeat, error) {
	var seats []models.EventSeat
	err := r.ordered(ctx).
		Clauses(lockEventSeatsSkipLocked).
		Where("event_seats.event_id = ?", eventID).
		Where("event_seats.status = ? OR (event_seats.status = ? AND event_seats.hold_expires_at <= ?)",
			models.SeatAvailable, models.SeatHold, now).
		Limit(limit).
		Find(&seats).Error
	return seats, translate(err)
}

func (r *inventoryRepository) ListLapsedForUpdate(ctx context.Context, now time.Time, limit int) ([]models.EventSeat, error) {
	var seats []models.EventSeat
	err := conn(ctx, r.db).
		Clauses(lockEventSeatsSkipLocked).
		Where("status = ? AND hold_expires_at <= ?", models.SeatHold, now).
		Order("hold_expires_at ASC").
		Limit(limit).
		Find(&seats).Error
	return seats, translate(err)
}

func (r *inventoryRepository) Update(ctx context.Context, seat *models.EventSeat) error {
	res := conn(ctx, r.db).
		Model(&models.EventSeat{}).
		Where("event_id = ? AND seat_id = ?", seat.EventID, seat.SeatID).
		Updates(map[string]any{
			"status":          seat.Status,
			"hold_expires_at": seat.HoldExpiresAt,
			"held_by":         seat.HeldBy,
			"updated_at":      seat.UpdatedAt,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *inventoryRepository) SectorSupplements(ctx context.Context, eventID uint) (map[string]decimal.Decimal, error) {
	var rows []struct {
		Name       string
		Supplement decimal.Decimal
	}
	err := conn(ctx, r.db).
		Table("sectors").
		Select("DISTINCT sectors.name, sectors.supplement").
		Joins("JOIN seats ON seats.sector_id = sectors.id").
		Joins("JOIN event_seats ON event_seats.seat_id = seats.id").
		Where("event_seats.event_id = ?", eventID).
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}

	supplements := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		supplements[row.Name] = row.Supplement
	}
	return supplements, nil
}
