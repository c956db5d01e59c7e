package repository

import (
	"context"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReservationRepository interface {
	// Create inserts the reservation together with its lines.
	Create(ctx context.Context, reservation *models.Reservation) error
	FindByID(ctx context.Context, id uint) (*models.Reservation, error)
	// FindByIDForUpdate locks the reservation row for the rest of the transaction.
	FindByIDForUpdate(ctx context.Context, id uint) (*models.Reservation, error)
	UpdateStatus(ctx context.Context, id uint, status models.ReservationStatus) error
	Delete(ctx context.Context, id uint) error
}

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	return translate(conn(ctx, r.db).Create(reservation).Error)
}

func (r *reservationRepository) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := conn(ctx, r.db).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Tickets", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&reservation, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &reservation, nil
}

func (r *reservationRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&reservation, id).Error
	if err != nil {
		return nil, translate(err)
	}

	tx := conn(ctx, r.db)
	if err := tx.Where("reservation_id = ?", id).Order("id ASC").Find(&reservation.Lines).Error; err != nil {
		return nil, translate(err)
	}
	if err := tx.Where("reservation_id = ?", id).Order("id ASC").Find(&reservation.Tickets).Error; err != nil {
		return nil, translate(err)
	}
	return &reservation, nil
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, id uint, status models.ReservationStatus) error {
	res := conn(ctx, r.db).Model(&models.Reservation{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *reservationRepository) Delete(ctx context.Context, id uint) error {
	tx := conn(ctx, r.db)
	if err := tx.Where("reservation_id = ?", id).Delete(&models.ReservationLine{}).Error; err != nil {
		return translate(err)
	}
	res := tx.Delete(&models.Reservation{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
