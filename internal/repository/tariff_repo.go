package repository

import (
	"context"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"gorm.io/gorm"
)

type TariffRepository interface {
	ReplaceForEvent(ctx context.Context, eventID uint, tariffs []models.Tariff) error
	ListByEvent(ctx context.Context, eventID uint) ([]models.Tariff, error)
}

type tariffRepository struct {
	db *gorm.DB
}

func NewTariffRepository(db *gorm.DB) TariffRepository {
	return &tariffRepository{db: db}
}

func (r *tariffRepository) ReplaceForEvent(ctx context.Context, eventID uint, tariffs []models.Tariff) error {
	tx := conn(ctx, r.db)
	if err := tx.Where("event_id = ?", eventID).Delete(&models.Tariff{}).Error; err != nil {
		return translate(err)
	}
	if len(tariffs) == 0 {
		return nil
	}
	for i := range tariffs {
		tariffs[i].ID = 0
		tariffs[i].EventID = eventID
	}
	return translate(tx.Create(&tariffs).Error)
}

// ListByEvent returns the tariffs of an event, most expensive first.
func (r *tariffRepository) ListByEvent(ctx context.Context, eventID uint) ([]models.Tariff, error) {
	var tariffs []models.Tariff
	err := conn(ctx, r.db).
		Where("event_id = ?", eventID).
		Order("price DESC, name ASC").
		Find(&tariffs).Error
	return tariffs, translate(err)
}
