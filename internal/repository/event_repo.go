package repository

import (
	"context"
	"time"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepository interface {
	Upsert(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id uint) (*models.Event, error)
	ListOpen(ctx context.Context, now time.Time) ([]models.Event, error)
	UpdateStatus(ctx context.Context, id uint, status models.EventStatus) error
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// Upsert inserts or updates on conflict (same ID as the catalog publisher).
func (r *eventRepository) Upsert(ctx context.Context, event *models.Event) error {
	return translate(conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "type", "start_at", "end_at", "room", "seating_config",
			"need_reservation", "status", "updated_at",
		}),
	}).Create(event).Error)
}

func (r *eventRepository) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	if err := conn(ctx, r.db).First(&event, id).Error; err != nil {
		return nil, translate(err)
	}
	return &event, nil
}

// ListOpen returns on-sale and on-site events that have not started yet.
func (r *eventRepository) ListOpen(ctx context.Context, now time.Time) ([]models.Event, error) {
	var events []models.Event
	err := conn(ctx, r.db).
		Where("status IN ? AND start_at > ?", []models.EventStatus{models.EventOnSale, models.EventOnSite}, now).
		Order("start_at ASC").
		Find(&events).Error
	return events, translate(err)
}

func (r *eventRepository) UpdateStatus(ctx context.Context, id uint, status models.EventStatus) error {
	res := conn(ctx, r.db).Model(&models.Event{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
