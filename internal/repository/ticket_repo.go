package repository

import (
	"context"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"gorm.io/gorm"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	FindByID(ctx context.Context, id uint) (*models.Ticket, error)
	ListByReservation(ctx context.Context, reservationID uint) ([]models.Ticket, error)
	DeleteByReservation(ctx context.Context, reservationID uint) (int64, error)
}

type ticketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	return translate(conn(ctx, r.db).Create(ticket).Error)
}

func (r *ticketRepository) FindByID(ctx context.Context, id uint) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := conn(ctx, r.db).First(&ticket, id).Error; err != nil {
		return nil, translate(err)
	}
	return &ticket, nil
}

func (r *ticketRepository) ListByReservation(ctx context.Context, reservationID uint) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := conn(ctx, r.db).Where("reservation_id = ?", reservationID).Order("id ASC").Find(&tickets).Error
	return tickets, translate(err)
}

func (r *ticketRepository) DeleteByReservation(ctx context.Context, reservationID uint) (int64, error) {
	res := conn(ctx, r.db).Where("reservation_id = ?", reservationID).Delete(&models.Ticket{})
	return res.RowsAffected, translate(res.Error)
}
