package repository

import (
	"context"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	// Create fails with ErrDuplicate when the reservation already has a payment.
	Create(ctx context.Context, payment *models.Payment) error
	FindByReservation(ctx context.Context, reservationID uint) (*models.Payment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return translate(conn(ctx, r.db).Create(payment).Error)
}

func (r *paymentRepository) FindByReservation(ctx context.Context, reservationID uint) (*models.Payment, error) {
	var payment models.Payment
	if err := conn(ctx, r.db).Where("reservation_id = ?", reservationID).First(&payment).Error; err != nil {
		return nil, translate(err)
	}
	return &payment, nil
}

type ScanRepository interface {
	FindByTicket(ctx context.Context, ticketID uint) (*models.ScanTicket, error)
	// Create fails with ErrDuplicate when the ticket was already scanned.
	Create(ctx context.Context, scan *models.ScanTicket) error
}

type scanRepository struct {
	db *gorm.DB
}

func NewScanRepository(db *gorm.DB) ScanRepository {
	return &scanRepository{db: db}
}

func (r *scanRepository) FindByTicket(ctx context.Context, ticketID uint) (*models.ScanTicket, error) {
	var scan models.ScanTicket
	if err := conn(ctx, r.db).Where("ticket_id = ?", ticketID).First(&scan).Error; err != nil {
		return nil, translate(err)
	}
	return &scan, nil
}

func (r *scanRepository) Create(ctx context.Context, scan *models.ScanTicket) error {
	return translate(conn(ctx, r.db).Create(scan).Error)
}
