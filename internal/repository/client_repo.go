package repository

import (
	"context"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"gorm.io/gorm"
)

type ClientRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Client, error)
	Create(ctx context.Context, client *models.Client) error
}

type clientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) FindByEmail(ctx context.Context, email string) (*models.Client, error) {
	var client models.Client
	if err := conn(ctx, r.db).Where("email = ?", email).First(&client).Error; err != nil {
		return nil, translate(err)
	}
	return &client, nil
}

func (r *clientRepository) Create(ctx context.Context, client *models.Client) error {
	return translate(conn(ctx, r.db).Create(client).Error)
}
