package database

import (
	"fmt"
	"log"
	"time"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func NewPostgresDB(dsn string, pool PoolConfig) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	if err := Migrate(db); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}
	return db
}

// Migrate creates or updates every table of the ticketing schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Event{},
		&models.Tariff{},
		&models.Sector{},
		&models.Seat{},
		&models.EventSeat{},
		&models.Client{},
		&models.Reservation{},
		&models.ReservationLine{},
		&models.Ticket{},
		&models.Payment{},
		&models.ScanTicket{},
	); err != nil {
		return err
	}

	// Partial index: the sweeper only ever scans live holds
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_event_seats_hold_expiry
		ON event_seats (hold_expires_at)
		WHERE status = 'HOLD'
	`).Error; err != nil {
		return fmt.Errorf("create hold expiry index: %w", err)
	}
	return nil
}
