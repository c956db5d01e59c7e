// Package repository defines the persistence contract of the ticketing core
// and its gorm/postgres implementation. Every method takes a context; when
// the context carries a transaction opened by TxManager.WithTx the method
// runs inside it.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

const uniqueViolation = "23505"

type TxManager interface {
	// WithTx runs fn in a transaction. Nested calls join the outer transaction.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Set bundles every repository of one storage backend.
type Set struct {
	Tx           TxManager
	Events       EventRepository
	Tariffs      TariffRepository
	Inventory    InventoryRepository
	Clients      ClientRepository
	Reservations ReservationRepository
	Tickets      TicketRepository
	Payments     PaymentRepository
	Scans        ScanRepository
}

func NewGormSet(db *gorm.DB) *Set {
	return &Set{
		Tx:           NewGormTxManager(db),
		Events:       NewEventRepository(db),
		Tariffs:      NewTariffRepository(db),
		Inventory:    NewInventoryRepository(db),
		Clients:      NewClientRepository(db),
		Reservations: NewReservationRepository(db),
		Tickets:      NewTicketRepository(db),
		Payments:     NewPaymentRepository(db),
		Scans:        NewScanRepository(db),
	}
}

type txKey struct{}

type gormTxManager struct {
	db *gorm.DB
}

func NewGormTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction stored in ctx, or db bound to ctx.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}
