package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/models"
	"github.com/Eursukkul/booking-microservice/ticketing-service/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededSet(t *testing.T) (*repository.Set, *Store) {
	t.Helper()
	repos, store := NewSet()
	sector := store.SeedSector("Parterre", decimal.Zero)
	store.SeedSeat("A02", sector.ID, "standard", "theatre")
	store.SeedSeat("A01", sector.ID, "standard", "theatre")
	store.SeedSeat("B01", sector.ID, "standard", "arena")

	created, err := repos.Inventory.InitForEvent(context.Background(), 7, "theatre")
	require.NoError(t, err)
	require.Equal(t, int64(2), created)
	return repos, store
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	repos, _ := seededSet(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repos.Tx.WithTx(ctx, func(ctx context.Context) error {
		seat, err := repos.Inventory.FindForUpdate(ctx, 7, 1)
		require.NoError(t, err)
		seat.Status = models.SeatSold
		require.NoError(t, repos.Inventory.Update(ctx, seat))
		require.NoError(t, repos.Clients.Create(ctx, &models.Client{Email: "a@example.com", Firstname: "A", Lastname: "B"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	seat, err := repos.Inventory.FindForUpdate(ctx, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, models.SeatAvailable, seat.Status)

	_, err = repos.Clients.FindByEmail(ctx, "a@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestWithTx_NestedCallsJoinOuter(t *testing.T) {
	repos, _ := seededSet(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repos.Tx.WithTx(ctx, func(ctx context.Context) error {
		inner := repos.Tx.WithTx(ctx, func(ctx context.Context) error {
			return repos.Clients.Create(ctx, &models.Client{Email: "n@example.com", Firstname: "N", Lastname: "M"})
		})
		require.NoError(t, inner)
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = repos.Clients.FindByEmail(ctx, "n@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	repos, _ := seededSet(t)
	ctx := context.Background()

	err := repos.Tx.WithTx(ctx, func(ctx context.Context) error {
		return repos.Clients.Create(ctx, &models.Client{Email: "c@example.com", Firstname: "C", Lastname: "D"})
	})
	require.NoError(t, err)

	client, err := repos.Clients.FindByEmail(ctx, "c@example.com")
	require.NoError(t, err)
	assert.Equal(t, uint(1), client.ID)
}

func TestWithTx_CancelledContext(t *testing.T) {
	repos, _ := seededSet(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := repos.Tx.WithTx(ctx, func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestInventory_ReadsAreCopies(t *testing.T) {
	repos, _ := seededSet(t)
	ctx := context.Background()
	expiry := time.Date(2026, 3, 14, 18, 15, 0, 0, time.UTC)
	holder := uint(42)

	seat, err := repos.Inventory.FindForUpdate(ctx, 7, 1)
	require.NoError(t, err)
	exp, by := expiry, holder
	seat.Status = models.SeatHold
	seat.HoldExpiresAt = &exp
	seat.HeldBy = &by
	require.NoError(t, repos.Inventory.Update(ctx, seat))

	// Mutating the caller's pointers must not reach the stored record.
	*seat.HoldExpiresAt = expiry.Add(time.Hour)
	*seat.HeldBy = 99

	stored, err := repos.Inventory.FindForUpdate(ctx, 7, 1)
	require.NoError(t, err)
	assert.True(t, expiry.Equal(*stored.HoldExpiresAt), "stored expiry %s", stored.HoldExpiresAt)
	assert.Equal(t, holder, *stored.HeldBy)

	// Nor must mutating a read copy.
	*stored.HoldExpiresAt = expiry.Add(2 * time.Hour)
	*stored.HeldBy = 7
	again, err := repos.Inventory.FindForUpdate(ctx, 7, 1)
	require.NoError(t, err)
	assert.True(t, expiry.Equal(*again.HoldExpiresAt))
	assert.Equal(t, holder, *again.HeldBy)
}

func TestInventory_Ordering(t *testing.T) {
	repos, _ := seededSet(t)
	ctx := context.Background()

	seats, err := repos.Inventory.ListByEvent(ctx, 7)
	require.NoError(t, err)
	require.Len(t, seats, 2)
	assert.Equal(t, "A01", seats[0].Seat.Name)
	assert.Equal(t, "A02", seats[1].Seat.Name)
	assert.Equal(t, "Parterre", seats[0].Seat.Sector.Name)

	// Re-initialising creates nothing new.
	created, err := repos.Inventory.InitForEvent(ctx, 7, "theatre")
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestInventory_LapsedAndClaimable(t *testing.T) {
	repos, _ := seededSet(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	holder := uint(1)

	seat, err := repos.Inventory.FindForUpdate(ctx, 7, 1)
	require.NoError(t, err)
	expired := at.Add(-time.Minute)
	seat.Status = models.SeatHold
	seat.HoldExpiresAt = &expired
	seat.HeldBy = &holder
	require.NoError(t, repos.Inventory.Update(ctx, seat))

	lapsed, err := repos.Inventory.ListLapsedForUpdate(ctx, at, 10)
	require.NoError(t, err)
	require.Len(t, lapsed, 1)
	assert.Equal(t, uint(1), lapsed[0].SeatID)

	claimable, err := repos.Inventory.ListClaimableForUpdate(ctx, 7, at, 1)
	require.NoError(t, err)
	assert.Len(t, claimable, 1)

	claimable, err = repos.Inventory.ListClaimableForUpdate(ctx, 7, at, 0)
	require.NoError(t, err)
	assert.Len(t, claimable, 2)
}

func TestClients_DuplicateEmail(t *testing.T) {
	repos, _ := NewSet()
	ctx := context.Background()

	require.NoError(t, repos.Clients.Create(ctx, &models.Client{Email: "dup@example.com", Firstname: "A", Lastname: "B"}))
	err := repos.Clients.Create(ctx, &models.Client{Email: "DUP@example.com", Firstname: "C", Lastname: "D"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}
