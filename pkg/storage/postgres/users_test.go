package postgres_test

import (
	"context"
	"testing"
	"time"

	"aimawatch/pkg/domain"
	"aimawatch/pkg/serrors"
	"aimawatch/pkg/storage"

	"github.com/stretchr/testify/require"
)

func newTestUser(id domain.UserID) domain.User {
	return domain.User{
		ID:                id,
		EmailEncrypted:    []byte{0x01, 0x02, 0x03},
		PasswordEncrypted: []byte{0x04, 0x05, 0x06},
	}
}

func TestCreateUser_AndFetch(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	stored, err := pg.CreateUser(ctx, newTestUser(100))
	require.NoError(t, err)
	require.Equal(t, domain.UserID(100), stored.ID)
	require.False(t, stored.CreatedAt.IsZero())
	require.False(t, stored.PeriodicEnabled)
	require.Empty(t, stored.LastStatus)

	got, err := pg.UserByID(ctx, 100)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, []byte{0x01, 0x02, 0x03}, got.EmailEncrypted)
	require.Equal(t, []byte{0x04, 0x05, 0x06}, got.PasswordEncrypted)
}

func TestCreateUser_Duplicate(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	_, err := pg.CreateUser(ctx, newTestUser(101))
	require.NoError(t, err)

	_, err = pg.CreateUser(ctx, newTestUser(101))
	require.ErrorIs(t, err, serrors.ErrConflict)
}

func TestUserByID_NotFound(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	got, err := pg.UserByID(context.Background(), 999)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestActiveUsers_OrderAndFilter(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	// insert out of order so the query has to sort
	for _, id := range []domain.UserID{30, 10, 20} {
		_, err := pg.CreateUser(ctx, newTestUser(id))
		require.NoError(t, err)
	}
	require.NoError(t, pg.SetPeriodic(ctx, 30, true))
	require.NoError(t, pg.SetPeriodic(ctx, 10, true))

	active, err := pg.ActiveUsers(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	require.Equal(t, domain.UserID(10), active[0].ID)
	require.Equal(t, domain.UserID(30), active[1].ID)
}

func TestUpdateStatus(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	_, err := pg.CreateUser(ctx, newTestUser(102))
	require.NoError(t, err)

	checkedAt := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, pg.UpdateStatus(ctx, 102, "Pedido em análise", checkedAt))

	got, err := pg.UserByID(ctx, 102)
	require.NoError(t, err)
	require.Equal(t, "Pedido em análise", got.LastStatus)
	require.WithinDuration(t, checkedAt, got.LastCheckedAt, time.Second)

	require.ErrorIs(t, pg.UpdateStatus(ctx, 999, "x", checkedAt), serrors.ErrNotFound)
}

func TestUpdateCredentials(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	_, err := pg.CreateUser(ctx, newTestUser(103))
	require.NoError(t, err)

	require.NoError(t, pg.UpdateCredentials(ctx, 103, []byte{0xAA}, []byte{0xBB}))

	got, err := pg.UserByID(ctx, 103)
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA}, got.EmailEncrypted)
	require.Equal(t, []byte{0xBB}, got.PasswordEncrypted)
}

func TestDeleteUser(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	_, err := pg.CreateUser(ctx, newTestUser(104))
	require.NoError(t, err)

	require.NoError(t, pg.DeleteUser(ctx, 104))

	got, err := pg.UserByID(ctx, 104)
	require.NoError(t, err)
	require.Nil(t, got)

	require.ErrorIs(t, pg.DeleteUser(ctx, 104), serrors.ErrNotFound)
}

func TestWithTx_RollbackOnError(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	sentinel := serrors.KindOnly(serrors.ErrInternal)
	err := pg.WithTx(ctx, func(tx storage.AllStorage) error {
		_, err := tx.CreateUser(ctx, newTestUser(105))
		require.NoError(t, err)

		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	got, err := pg.UserByID(ctx, 105)
	require.NoError(t, err)
	require.Nil(t, got, "rolled back insert should not be visible")
}
