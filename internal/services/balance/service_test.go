package balance

import (
	"context"
	"testing"

	"github.com/oureum/oureum-backend/internal/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testWallet = "0x00000000000000000000000000000000deadbeef"

func newTestService(t *testing.T) Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))
	return NewService(repositories.NewBalanceRepository(db), nil)
}

func TestEnsureUserIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.EnsureUser(ctx, testWallet)
	require.NoError(t, err)
	second, err := svc.EnsureUser(ctx, testWallet)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// Wallets normalize before lookup, so case variants converge too.
	third, err := svc.EnsureUser(ctx, "0x00000000000000000000000000000000DEADBEEF")
	require.NoError(t, err)
	assert.Equal(t, first.ID, third.ID)

	fiat, err := svc.GetFiat(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, fiat.IsZero())
	gold, err := svc.GetGold(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, gold.IsZero())
}

func TestEnsureUserRejectsBadWallet(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.EnsureUser(context.Background(), "not-a-wallet")
	assert.ErrorIs(t, err, ErrInvalidWallet)
}

func TestAdjustFiat(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user, err := svc.EnsureUser(ctx, testWallet)
	require.NoError(t, err)

	updated, err := svc.AdjustFiat(ctx, user.ID, decimal.RequireFromString("100.5"))
	require.NoError(t, err)
	assert.True(t, updated.Equal(decimal.RequireFromString("100.5")))

	updated, err = svc.AdjustFiat(ctx, user.ID, decimal.RequireFromString("-0.5"))
	require.NoError(t, err)
	assert.True(t, updated.Equal(decimal.NewFromInt(100)))
}

func TestAdjustRejectsOverdraw(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user, err := svc.EnsureUser(ctx, testWallet)
	require.NoError(t, err)

	_, err = svc.AdjustFiat(ctx, user.ID, decimal.NewFromInt(10))
	require.NoError(t, err)

	_, err = svc.AdjustFiat(ctx, user.ID, decimal.NewFromInt(-11))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// A failed adjustment must leave the balance untouched.
	fiat, err := svc.GetFiat(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, fiat.Equal(decimal.NewFromInt(10)))

	_, err = svc.AdjustGold(ctx, user.ID, decimal.RequireFromString("-0.000001"))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestAdjustRejectsZeroDelta(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user, err := svc.EnsureUser(ctx, testWallet)
	require.NoError(t, err)

	_, err = svc.AdjustFiat(ctx, user.ID, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = svc.AdjustGold(ctx, user.ID, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestGetBalancesPair(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user, err := svc.EnsureUser(ctx, testWallet)
	require.NoError(t, err)

	_, err = svc.AdjustFiat(ctx, user.ID, decimal.NewFromInt(75))
	require.NoError(t, err)
	_, err = svc.AdjustGold(ctx, user.ID, decimal.RequireFromString("1.25"))
	require.NoError(t, err)

	fiat, gold, err := svc.GetBalances(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, fiat.Equal(decimal.NewFromInt(75)))
	assert.True(t, gold.Equal(decimal.RequireFromString("1.25")))
}

func TestGetBalanceUnknownUser(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetFiat(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = svc.AdjustGold(context.Background(), 9999, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrUserNotFound)
}
