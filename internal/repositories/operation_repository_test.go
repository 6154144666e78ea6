package repositories

import (
	"context"
	"testing"

	"github.com/oureum/oureum-backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user, err := NewBalanceRepository(db).EnsureUser(context.Background(), "0x4444444444444444444444444444444444444444")
	require.NoError(t, err)
	return user
}

func TestAttachChainRefExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewOperationRepository(db)
	user := seedUser(t, db)
	ctx := context.Background()

	op := &models.TokenOperation{
		UserID:     user.ID,
		Direction:  models.DirectionBuyMint,
		Grams:      decimal.NewFromInt(1),
		FiatAmount: decimal.NewFromInt(500),
		UnitPrice:  decimal.NewFromInt(500),
	}
	require.NoError(t, repo.Create(ctx, op))

	require.NoError(t, repo.AttachChainRef(ctx, op.ID, "0xaaa"))

	// The second attach must not overwrite the first reference.
	err := repo.AttachChainRef(ctx, op.ID, "0xbbb")
	assert.ErrorIs(t, err, ErrChainRefAlreadySet)

	stored, err := repo.GetByID(ctx, op.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ChainTxRef)
	assert.Equal(t, "0xaaa", *stored.ChainTxRef)
}

func TestAttachChainRefUnknownOperation(t *testing.T) {
	db := newTestDB(t)
	repo := NewOperationRepository(db)

	err := repo.AttachChainRef(context.Background(), 9999, "0xaaa")
	assert.ErrorIs(t, err, ErrOperationNotFound)
}

func TestListByUserNewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewOperationRepository(db)
	user := seedUser(t, db)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.Create(ctx, &models.TokenOperation{
			UserID:     user.ID,
			Direction:  models.DirectionBuyMint,
			Grams:      decimal.NewFromInt(int64(i)),
			FiatAmount: decimal.NewFromInt(int64(i) * 500),
			UnitPrice:  decimal.NewFromInt(500),
		}))
	}

	ops, total, err := repo.ListByUser(ctx, user.ID, 2, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, ops, 2)
	assert.True(t, ops[0].Grams.Equal(decimal.NewFromInt(3)))

	// Other users see nothing.
	ops, total, err = repo.ListByUser(ctx, user.ID+1, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, ops)
}
