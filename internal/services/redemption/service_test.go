package redemption

import (
	"context"
	"testing"

	"github.com/oureum/oureum-backend/internal/config"
	"github.com/oureum/oureum-backend/internal/models"
	"github.com/oureum/oureum-backend/internal/repositories"
	"github.com/oureum/oureum-backend/internal/services/audit"
	"github.com/oureum/oureum-backend/internal/services/balance"
	"github.com/oureum/oureum-backend/internal/services/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testWallet = "0x3333333333333333333333333333333333333333"

// newTestService wires the service against sqlite with a flat sell
// price of 500 per gram, a 50 bps fee and a 10 gram physical minimum.
func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))

	balances := balance.NewService(repositories.NewBalanceRepository(db), nil)
	audits := audit.NewService(repositories.NewAuditRepository(db))
	prices := pricing.NewService(repositories.NewPriceRepository(db), nil, nil, nil, config.PricingConfig{
		Mode:              config.PricingModeManual,
		ManualBasePerGram: decimal.NewFromInt(500),
	})

	svc := NewService(db, repositories.NewRedemptionRepository(db), balances, prices, audits, config.RedemptionConfig{
		FeeBps:           50,
		MinimumGoldGrams: decimal.NewFromInt(10),
	})
	return svc, db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreateCashRedemption(t *testing.T) {
	svc, _ := newTestService(t)

	req, err := svc.Create(context.Background(), testWallet, dec("2"), models.RedemptionKindCash)
	require.NoError(t, err)

	assert.Equal(t, models.RedemptionPending, req.Status)
	assert.Equal(t, models.RedemptionKindCash, req.Kind)
	assert.Equal(t, 50, req.FeeBps)
	// gross 1000, fee 0.5% = 5, payout 995
	assert.True(t, req.FeeAmount.Equal(dec("5")), "fee = %s", req.FeeAmount)
	require.NotNil(t, req.Payout)
	assert.True(t, req.Payout.Equal(dec("995")), "payout = %s", req.Payout)
	assert.Equal(t, "500", req.Detail["sell_price"])
}

func TestCreateDefaultsToCash(t *testing.T) {
	svc, _ := newTestService(t)

	req, err := svc.Create(context.Background(), testWallet, dec("1"), "")
	require.NoError(t, err)
	assert.Equal(t, models.RedemptionKindCash, req.Kind)
}

func TestGoldBelowMinimumDowngradesToCash(t *testing.T) {
	svc, _ := newTestService(t)

	req, err := svc.Create(context.Background(), testWallet, dec("5"), models.RedemptionKindGold)
	require.NoError(t, err)

	assert.Equal(t, models.RedemptionKindCash, req.Kind)
	require.NotNil(t, req.Payout)
	assert.True(t, req.Payout.IsPositive())
	assert.Nil(t, req.MinimumGrams)
}

func TestGoldAboveMinimumStaysGold(t *testing.T) {
	svc, _ := newTestService(t)

	req, err := svc.Create(context.Background(), testWallet, dec("15"), models.RedemptionKindGold)
	require.NoError(t, err)

	assert.Equal(t, models.RedemptionKindGold, req.Kind)
	assert.Nil(t, req.Payout)
	require.NotNil(t, req.MinimumGrams)
	assert.True(t, req.MinimumGrams.Equal(dec("10")))
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, testWallet, decimal.Zero, models.RedemptionKindCash)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Create(ctx, testWallet, dec("1"), "PAYPAL")
	assert.ErrorIs(t, err, ErrInvalidKind)

	_, err = svc.Create(ctx, "nope", dec("1"), models.RedemptionKindCash)
	assert.ErrorIs(t, err, balance.ErrInvalidWallet)
}

func TestTransitionHappyPath(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	req, err := svc.Create(ctx, testWallet, dec("2"), models.RedemptionKindCash)
	require.NoError(t, err)

	approved, err := svc.Transition(ctx, "admin", req.ID, models.RedemptionApproved, "looks good", nil)
	require.NoError(t, err)
	assert.Equal(t, models.RedemptionApproved, approved.Status)
	assert.Equal(t, "looks good", approved.Detail["note"])
	// Creation detail survives the merge.
	assert.Equal(t, "500", approved.Detail["sell_price"])

	completed, err := svc.Transition(ctx, "admin", req.ID, models.RedemptionCompleted, "", models.JSON{"payout_ref": "wire-9"})
	require.NoError(t, err)
	assert.Equal(t, models.RedemptionCompleted, completed.Status)
	assert.Equal(t, "wire-9", completed.Detail["payout_ref"])
}

func TestTransitionTerminalIsFinal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	req, err := svc.Create(ctx, testWallet, dec("2"), models.RedemptionKindCash)
	require.NoError(t, err)
	_, err = svc.Transition(ctx, "admin", req.ID, models.RedemptionRejected, "no", nil)
	require.NoError(t, err)

	_, err = svc.Transition(ctx, "admin", req.ID, models.RedemptionApproved, "", nil)
	assert.ErrorIs(t, err, ErrRequestFinalized)
	_, err = svc.Transition(ctx, "admin", req.ID, models.RedemptionCompleted, "", nil)
	assert.ErrorIs(t, err, ErrRequestFinalized)

	// The stored status is unchanged.
	got, err := svc.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RedemptionRejected, got.Status)
}

func TestTransitionValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	req, err := svc.Create(ctx, testWallet, dec("2"), models.RedemptionKindCash)
	require.NoError(t, err)

	_, err = svc.Transition(ctx, "admin", req.ID, "SHIPPED", "", nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	// Requests never move back to PENDING.
	_, err = svc.Transition(ctx, "admin", req.ID, models.RedemptionPending, "", nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.Transition(ctx, "admin", 9999, models.RedemptionApproved, "", nil)
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestListFiltersByStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, testWallet, dec("1"), models.RedemptionKindCash)
	require.NoError(t, err)
	_, err = svc.Create(ctx, testWallet, dec("2"), models.RedemptionKindCash)
	require.NoError(t, err)
	_, err = svc.Transition(ctx, "admin", first.ID, models.RedemptionApproved, "", nil)
	require.NoError(t, err)

	pending, total, err := svc.List(ctx, models.RedemptionPending, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, pending, 1)
	assert.NotEqual(t, first.ID, pending[0].ID)

	_, total, err = svc.List(ctx, "", 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	_, _, err = svc.List(ctx, "BOGUS", 10, 0)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
