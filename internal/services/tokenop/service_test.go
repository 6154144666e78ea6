package tokenop

import (
	"context"
	"errors"
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

const testWallet = "0x2222222222222222222222222222222222222222"

// fakeChain records calls and returns a canned reference or error.
type fakeChain struct {
	ref   string
	err   error
	mints int
	burns int
}

func (f *fakeChain) Mint(ctx context.Context, to string, grams decimal.Decimal) (string, error) {
	f.mints++
	return f.ref, f.err
}

func (f *fakeChain) Burn(ctx context.Context, from string, grams decimal.Decimal) (string, error) {
	f.burns++
	return f.ref, f.err
}

func (f *fakeChain) Close() {}

type testEnv struct {
	db       *gorm.DB
	svc      Service
	balances balance.Service
	chain    *fakeChain
}

// newTestEnv wires the service against sqlite with a flat manual price
// of 500 per gram on both sides.
func newTestEnv(t *testing.T, chainClient *fakeChain) *testEnv {
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

	env := &testEnv{db: db, balances: balances, chain: chainClient}
	if chainClient != nil {
		env.svc = NewService(db, balances, prices, repositories.NewOperationRepository(db), audits, chainClient)
	} else {
		env.svc = NewService(db, balances, prices, repositories.NewOperationRepository(db), audits, nil)
	}
	return env
}

func (e *testEnv) fund(t *testing.T, fiat, gold decimal.Decimal) *models.User {
	t.Helper()
	ctx := context.Background()
	user, err := e.balances.EnsureUser(ctx, testWallet)
	require.NoError(t, err)
	if !fiat.IsZero() {
		_, err = e.balances.AdjustFiat(ctx, user.ID, fiat)
		require.NoError(t, err)
	}
	if !gold.IsZero() {
		_, err = e.balances.AdjustGold(ctx, user.ID, gold)
		require.NoError(t, err)
	}
	return user
}

func grams(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestBuyByGrams(t *testing.T) {
	env := newTestEnv(t, nil)
	user := env.fund(t, decimal.NewFromInt(1000), decimal.Zero)
	ctx := context.Background()

	result, err := env.svc.Buy(ctx, Request{Wallet: testWallet, Grams: grams("1")})
	require.NoError(t, err)

	assert.True(t, result.NewFiat.Equal(decimal.NewFromInt(500)), "fiat = %s", result.NewFiat)
	assert.True(t, result.NewGold.Equal(decimal.NewFromInt(1)))
	require.NotNil(t, result.Operation)
	assert.Equal(t, models.DirectionBuyMint, result.Operation.Direction)
	assert.True(t, result.Operation.UnitPrice.Equal(decimal.NewFromInt(500)))
	assert.True(t, result.Operation.FiatAmount.Equal(decimal.NewFromInt(500)))

	// Chain integration disabled: ledger stands, ref stays empty.
	assert.Empty(t, result.ChainTxRef)
	assert.NotEmpty(t, result.ChainError)

	ops, total, err := env.svc.List(ctx, testWallet, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, user.ID, ops[0].UserID)
}

func TestBuyByFiat(t *testing.T) {
	env := newTestEnv(t, nil)
	env.fund(t, decimal.NewFromInt(1000), decimal.Zero)

	fiat := decimal.NewFromInt(250)
	result, err := env.svc.Buy(context.Background(), Request{Wallet: testWallet, Fiat: &fiat})
	require.NoError(t, err)
	assert.True(t, result.Operation.Grams.Equal(decimal.RequireFromString("0.5")), "grams = %s", result.Operation.Grams)
	assert.True(t, result.NewFiat.Equal(decimal.NewFromInt(750)))
}

func TestBuyInsufficientFiatLeavesNoTrace(t *testing.T) {
	env := newTestEnv(t, nil)
	user := env.fund(t, decimal.NewFromInt(100), decimal.Zero)
	ctx := context.Background()

	_, err := env.svc.Buy(ctx, Request{Wallet: testWallet, Grams: grams("1")})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// Nothing committed: balances intact, no operation row.
	fiat, err := env.balances.GetFiat(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, fiat.Equal(decimal.NewFromInt(100)))
	gold, err := env.balances.GetGold(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, gold.IsZero())

	var count int64
	require.NoError(t, env.db.Model(&models.TokenOperation{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSellInsufficientGold(t *testing.T) {
	env := newTestEnv(t, nil)
	env.fund(t, decimal.NewFromInt(100), decimal.Zero)

	_, err := env.svc.Sell(context.Background(), Request{Wallet: testWallet, Grams: grams("1")})
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestBuySellRoundTrip(t *testing.T) {
	env := newTestEnv(t, nil)
	env.fund(t, decimal.NewFromInt(1000), decimal.Zero)
	ctx := context.Background()

	_, err := env.svc.Buy(ctx, Request{Wallet: testWallet, Grams: grams("2")})
	require.NoError(t, err)
	result, err := env.svc.Sell(ctx, Request{Wallet: testWallet, Grams: grams("2")})
	require.NoError(t, err)

	// Flat price, so a round trip restores the starting balances.
	assert.True(t, result.NewFiat.Equal(decimal.NewFromInt(1000)), "fiat = %s", result.NewFiat)
	assert.True(t, result.NewGold.IsZero())
	assert.Equal(t, models.DirectionSellBurn, result.Operation.Direction)
}

func TestAmbiguousAmount(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.svc.Buy(ctx, Request{Wallet: testWallet})
	assert.ErrorIs(t, err, ErrAmbiguousAmount)

	fiat := decimal.NewFromInt(100)
	_, err = env.svc.Buy(ctx, Request{Wallet: testWallet, Grams: grams("1"), Fiat: &fiat})
	assert.ErrorIs(t, err, ErrAmbiguousAmount)

	_, err = env.svc.Buy(ctx, Request{Wallet: testWallet, Grams: grams("-1")})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestChainRefAttachedOnSuccess(t *testing.T) {
	chainClient := &fakeChain{ref: "0xabc123"}
	env := newTestEnv(t, chainClient)
	env.fund(t, decimal.NewFromInt(1000), decimal.Zero)
	ctx := context.Background()

	result, err := env.svc.Buy(ctx, Request{Wallet: testWallet, Grams: grams("1")})
	require.NoError(t, err)
	assert.Equal(t, "0xabc123", result.ChainTxRef)
	assert.Empty(t, result.ChainError)
	assert.Equal(t, 1, chainClient.mints)

	var op models.TokenOperation
	require.NoError(t, env.db.First(&op, result.Operation.ID).Error)
	require.NotNil(t, op.ChainTxRef)
	assert.Equal(t, "0xabc123", *op.ChainTxRef)
}

func TestChainFailureKeepsLedger(t *testing.T) {
	chainClient := &fakeChain{err: errors.New("rpc timeout")}
	env := newTestEnv(t, chainClient)
	user := env.fund(t, decimal.NewFromInt(1000), decimal.Zero)
	ctx := context.Background()

	result, err := env.svc.Buy(ctx, Request{Wallet: testWallet, Grams: grams("1")})
	require.NoError(t, err)
	assert.Equal(t, "rpc timeout", result.ChainError)
	assert.Empty(t, result.ChainTxRef)

	// Ledger committed despite the failed mint.
	gold, err := env.balances.GetGold(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, gold.Equal(decimal.NewFromInt(1)))

	// And the failure is on the audit record.
	var entries []models.AuditEntry
	require.NoError(t, env.db.Where("action = ?", models.AuditActionChainCallFailed).Find(&entries).Error)
	assert.Len(t, entries, 1)
}

func TestSellBurnsOnChain(t *testing.T) {
	chainClient := &fakeChain{ref: "0xdef456"}
	env := newTestEnv(t, chainClient)
	env.fund(t, decimal.Zero, decimal.NewFromInt(3))

	result, err := env.svc.Sell(context.Background(), Request{Wallet: testWallet, Grams: grams("1")})
	require.NoError(t, err)
	assert.Equal(t, 1, chainClient.burns)
	assert.Zero(t, chainClient.mints)
	assert.Equal(t, "0xdef456", result.ChainTxRef)
}

func TestRecordOffchain(t *testing.T) {
	env := newTestEnv(t, nil)
	user := env.fund(t, decimal.NewFromInt(100), decimal.Zero)
	ctx := context.Background()

	result, err := env.svc.RecordOffchain(ctx, "admin", OffchainPurchase{
		Wallet:     testWallet,
		Grams:      decimal.NewFromInt(5),
		FiatAmount: decimal.NewFromInt(2400),
		Reference:  "invoice-77",
	})
	require.NoError(t, err)

	assert.True(t, result.NewGold.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, "invoice-77", result.ChainTxRef)
	assert.True(t, result.Operation.UnitPrice.Equal(decimal.NewFromInt(480)))

	// Settled off-platform: the fiat balance is untouched.
	fiat, err := env.balances.GetFiat(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, fiat.Equal(decimal.NewFromInt(100)))
}

func TestRecordOffchainRejectsNonPositive(t *testing.T) {
	env := newTestEnv(t, nil)

	_, err := env.svc.RecordOffchain(context.Background(), "admin", OffchainPurchase{
		Wallet: testWallet,
		Grams:  decimal.Zero,
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
