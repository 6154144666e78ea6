package repositories

import (
	"context"
	"errors"

	"github.com/oureum/oureum-backend/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// BalanceRepository owns the user row and the two balance rows per user.
type BalanceRepository interface {
	// EnsureUser creates the user and both zero balances if absent.
	// Idempotent and safe under concurrent calls for the same wallet.
	EnsureUser(ctx context.Context, wallet string) (*models.User, error)
	GetUserByWallet(ctx context.Context, wallet string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)

	GetFiat(ctx context.Context, userID uint) (*models.FiatBalance, error)
	GetGold(ctx context.Context, userID uint) (*models.GoldBalance, error)

	// AdjustFiat/AdjustGold apply a signed delta under a row lock and
	// fail with ErrInsufficientBalance if the result would be negative.
	AdjustFiat(ctx context.Context, userID uint, delta decimal.Decimal) (decimal.Decimal, error)
	AdjustGold(ctx context.Context, userID uint, delta decimal.Decimal) (decimal.Decimal, error)

	// WithTx returns a copy of the repository bound to tx so callers can
	// compose balance adjustments into a wider transaction scope.
	WithTx(tx *gorm.DB) BalanceRepository
}

// NewBalanceRepository creates a gorm-backed BalanceRepository.
func NewBalanceRepository(db *gorm.DB) BalanceRepository {
	return &balanceRepository{db: db}
}
