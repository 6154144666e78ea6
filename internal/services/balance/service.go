// Package balance implements atomic read/adjust operations on the two
// custodial balances kept per user.
package balance

import (
	"context"
	"errors"
	"fmt"

	"github.com/oureum/oureum-backend/internal/models"
	"github.com/oureum/oureum-backend/internal/repositories"
	"github.com/oureum/oureum-backend/internal/repositories/cache"
	"github.com/oureum/oureum-backend/internal/validation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service is the balance service contract. All adjustments are atomic
// and leave no partial state visible to other callers.
type Service interface {
	// EnsureUser creates the user and both zero balances if absent.
	// Idempotent; concurrent calls with the same wallet converge on one row.
	EnsureUser(ctx context.Context, wallet string) (*models.User, error)
	GetUserByWallet(ctx context.Context, wallet string) (*models.User, error)

	GetFiat(ctx context.Context, userID uint) (decimal.Decimal, error)
	GetGold(ctx context.Context, userID uint) (decimal.Decimal, error)

	// GetBalances returns both balances, served from cache when possible.
	GetBalances(ctx context.Context, userID uint) (fiat, gold decimal.Decimal, err error)

	// AdjustFiat/AdjustGold apply a signed delta and return the new
	// value, or ErrInsufficientBalance with no state change.
	AdjustFiat(ctx context.Context, userID uint, delta decimal.Decimal) (decimal.Decimal, error)
	AdjustGold(ctx context.Context, userID uint, delta decimal.Decimal) (decimal.Decimal, error)

	// WithTx returns a copy bound to tx for composition into a wider
	// transaction scope. The cache is not written from inside a tx.
	WithTx(tx *gorm.DB) Service

	// InvalidateCache drops cached balances for the user. Composing
	// services call this after their transaction commits.
	InvalidateCache(ctx context.Context, userID uint)
}

type service struct {
	repo  repositories.BalanceRepository
	cache *cache.CacheService
	inTx  bool
}

// NewService creates a new balance service. cache may be nil.
func NewService(repo repositories.BalanceRepository, cacheService *cache.CacheService) Service {
	if repo == nil {
		panic("balance repo is required")
	}
	return &service{repo: repo, cache: cacheService}
}

func (s *service) WithTx(tx *gorm.DB) Service {
	return &service{repo: s.repo.WithTx(tx), cache: s.cache, inTx: true}
}

func (s *service) EnsureUser(ctx context.Context, wallet string) (*models.User, error) {
	normalized, err := validation.NormalizeWallet(wallet)
	if err != nil {
		return nil, ErrInvalidWallet
	}
	user, err := s.repo.EnsureUser(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}
	return user, nil
}

func (s *service) GetUserByWallet(ctx context.Context, wallet string) (*models.User, error) {
	normalized, err := validation.NormalizeWallet(wallet)
	if err != nil {
		return nil, ErrInvalidWallet
	}
	user, err := s.repo.GetUserByWallet(ctx, normalized)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *service) GetFiat(ctx context.Context, userID uint) (decimal.Decimal, error) {
	balance, err := s.repo.GetFiat(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return decimal.Zero, ErrUserNotFound
		}
		return decimal.Zero, err
	}
	return balance.Amount, nil
}

func (s *service) GetGold(ctx context.Context, userID uint) (decimal.Decimal, error) {
	balance, err := s.repo.GetGold(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return decimal.Zero, ErrUserNotFound
		}
		return decimal.Zero, err
	}
	return balance.Grams, nil
}

func (s *service) GetBalances(ctx context.Context, userID uint) (decimal.Decimal, decimal.Decimal, error) {
	if s.cache != nil && !s.inTx {
		if cached, err := s.cache.GetBalances(ctx, userID); err == nil && cached != nil {
			fiat, ferr := decimal.NewFromString(cached.Fiat)
			gold, gerr := decimal.NewFromString(cached.Grams)
			if ferr == nil && gerr == nil {
				return fiat, gold, nil
			}
		}
	}

	fiat, err := s.GetFiat(ctx, userID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	gold, err := s.GetGold(ctx, userID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	if s.cache != nil && !s.inTx {
		if err := s.cache.CacheBalances(ctx, userID, &cache.CachedBalances{
			Fiat:  fiat.String(),
			Grams: gold.String(),
		}); err != nil {
			zap.L().Warn("failed to cache balances",
				zap.Uint("user_id", userID), zap.Error(err))
		}
	}
	return fiat, gold, nil
}

func (s *service) AdjustFiat(ctx context.Context, userID uint, delta decimal.Decimal) (decimal.Decimal, error) {
	if delta.IsZero() {
		return decimal.Zero, ErrInvalidAmount
	}
	updated, err := s.repo.AdjustFiat(ctx, userID, delta)
	if err != nil {
		return decimal.Zero, mapRepoError(err)
	}
	s.invalidate(ctx, userID)
	return updated, nil
}

func (s *service) AdjustGold(ctx context.Context, userID uint, delta decimal.Decimal) (decimal.Decimal, error) {
	if delta.IsZero() {
		return decimal.Zero, ErrInvalidAmount
	}
	updated, err := s.repo.AdjustGold(ctx, userID, delta)
	if err != nil {
		return decimal.Zero, mapRepoError(err)
	}
	s.invalidate(ctx, userID)
	return updated, nil
}

// invalidate drops the cached balances after a successful write. Inside
// a composed transaction the caller invalidates after commit instead.
func (s *service) invalidate(ctx context.Context, userID uint) {
	if s.inTx {
		return
	}
	s.InvalidateCache(ctx, userID)
}

func (s *service) InvalidateCache(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateBalances(ctx, userID); err != nil {
		zap.L().Warn("failed to invalidate balance cache",
			zap.Uint("user_id", userID), zap.Error(err))
	}
}

func mapRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrInsufficientBalance):
		return ErrInsufficientBalance
	case errors.Is(err, repositories.ErrUserNotFound):
		return ErrUserNotFound
	default:
		return err
	}
}
