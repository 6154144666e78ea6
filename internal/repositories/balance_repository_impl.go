package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/oureum/oureum-backend/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type balanceRepository struct {
	db *gorm.DB
}

func (r *balanceRepository) WithTx(tx *gorm.DB) BalanceRepository {
	return &balanceRepository{db: tx}
}

// locked adds a SELECT ... FOR UPDATE on dialects that support it.
// sqlite (used in tests) has no row locks; its writes serialize on the
// database file anyway.
func locked(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func (r *balanceRepository) EnsureUser(ctx context.Context, wallet string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Insert-or-ignore on the wallet uniqueness constraint, then
		// re-read: two concurrent calls converge on the same row.
		candidate := models.User{Wallet: wallet, Role: models.RoleUser}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "wallet"}},
			DoNothing: true,
		}).Create(&candidate).Error; err != nil {
			return fmt.Errorf("failed to upsert user: %w", err)
		}
		if err := tx.Where("wallet = ?", wallet).First(&user).Error; err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}
		return ensureBalanceRows(tx, user.ID)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ensureBalanceRows creates zero-valued balance rows for the user if
// they are missing. Used both on creation and as defensive repair.
func ensureBalanceRows(tx *gorm.DB, userID uint) error {
	fiat := models.FiatBalance{UserID: userID, Amount: decimal.Zero}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&fiat).Error; err != nil {
		return fmt.Errorf("failed to ensure fiat balance: %w", err)
	}
	gold := models.GoldBalance{UserID: userID, Grams: decimal.Zero}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&gold).Error; err != nil {
		return fmt.Errorf("failed to ensure gold balance: %w", err)
	}
	return nil
}

func (r *balanceRepository) GetUserByWallet(ctx context.Context, wallet string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("wallet = ?", wallet).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *balanceRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *balanceRepository) GetFiat(ctx context.Context, userID uint) (*models.FiatBalance, error) {
	var balance models.FiatBalance
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if repairErr := r.repairBalances(ctx, userID); repairErr != nil {
			return nil, repairErr
		}
		err = r.db.WithContext(ctx).Where("user_id = ?", userID).First(&balance).Error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fiat balance: %w", err)
	}
	return &balance, nil
}

func (r *balanceRepository) GetGold(ctx context.Context, userID uint) (*models.GoldBalance, error) {
	var balance models.GoldBalance
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if repairErr := r.repairBalances(ctx, userID); repairErr != nil {
			return nil, repairErr
		}
		err = r.db.WithContext(ctx).Where("user_id = ?", userID).First(&balance).Error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get gold balance: %w", err)
	}
	return &balance, nil
}

// repairBalances recreates missing balance rows for an existing user.
func (r *balanceRepository) repairBalances(ctx context.Context, userID uint) error {
	if _, err := r.GetUserByID(ctx, userID); err != nil {
		return err
	}
	return ensureBalanceRows(r.db.WithContext(ctx), userID)
}

// lockBalanceRow loads the balance row for userID under a row lock,
// creating a zero row first when the user exists but the row is missing.
func lockBalanceRow(tx *gorm.DB, userID uint, dest interface{}) error {
	err := locked(tx).Where("user_id = ?", userID).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to get user: %w", err)
		}
		if err := ensureBalanceRows(tx, userID); err != nil {
			return err
		}
		err = locked(tx).Where("user_id = ?", userID).First(dest).Error
	}
	if err != nil {
		return fmt.Errorf("failed to lock balance row: %w", err)
	}
	return nil
}

func (r *balanceRepository) AdjustFiat(ctx context.Context, userID uint, delta decimal.Decimal) (decimal.Decimal, error) {
	var updated decimal.Decimal
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var balance models.FiatBalance
		if err := lockBalanceRow(tx, userID, &balance); err != nil {
			return err
		}
		next := balance.Amount.Add(delta)
		if next.IsNegative() {
			return ErrInsufficientBalance
		}
		balance.Amount = next
		if err := tx.Save(&balance).Error; err != nil {
			return fmt.Errorf("failed to update fiat balance: %w", err)
		}
		updated = next
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return updated, nil
}

func (r *balanceRepository) AdjustGold(ctx context.Context, userID uint, delta decimal.Decimal) (decimal.Decimal, error) {
	var updated decimal.Decimal
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var balance models.GoldBalance
		if err := lockBalanceRow(tx, userID, &balance); err != nil {
			return err
		}
		next := balance.Grams.Add(delta)
		if next.IsNegative() {
			return ErrInsufficientBalance
		}
		balance.Grams = next
		if err := tx.Save(&balance).Error; err != nil {
			return fmt.Errorf("failed to update gold balance: %w", err)
		}
		updated = next
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return updated, nil
}
