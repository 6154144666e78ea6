package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/oureum/oureum-backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrOperationNotFound  = errors.New("token operation not found")
	ErrChainRefAlreadySet = errors.New("chain transaction reference already set")
)

// OperationRepository owns the immutable token operation log.
type OperationRepository interface {
	Create(ctx context.Context, op *models.TokenOperation) error
	GetByID(ctx context.Context, id uint) (*models.TokenOperation, error)
	// AttachChainRef sets the external transaction reference exactly
	// once; a second attempt fails with ErrChainRefAlreadySet.
	AttachChainRef(ctx context.Context, id uint, ref string) error
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.TokenOperation, int64, error)
	WithTx(tx *gorm.DB) OperationRepository
}

type operationRepository struct {
	db *gorm.DB
}

func NewOperationRepository(db *gorm.DB) OperationRepository {
	return &operationRepository{db: db}
}

func (r *operationRepository) WithTx(tx *gorm.DB) OperationRepository {
	return &operationRepository{db: tx}
}

func (r *operationRepository) Create(ctx context.Context, op *models.TokenOperation) error {
	if err := r.db.WithContext(ctx).Create(op).Error; err != nil {
		return fmt.Errorf("failed to create token operation: %w", err)
	}
	return nil
}

func (r *operationRepository) GetByID(ctx context.Context, id uint) (*models.TokenOperation, error) {
	var op models.TokenOperation
	if err := r.db.WithContext(ctx).First(&op, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOperationNotFound
		}
		return nil, fmt.Errorf("failed to get token operation: %w", err)
	}
	return &op, nil
}

func (r *operationRepository) AttachChainRef(ctx context.Context, id uint, ref string) error {
	res := r.db.WithContext(ctx).
		Model(&models.TokenOperation{}).
		Where("id = ? AND chain_tx_ref IS NULL", id).
		Update("chain_tx_ref", ref)
	if res.Error != nil {
		return fmt.Errorf("failed to attach chain ref: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrChainRefAlreadySet
	}
	return nil
}

func (r *operationRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.TokenOperation, int64, error) {
	var ops []models.TokenOperation
	var total int64
	q := r.db.WithContext(ctx).Model(&models.TokenOperation{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count token operations: %w", err)
	}
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&ops).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list token operations: %w", err)
	}
	return ops, total, nil
}
