package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/oureum/oureum-backend/internal/models"
	"gorm.io/gorm"
)

var ErrRedemptionNotFound = errors.New("redemption request not found")

// RedemptionRepository owns redemption request rows.
type RedemptionRepository interface {
	Create(ctx context.Context, req *models.RedemptionRequest) error
	GetByID(ctx context.Context, id uint) (*models.RedemptionRequest, error)
	// List returns requests newest-first, optionally filtered by status.
	List(ctx context.Context, status string, limit, offset int) ([]models.RedemptionRequest, int64, error)
	UpdateStatus(ctx context.Context, id uint, status string, detail models.JSON) error
	WithTx(tx *gorm.DB) RedemptionRepository
}

type redemptionRepository struct {
	db *gorm.DB
}

func NewRedemptionRepository(db *gorm.DB) RedemptionRepository {
	return &redemptionRepository{db: db}
}

func (r *redemptionRepository) WithTx(tx *gorm.DB) RedemptionRepository {
	return &redemptionRepository{db: tx}
}

func (r *redemptionRepository) Create(ctx context.Context, req *models.RedemptionRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("failed to create redemption request: %w", err)
	}
	return nil
}

func (r *redemptionRepository) GetByID(ctx context.Context, id uint) (*models.RedemptionRequest, error) {
	var req models.RedemptionRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRedemptionNotFound
		}
		return nil, fmt.Errorf("failed to get redemption request: %w", err)
	}
	return &req, nil
}

func (r *redemptionRepository) List(ctx context.Context, status string, limit, offset int) ([]models.RedemptionRequest, int64, error) {
	var reqs []models.RedemptionRequest
	var total int64
	q := r.db.WithContext(ctx).Model(&models.RedemptionRequest{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count redemption requests: %w", err)
	}
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&reqs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list redemption requests: %w", err)
	}
	return reqs, total, nil
}

func (r *redemptionRepository) UpdateStatus(ctx context.Context, id uint, status string, detail models.JSON) error {
	updates := map[string]interface{}{"status": status}
	if detail != nil {
		updates["detail"] = detail
	}
	res := r.db.WithContext(ctx).Model(&models.RedemptionRequest{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update redemption status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRedemptionNotFound
	}
	return nil
}
