package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/oureum/oureum-backend/internal/models"
	"gorm.io/gorm"
)

var ErrNoPriceSnapshot = errors.New("no price snapshot")

// PriceRepository owns the append-only price snapshot table.
type PriceRepository interface {
	// Insert appends a snapshot. Snapshots are never updated.
	Insert(ctx context.Context, snap *models.PriceSnapshot) error
	// LatestComplete returns the most recent snapshot with both sides
	// resolved, or ErrNoPriceSnapshot.
	LatestComplete(ctx context.Context) (*models.PriceSnapshot, error)
	List(ctx context.Context, limit, offset int) ([]models.PriceSnapshot, int64, error)
}

type priceRepository struct {
	db *gorm.DB
}

func NewPriceRepository(db *gorm.DB) PriceRepository {
	return &priceRepository{db: db}
}

func (r *priceRepository) Insert(ctx context.Context, snap *models.PriceSnapshot) error {
	if err := r.db.WithContext(ctx).Create(snap).Error; err != nil {
		return fmt.Errorf("failed to insert price snapshot: %w", err)
	}
	return nil
}

func (r *priceRepository) LatestComplete(ctx context.Context) (*models.PriceSnapshot, error) {
	var snap models.PriceSnapshot
	err := r.db.WithContext(ctx).
		Where("buy_per_gram > 0 AND sell_per_gram > 0").
		Order("created_at DESC, id DESC").
		First(&snap).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoPriceSnapshot
		}
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}
	return &snap, nil
}

func (r *priceRepository) List(ctx context.Context, limit, offset int) ([]models.PriceSnapshot, int64, error) {
	var snaps []models.PriceSnapshot
	var total int64
	q := r.db.WithContext(ctx).Model(&models.PriceSnapshot{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&snaps).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return snaps, total, nil
}
