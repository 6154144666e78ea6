package repositories

import (
	"context"
	"fmt"

	"github.com/oureum/oureum-backend/internal/models"
	"gorm.io/gorm"
)

// AuditRepository owns the append-only audit table. There is no update
// or delete path on purpose.
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditEntry) error
	List(ctx context.Context, action, target string, limit, offset int) ([]models.AuditEntry, int64, error)
	WithTx(tx *gorm.DB) AuditRepository
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) WithTx(tx *gorm.DB) AuditRepository {
	return &auditRepository{db: tx}
}

func (r *auditRepository) Create(ctx context.Context, entry *models.AuditEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create audit entry: %w", err)
	}
	return nil
}

func (r *auditRepository) List(ctx context.Context, action, target string, limit, offset int) ([]models.AuditEntry, int64, error) {
	var entries []models.AuditEntry
	var total int64
	q := r.db.WithContext(ctx).Model(&models.AuditEntry{})
	if action != "" {
		q = q.Where("action = ?", action)
	}
	if target != "" {
		q = q.Where("target = ?", target)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&entries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, total, nil
}
