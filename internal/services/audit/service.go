// Package audit appends immutable records of every administrative or
// value-moving action.
package audit

import (
	"context"

	"github.com/oureum/oureum-backend/internal/models"
	"github.com/oureum/oureum-backend/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	// Record appends one audit entry. Entries are never mutated.
	Record(ctx context.Context, operator, action, target string, detail models.JSON) error
	List(ctx context.Context, action, target string, limit, offset int) ([]models.AuditEntry, int64, error)
	// WithTx returns a copy bound to tx so the audit write commits or
	// rolls back together with the action it records.
	WithTx(tx *gorm.DB) Service
}

type service struct {
	repo repositories.AuditRepository
}

// NewService creates a new audit service.
func NewService(repo repositories.AuditRepository) Service {
	if repo == nil {
		panic("audit repo is required")
	}
	return &service{repo: repo}
}

func (s *service) WithTx(tx *gorm.DB) Service {
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) Record(ctx context.Context, operator, action, target string, detail models.JSON) error {
	entry := &models.AuditEntry{
		Operator: operator,
		Action:   action,
		Target:   target,
		Detail:   detail,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		zap.L().Error("failed to record audit entry",
			zap.String("operator", operator),
			zap.String("action", action),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *service) List(ctx context.Context, action, target string, limit, offset int) ([]models.AuditEntry, int64, error) {
	return s.repo.List(ctx, action, target, limit, offset)
}
