// Package redemption manages requests to convert custodial gold into a
// cash payout or physical gold delivery.
package redemption

import (
	"context"
	"fmt"

	"github.com/oureum/oureum-backend/internal/config"
	"github.com/oureum/oureum-backend/internal/models"
	"github.com/oureum/oureum-backend/internal/repositories"
	"github.com/oureum/oureum-backend/internal/services/audit"
	"github.com/oureum/oureum-backend/internal/services/balance"
	"github.com/oureum/oureum-backend/internal/services/pricing"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const bpsDenominator = 10000

type Service interface {
	// Create opens a PENDING request. A GOLD request below the
	// configured minimum bar is silently downgraded to CASH.
	Create(ctx context.Context, wallet string, grams decimal.Decimal, kind string) (*models.RedemptionRequest, error)
	List(ctx context.Context, status string, limit, offset int) ([]models.RedemptionRequest, int64, error)
	Get(ctx context.Context, id uint) (*models.RedemptionRequest, error)
	// Transition moves a request along the explicit state machine.
	// Terminal states are final.
	Transition(ctx context.Context, operator string, id uint, status, note string, detail models.JSON) (*models.RedemptionRequest, error)
}

type service struct {
	db       *gorm.DB
	repo     repositories.RedemptionRepository
	balances balance.Service
	prices   pricing.Service
	audits   audit.Service
	cfg      config.RedemptionConfig
}

// NewService creates a new redemption service.
func NewService(
	db *gorm.DB,
	repo repositories.RedemptionRepository,
	balances balance.Service,
	prices pricing.Service,
	audits audit.Service,
	cfg config.RedemptionConfig,
) Service {
	if db == nil || repo == nil || balances == nil || prices == nil || audits == nil {
		panic("all redemption collaborators are required")
	}
	return &service{
		db:       db,
		repo:     repo,
		balances: balances,
		prices:   prices,
		audits:   audits,
		cfg:      cfg,
	}
}

func (s *service) Create(ctx context.Context, wallet string, grams decimal.Decimal, kind string) (*models.RedemptionRequest, error) {
	if !grams.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if kind == "" {
		kind = models.RedemptionKindCash
	}
	if kind != models.RedemptionKindCash && kind != models.RedemptionKindGold {
		return nil, ErrInvalidKind
	}

	user, err := s.balances.EnsureUser(ctx, wallet)
	if err != nil {
		return nil, err
	}

	// Physical delivery below the minimum bar becomes a cash payout.
	// Policy decision, not an error.
	var minimum *decimal.Decimal
	if kind == models.RedemptionKindGold {
		if grams.LessThan(s.cfg.MinimumGoldGrams) {
			zap.L().Info("gold redemption below minimum, downgrading to cash",
				zap.String("wallet", user.Wallet),
				zap.String("grams", grams.String()),
				zap.String("minimum", s.cfg.MinimumGoldGrams.String()))
			kind = models.RedemptionKindCash
		} else {
			m := s.cfg.MinimumGoldGrams
			minimum = &m
		}
	}

	snap, err := s.prices.Current(ctx)
	if err != nil {
		return nil, err
	}

	gross := grams.Mul(snap.SellPerGram)
	fee := gross.Mul(decimal.NewFromInt(int64(s.cfg.FeeBps))).Div(decimal.NewFromInt(bpsDenominator)).Round(6)

	req := &models.RedemptionRequest{
		UserID:       user.ID,
		Wallet:       user.Wallet,
		Kind:         kind,
		Grams:        grams,
		FeeBps:       s.cfg.FeeBps,
		FeeAmount:    fee,
		MinimumGrams: minimum,
		Status:       models.RedemptionPending,
		Detail: models.JSON{
			"sell_price": snap.SellPerGram.String(),
			"source":     snap.Source,
		},
	}
	if kind == models.RedemptionKindCash {
		payout := gross.Sub(fee).Round(6)
		req.Payout = &payout
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, req); err != nil {
			return err
		}
		return s.audits.WithTx(tx).Record(ctx, user.Wallet, models.AuditActionRedemptionCreate, user.Wallet, models.JSON{
			"request_id": req.ID,
			"kind":       req.Kind,
			"grams":      grams.String(),
			"fee":        fee.String(),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redemption request: %w", err)
	}
	return req, nil
}

func (s *service) List(ctx context.Context, status string, limit, offset int) ([]models.RedemptionRequest, int64, error) {
	if status != "" && !models.ValidRedemptionStatus(status) {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.List(ctx, status, limit, offset)
}

func (s *service) Get(ctx context.Context, id uint) (*models.RedemptionRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return req, nil
}

func (s *service) Transition(ctx context.Context, operator string, id uint, status, note string, detail models.JSON) (*models.RedemptionRequest, error) {
	if !models.ValidRedemptionStatus(status) || status == models.RedemptionPending {
		return nil, ErrInvalidStatus
	}

	var updated *models.RedemptionRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		req, err := repo.GetByID(ctx, id)
		if err != nil {
			return mapRepoError(err)
		}
		if models.RedemptionTerminal(req.Status) {
			return ErrRequestFinalized
		}
		if !models.CanTransitionRedemption(req.Status, status) {
			return ErrIllegalTransition
		}

		merged := req.Detail
		if merged == nil {
			merged = models.JSON{}
		}
		for k, v := range detail {
			merged[k] = v
		}
		if note != "" {
			merged["note"] = note
		}

		if err := repo.UpdateStatus(ctx, id, status, merged); err != nil {
			return err
		}
		if err := s.audits.WithTx(tx).Record(ctx, operator, models.AuditActionRedemptionStatus, req.Wallet, models.JSON{
			"request_id": id,
			"from":       req.Status,
			"to":         status,
			"note":       note,
		}); err != nil {
			return err
		}
		req.Status = status
		req.Detail = merged
		updated = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func mapRepoError(err error) error {
	if err == repositories.ErrRedemptionNotFound {
		return ErrRequestNotFound
	}
	return err
}
