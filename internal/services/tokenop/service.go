// Package tokenop composes the balance service and the price engine
// into atomic buy→mint and sell→burn conversions.
package tokenop

import (
	"context"
	"errors"
	"fmt"

	"github.com/oureum/oureum-backend/internal/chain"
	"github.com/oureum/oureum-backend/internal/models"
	"github.com/oureum/oureum-backend/internal/repositories"
	"github.com/oureum/oureum-backend/internal/services/audit"
	"github.com/oureum/oureum-backend/internal/services/balance"
	"github.com/oureum/oureum-backend/internal/services/pricing"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	// Buy debits fiat, credits gold at the current buy price and logs
	// the operation, all atomically; the chain mint runs after commit.
	Buy(ctx context.Context, req Request) (*Result, error)
	// Sell is the symmetric conversion at the current sell price.
	Sell(ctx context.Context, req Request) (*Result, error)
	// RecordOffchain books a purchase settled outside the platform.
	RecordOffchain(ctx context.Context, operator string, purchase OffchainPurchase) (*Result, error)
	List(ctx context.Context, wallet string, limit, offset int) ([]models.TokenOperation, int64, error)
}

type service struct {
	db       *gorm.DB
	balances balance.Service
	prices   pricing.Service
	ops      repositories.OperationRepository
	audits   audit.Service
	chain    chain.TokenClient
}

// NewService creates a new token operation service.
func NewService(
	db *gorm.DB,
	balances balance.Service,
	prices pricing.Service,
	ops repositories.OperationRepository,
	audits audit.Service,
	chainClient chain.TokenClient,
) Service {
	if db == nil {
		panic("db is required")
	}
	if balances == nil || prices == nil || ops == nil || audits == nil {
		panic("balance, pricing, operation and audit collaborators are required")
	}
	if chainClient == nil {
		chainClient = chain.NewNoopClient()
	}
	return &service{
		db:       db,
		balances: balances,
		prices:   prices,
		ops:      ops,
		audits:   audits,
		chain:    chainClient,
	}
}

func (s *service) Buy(ctx context.Context, req Request) (*Result, error) {
	user, err := s.balances.EnsureUser(ctx, req.Wallet)
	if err != nil {
		return nil, err
	}
	snap, err := s.prices.Current(ctx)
	if err != nil {
		return nil, err
	}
	grams, fiat, err := deriveAmounts(req, snap.BuyPerGram)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	// Ledger first: both balance moves and the log row commit as one
	// unit. The chain call runs after commit and its failure is
	// recorded, never rolled into the ledger.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		balances := s.balances.WithTx(tx)
		if result.NewFiat, err = balances.AdjustFiat(ctx, user.ID, fiat.Neg()); err != nil {
			return err
		}
		if result.NewGold, err = balances.AdjustGold(ctx, user.ID, grams); err != nil {
			return err
		}
		result.Operation = &models.TokenOperation{
			UserID:     user.ID,
			Direction:  models.DirectionBuyMint,
			Grams:      grams,
			FiatAmount: fiat,
			UnitPrice:  snap.BuyPerGram,
			Note:       req.Note,
		}
		if err := s.ops.WithTx(tx).Create(ctx, result.Operation); err != nil {
			return err
		}
		return s.audits.WithTx(tx).Record(ctx, user.Wallet, models.AuditActionBuyMint, user.Wallet, models.JSON{
			"grams":      grams.String(),
			"fiat":       fiat.String(),
			"unit_price": snap.BuyPerGram.String(),
		})
	})
	if err != nil {
		return nil, mapBalanceError(err)
	}
	s.balances.InvalidateCache(ctx, user.ID)

	s.settleOnChain(ctx, result, user.Wallet, grams, true)
	return result, nil
}

func (s *service) Sell(ctx context.Context, req Request) (*Result, error) {
	user, err := s.balances.EnsureUser(ctx, req.Wallet)
	if err != nil {
		return nil, err
	}
	snap, err := s.prices.Current(ctx)
	if err != nil {
		return nil, err
	}
	grams, fiat, err := deriveAmounts(req, snap.SellPerGram)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		balances := s.balances.WithTx(tx)
		if result.NewGold, err = balances.AdjustGold(ctx, user.ID, grams.Neg()); err != nil {
			return err
		}
		if result.NewFiat, err = balances.AdjustFiat(ctx, user.ID, fiat); err != nil {
			return err
		}
		result.Operation = &models.TokenOperation{
			UserID:     user.ID,
			Direction:  models.DirectionSellBurn,
			Grams:      grams,
			FiatAmount: fiat,
			UnitPrice:  snap.SellPerGram,
			Note:       req.Note,
		}
		if err := s.ops.WithTx(tx).Create(ctx, result.Operation); err != nil {
			return err
		}
		return s.audits.WithTx(tx).Record(ctx, user.Wallet, models.AuditActionSellBurn, user.Wallet, models.JSON{
			"grams":      grams.String(),
			"fiat":       fiat.String(),
			"unit_price": snap.SellPerGram.String(),
		})
	})
	if err != nil {
		return nil, mapBalanceError(err)
	}
	s.balances.InvalidateCache(ctx, user.ID)

	s.settleOnChain(ctx, result, user.Wallet, grams, false)
	return result, nil
}

func (s *service) RecordOffchain(ctx context.Context, operator string, purchase OffchainPurchase) (*Result, error) {
	if !purchase.Grams.IsPositive() {
		return nil, ErrInvalidAmount
	}
	user, err := s.balances.EnsureUser(ctx, purchase.Wallet)
	if err != nil {
		return nil, err
	}

	unitPrice := decimal.Zero
	if purchase.FiatAmount.IsPositive() {
		unitPrice = purchase.FiatAmount.Div(purchase.Grams).Round(amountScale)
	}

	result := &Result{}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		balances := s.balances.WithTx(tx)
		if result.NewGold, err = balances.AdjustGold(ctx, user.ID, purchase.Grams); err != nil {
			return err
		}
		op := &models.TokenOperation{
			UserID:     user.ID,
			Direction:  models.DirectionBuyMint,
			Grams:      purchase.Grams,
			FiatAmount: purchase.FiatAmount,
			UnitPrice:  unitPrice,
			Note:       purchase.Note,
		}
		if purchase.Reference != "" {
			op.ChainTxRef = &purchase.Reference
		}
		if err := s.ops.WithTx(tx).Create(ctx, op); err != nil {
			return err
		}
		result.Operation = op
		return s.audits.WithTx(tx).Record(ctx, operator, models.AuditActionOffchainPurchase, user.Wallet, models.JSON{
			"grams":     purchase.Grams.String(),
			"fiat":      purchase.FiatAmount.String(),
			"reference": purchase.Reference,
		})
	})
	if err != nil {
		return nil, mapBalanceError(err)
	}
	s.balances.InvalidateCache(ctx, user.ID)
	if result.Operation.ChainTxRef != nil {
		result.ChainTxRef = *result.Operation.ChainTxRef
	}
	return result, nil
}

func (s *service) List(ctx context.Context, wallet string, limit, offset int) ([]models.TokenOperation, int64, error) {
	user, err := s.balances.GetUserByWallet(ctx, wallet)
	if err != nil {
		return nil, 0, err
	}
	return s.ops.ListByUser(ctx, user.ID, limit, offset)
}

// settleOnChain invokes the external mint or burn once, attaching the
// returned reference exactly once. Failures are audited and surfaced on
// the result; the ledger commit stands either way.
func (s *service) settleOnChain(ctx context.Context, result *Result, wallet string, grams decimal.Decimal, mint bool) {
	var ref string
	var err error
	if mint {
		ref, err = s.chain.Mint(ctx, wallet, grams)
	} else {
		ref, err = s.chain.Burn(ctx, wallet, grams)
	}
	if err != nil {
		if !errors.Is(err, chain.ErrChainDisabled) {
			zap.L().Warn("chain call failed after ledger commit",
				zap.Uint("operation_id", result.Operation.ID),
				zap.String("wallet", wallet),
				zap.Bool("mint", mint),
				zap.Error(err))
			_ = s.audits.Record(ctx, "system", models.AuditActionChainCallFailed, wallet, models.JSON{
				"operation_id": result.Operation.ID,
				"error":        err.Error(),
			})
		}
		result.ChainError = err.Error()
		return
	}
	if err := s.ops.AttachChainRef(ctx, result.Operation.ID, ref); err != nil {
		zap.L().Error("failed to attach chain ref",
			zap.Uint("operation_id", result.Operation.ID), zap.Error(err))
		result.ChainError = err.Error()
		return
	}
	result.ChainTxRef = ref
	result.Operation.ChainTxRef = &ref
}

// deriveAmounts resolves the gram and fiat sides of a request from the
// unit price, requiring exactly one side as input.
func deriveAmounts(req Request, unitPrice decimal.Decimal) (grams, fiat decimal.Decimal, err error) {
	if (req.Grams == nil) == (req.Fiat == nil) {
		return decimal.Zero, decimal.Zero, ErrAmbiguousAmount
	}
	if !unitPrice.IsPositive() {
		return decimal.Zero, decimal.Zero, pricing.ErrPriceUnavailable
	}
	if req.Grams != nil {
		if !req.Grams.IsPositive() {
			return decimal.Zero, decimal.Zero, ErrInvalidAmount
		}
		grams = req.Grams.Round(amountScale)
		fiat = grams.Mul(unitPrice).Round(amountScale)
		return grams, fiat, nil
	}
	if !req.Fiat.IsPositive() {
		return decimal.Zero, decimal.Zero, ErrInvalidAmount
	}
	fiat = req.Fiat.Round(amountScale)
	grams = fiat.Div(unitPrice).Round(amountScale)
	return grams, fiat, nil
}

func mapBalanceError(err error) error {
	if errors.Is(err, balance.ErrInsufficientBalance) {
		return ErrInsufficientBalance
	}
	return fmt.Errorf("token operation failed: %w", err)
}
