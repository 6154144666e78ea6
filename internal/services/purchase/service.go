// Package purchase handles fiat inflows: card top-ups through the
// payment processor and direct administrative credits.
package purchase

import (
	"context"
	"errors"
	"fmt"

	"github.com/oureum/oureum-backend/internal/models"
	"github.com/oureum/oureum-backend/internal/services/audit"
	"github.com/oureum/oureum-backend/internal/services/balance"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrPaymentFailed = errors.New("payment failed")
)

// PaymentProcessor charges an external payment method and returns a
// settlement reference. Behind an interface so tests can fake it.
type PaymentProcessor interface {
	Charge(ctx context.Context, amount decimal.Decimal, currency, paymentMethodID string) (string, error)
}

type Service interface {
	// TopUp charges the payment method and credits the user's fiat
	// balance. A failed charge leaves the ledger untouched.
	TopUp(ctx context.Context, wallet string, amount decimal.Decimal, paymentMethodID string) (decimal.Decimal, string, error)
	// AdminCredit credits fiat directly, recording the operator.
	AdminCredit(ctx context.Context, operator, wallet string, amount decimal.Decimal, note string) (decimal.Decimal, error)
}

type service struct {
	balances  balance.Service
	audits    audit.Service
	processor PaymentProcessor
	currency  string
}

// NewService creates a new purchase service.
func NewService(balances balance.Service, audits audit.Service, processor PaymentProcessor, currency string) Service {
	if balances == nil || audits == nil {
		panic("balance and audit services are required")
	}
	if currency == "" {
		currency = "usd"
	}
	return &service{
		balances:  balances,
		audits:    audits,
		processor: processor,
		currency:  currency,
	}
}

func (s *service) TopUp(ctx context.Context, wallet string, amount decimal.Decimal, paymentMethodID string) (decimal.Decimal, string, error) {
	if !amount.IsPositive() {
		return decimal.Zero, "", ErrInvalidAmount
	}
	if s.processor == nil {
		return decimal.Zero, "", ErrPaymentFailed
	}
	user, err := s.balances.EnsureUser(ctx, wallet)
	if err != nil {
		return decimal.Zero, "", err
	}

	// Charge first: a failed charge must not move the ledger.
	ref, err := s.processor.Charge(ctx, amount, s.currency, paymentMethodID)
	if err != nil {
		zap.L().Warn("top-up charge failed",
			zap.String("wallet", user.Wallet), zap.Error(err))
		return decimal.Zero, "", fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	newAmount, err := s.balances.AdjustFiat(ctx, user.ID, amount)
	if err != nil {
		// The charge went through but the credit did not. Surface it
		// loudly; reconciliation against the processor picks it up.
		zap.L().Error("fiat credit failed after successful charge",
			zap.String("wallet", user.Wallet),
			zap.String("charge_ref", ref),
			zap.Error(err))
		return decimal.Zero, ref, err
	}

	_ = s.audits.Record(ctx, user.Wallet, models.AuditActionTopUp, user.Wallet, models.JSON{
		"amount":     amount.String(),
		"charge_ref": ref,
	})
	return newAmount, ref, nil
}

func (s *service) AdminCredit(ctx context.Context, operator, wallet string, amount decimal.Decimal, note string) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	user, err := s.balances.EnsureUser(ctx, wallet)
	if err != nil {
		return decimal.Zero, err
	}
	newAmount, err := s.balances.AdjustFiat(ctx, user.ID, amount)
	if err != nil {
		return decimal.Zero, err
	}
	_ = s.audits.Record(ctx, operator, models.AuditActionAdminCredit, user.Wallet, models.JSON{
		"amount": amount.String(),
		"note":   note,
	})
	return newAmount, nil
}
