package purchase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/paymentintent"
)

// stripeProcessor charges cards through Stripe payment intents.
type stripeProcessor struct{}

// NewStripeProcessor configures the global Stripe key and returns a
// PaymentProcessor backed by it.
func NewStripeProcessor(secretKey string) PaymentProcessor {
	stripe.Key = secretKey
	return &stripeProcessor{}
}

func (p *stripeProcessor) Charge(ctx context.Context, amount decimal.Decimal, currency, paymentMethodID string) (string, error) {
	// Stripe wants the amount in the currency's minor unit.
	minor := amount.Shift(2).Truncate(0).IntPart()

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(minor),
		Currency:      stripe.String(currency),
		PaymentMethod: stripe.String(paymentMethodID),
		Confirm:       stripe.Bool(true),
		ConfirmationMethod: stripe.String(string(
			stripe.PaymentIntentConfirmationMethodAutomatic,
		)),
	}
	params.Context = ctx
	params.SetIdempotencyKey(uuid.NewString())

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe charge failed: %w", err)
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return "", fmt.Errorf("stripe charge not settled: status %s", intent.Status)
	}
	return intent.ID, nil
}
