package tokenop

import (
	"github.com/oureum/oureum-backend/internal/models"
	"github.com/shopspring/decimal"
)

// amountScale is the fixed precision for derived gram and fiat amounts.
const amountScale = 6

// Request describes a buy or sell. Exactly one of Grams or Fiat must be
// set; the other side is derived from the current price.
type Request struct {
	Wallet string
	Grams  *decimal.Decimal
	Fiat   *decimal.Decimal
	Note   string
}

// OffchainPurchase records a gold purchase settled outside the
// platform: gold is credited, fiat is untouched.
type OffchainPurchase struct {
	Wallet     string
	Grams      decimal.Decimal
	FiatAmount decimal.Decimal // price paid off-platform, for the record
	Reference  string          // external settlement reference, if any
	Note       string
}

// Result is the outcome of an executed operation. The ledger portion
// has committed; ChainTxRef is empty when the external call failed or
// the integration is disabled, with ChainError carrying the reason.
type Result struct {
	Operation  *models.TokenOperation
	NewFiat    decimal.Decimal
	NewGold    decimal.Decimal
	ChainTxRef string
	ChainError string
}
