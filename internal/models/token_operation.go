package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Token operation directions
const (
	DirectionBuyMint  = "BUY_MINT"
	DirectionSellBurn = "SELL_BURN"
)

// TokenOperation is one executed conversion between fiat and gold.
// Rows are immutable except that ChainTxRef may be attached exactly
// once when the external chain call completes.
type TokenOperation struct {
	ID         uint            `gorm:"primarykey"`
	UserID     uint            `gorm:"index;not null"`
	Direction  string          `gorm:"not null"`
	Grams      decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	FiatAmount decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(20,6);not null"` // currency per gram at execution
	ChainTxRef *string
	Note       string
	CreatedAt  time.Time
}
