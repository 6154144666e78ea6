package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FiatBalance is a user's custodial currency credit. Amount never goes
// negative; a debit that would underflow is rejected without effect.
type FiatBalance struct {
	ID        uint            `gorm:"primarykey"`
	UserID    uint            `gorm:"uniqueIndex;not null"`
	Amount    decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GoldBalance is a user's custodial gold holding in grams. Same
// non-negativity rule as FiatBalance.
type GoldBalance struct {
	ID        uint            `gorm:"primarykey"`
	UserID    uint            `gorm:"uniqueIndex;not null"`
	Grams     decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
