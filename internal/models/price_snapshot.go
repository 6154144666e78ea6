package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourceManual tags snapshots entered by an operator or synthesized
// from the configured base price. Vendor snapshots carry the vendor name.
const SourceManual = "manual"

// PriceSnapshot is one recorded price observation, append-only. The
// current price is always the most recently created complete snapshot;
// older rows are never updated or retroactively promoted.
type PriceSnapshot struct {
	ID     uint   `gorm:"primarykey"`
	Source string `gorm:"not null"`
	// Raw vendor quote, currency per troy ounce. Nil for manual snapshots.
	VendorBuyPerOunce  *decimal.Decimal `gorm:"type:numeric(20,6)"`
	VendorSellPerOunce *decimal.Decimal `gorm:"type:numeric(20,6)"`
	// Resolved prices, currency per gram, after markup.
	BuyPerGram  decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	SellPerGram decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	BasePerGram decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	// Markup applied per side when the snapshot was derived.
	BuyMarkupBps  int
	SellMarkupBps int
	Note          string
	CreatedAt     time.Time `gorm:"index"`
}

// Complete reports whether both sides of the snapshot resolved.
func (p *PriceSnapshot) Complete() bool {
	return p.BuyPerGram.IsPositive() && p.SellPerGram.IsPositive()
}

// Spread returns buy minus sell.
func (p *PriceSnapshot) Spread() decimal.Decimal {
	return p.BuyPerGram.Sub(p.SellPerGram)
}

// SpreadBps returns the spread relative to the base price in basis
// points, or 0 when the base price is not positive.
func (p *PriceSnapshot) SpreadBps() int64 {
	if !p.BasePerGram.IsPositive() {
		return 0
	}
	return p.Spread().Div(p.BasePerGram).Mul(decimal.NewFromInt(10000)).Round(0).IntPart()
}
