package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSnapshotComplete(t *testing.T) {
	snap := PriceSnapshot{
		BuyPerGram:  decimal.NewFromInt(510),
		SellPerGram: decimal.NewFromInt(490),
	}
	assert.True(t, snap.Complete())

	snap.SellPerGram = decimal.Zero
	assert.False(t, snap.Complete())
}

func TestSnapshotSpread(t *testing.T) {
	snap := PriceSnapshot{
		BuyPerGram:  decimal.NewFromInt(520),
		SellPerGram: decimal.NewFromInt(480),
		BasePerGram: decimal.NewFromInt(500),
	}
	assert.True(t, snap.Spread().Equal(decimal.NewFromInt(40)))
	assert.EqualValues(t, 800, snap.SpreadBps())

	// No base price, no relative spread.
	snap.BasePerGram = decimal.Zero
	assert.EqualValues(t, 0, snap.SpreadBps())
}
