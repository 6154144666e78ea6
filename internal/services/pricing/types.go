package pricing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// VendorQuote is the raw external quote, denominated in currency per
// troy ounce.
type VendorQuote struct {
	AsOfDate          string          `json:"asOfDate"`
	LastUpdated       string          `json:"lastUpdated"`
	PricePerOunceBuy  decimal.Decimal `json:"pricePerOunceBuy"`
	PricePerOunceSell decimal.Decimal `json:"pricePerOunceSell"`
}

// Fetcher retrieves a vendor quote.
type Fetcher interface {
	FetchQuote(ctx context.Context) (*VendorQuote, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context) (*VendorQuote, error)

func (f FetcherFunc) FetchQuote(ctx context.Context) (*VendorQuote, error) {
	return f(ctx)
}

// Quote is the resolved buy/sell view handed to callers.
type Quote struct {
	Buy       decimal.Decimal `json:"buy"`
	Sell      decimal.Decimal `json:"sell"`
	Base      decimal.Decimal `json:"base"`
	Spread    decimal.Decimal `json:"spread"`
	SpreadBps int64           `json:"spread_bps"`
	Source    string          `json:"source"`
	AsOf      time.Time       `json:"as_of"`
}

// ManualPriceRequest is an admin price override. Either Base alone
// (buy/sell derived from the configured markups) or an explicit
// Buy/Sell pair (base becomes their average).
type ManualPriceRequest struct {
	Base *decimal.Decimal `json:"base"`
	Buy  *decimal.Decimal `json:"buy"`
	Sell *decimal.Decimal `json:"sell"`
	Note string           `json:"note"`
}
