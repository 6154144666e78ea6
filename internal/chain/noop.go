package chain

import (
	"context"

	"github.com/shopspring/decimal"
)

// noopClient is used when the chain integration is disabled. Every call
// reports ErrChainDisabled so operations record the attempt without a
// transaction reference.
type noopClient struct{}

// NewNoopClient returns a TokenClient that refuses every call.
func NewNoopClient() TokenClient {
	return noopClient{}
}

func (noopClient) Mint(ctx context.Context, to string, grams decimal.Decimal) (string, error) {
	return "", ErrChainDisabled
}

func (noopClient) Burn(ctx context.Context, from string, grams decimal.Decimal) (string, error) {
	return "", ErrChainDisabled
}

func (noopClient) Close() {}
