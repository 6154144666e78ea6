// Package chain wraps the on-chain gold token contract. The ledger
// treats it as an opaque collaborator: a call either yields a
// transaction reference or fails, and failures never unwind committed
// ledger state.
package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/oureum/oureum-backend/internal/config"
	"github.com/shopspring/decimal"
)

var ErrChainDisabled = errors.New("chain integration disabled")

// tokenABI covers the two mutating calls the backend issues. The token
// follows the usual mintable/burnable ERC-20 surface.
const tokenABI = `[
	{"name":"mint","type":"function","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
	{"name":"burnFrom","type":"function","inputs":[{"name":"account","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]}
]`

// TokenClient mints and burns gold tokens on chain. Calls are not
// retried: a blind retry risks a duplicate mint or burn.
//
// Behind an interface so tests can fake it.
type TokenClient interface {
	// Mint issues grams worth of tokens to the wallet and returns the
	// transaction hash.
	Mint(ctx context.Context, to string, grams decimal.Decimal) (string, error)
	// Burn destroys grams worth of tokens held by the wallet and
	// returns the transaction hash.
	Burn(ctx context.Context, from string, grams decimal.Decimal) (string, error)
	Close()
}

type ethTokenClient struct {
	client   *ethclient.Client
	parsed   abi.ABI
	contract common.Address
	key      *ecdsa.PrivateKey
	chainID  *big.Int
	decimals int32
}

// Dial connects to the configured RPC endpoint and prepares the signer.
// Returns a no-op client when the integration is disabled.
func Dial(ctx context.Context, cfg config.ChainConfig) (TokenClient, error) {
	if !cfg.Enabled {
		return NewNoopClient(), nil
	}
	if cfg.RPCURL == "" || cfg.ContractAddr == "" || cfg.PrivateKeyHex == "" {
		return nil, errors.New("chain enabled but rpc url, contract or key missing")
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial chain rpc: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid minter key: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(tokenABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token abi: %w", err)
	}

	return &ethTokenClient{
		client:   client,
		parsed:   parsed,
		contract: common.HexToAddress(cfg.ContractAddr),
		key:      key,
		chainID:  big.NewInt(cfg.ChainID),
		decimals: int32(cfg.TokenDecimals),
	}, nil
}

func (c *ethTokenClient) Mint(ctx context.Context, to string, grams decimal.Decimal) (string, error) {
	return c.call(ctx, "mint", common.HexToAddress(to), c.toUnits(grams))
}

func (c *ethTokenClient) Burn(ctx context.Context, from string, grams decimal.Decimal) (string, error) {
	return c.call(ctx, "burnFrom", common.HexToAddress(from), c.toUnits(grams))
}

func (c *ethTokenClient) Close() {
	c.client.Close()
}

// toUnits scales grams to the token's smallest unit.
func (c *ethTokenClient) toUnits(grams decimal.Decimal) *big.Int {
	return grams.Shift(c.decimals).Truncate(0).BigInt()
}

func (c *ethTokenClient) call(ctx context.Context, method string, wallet common.Address, amount *big.Int) (string, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return "", fmt.Errorf("failed to build transactor: %w", err)
	}
	opts.Context = ctx

	input, err := c.parsed.Pack(method, wallet, amount)
	if err != nil {
		return "", fmt.Errorf("failed to pack %s call: %w", method, err)
	}

	nonce, err := c.client.PendingNonceAt(ctx, opts.From)
	if err != nil {
		return "", fmt.Errorf("failed to get nonce: %w", err)
	}
	gasPrice, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to suggest gas price: %w", err)
	}

	tx := types.NewTransaction(nonce, c.contract, big.NewInt(0), 200000, gasPrice, input)
	signed, err := opts.Signer(opts.From, tx)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s tx: %w", method, err)
	}
	if err := c.client.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("failed to send %s tx: %w", method, err)
	}
	return signed.Hash().Hex(), nil
}
