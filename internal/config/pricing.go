package config

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pricing modes. In manual mode the engine never contacts the vendor.
const (
	PricingModeAuto   = "auto"
	PricingModeManual = "manual"
)

// PricingConfig carries all knobs for the price resolution engine.
// It is built once at startup and passed to the engine explicitly;
// the engine never reads the environment itself.
type PricingConfig struct {
	Mode              string
	BuyMarkupBps      int
	SellMarkupBps     int
	ManualBasePerGram decimal.Decimal
	VendorName        string
	VendorURL         string
	VendorAPIKey      string
	VendorTimeout     time.Duration
	VendorMaxRetries  int
	// SnapshotMaxAge bounds how old a cached snapshot may be before
	// the engine tries to refresh it. Zero means snapshots never expire.
	SnapshotMaxAge time.Duration
}

// PricingFromEnv builds a PricingConfig from the environment.
func PricingFromEnv() PricingConfig {
	return PricingConfig{
		Mode:              GetEnv("PRICING_MODE", PricingModeAuto),
		BuyMarkupBps:      GetIntEnv("PRICE_BUY_MARKUP_BPS", 200),
		SellMarkupBps:     GetIntEnv("PRICE_SELL_MARKUP_BPS", -200),
		ManualBasePerGram: GetDecimalEnv("PRICE_MANUAL_BASE_PER_GRAM", decimal.RequireFromString("500")),
		VendorName:        GetEnv("PRICE_VENDOR_NAME", "goldapi"),
		VendorURL:         GetEnv("PRICE_VENDOR_URL", ""),
		VendorAPIKey:      GetEnv("PRICE_VENDOR_API_KEY", ""),
		VendorTimeout:     GetDurationEnv("PRICE_VENDOR_TIMEOUT", 5*time.Second),
		VendorMaxRetries:  GetIntEnv("PRICE_VENDOR_MAX_RETRIES", 2),
		SnapshotMaxAge:    GetDurationEnv("PRICE_SNAPSHOT_MAX_AGE", 0),
	}
}

// RedemptionConfig carries fee and minimum-unit policy for redemption requests.
type RedemptionConfig struct {
	FeeBps int
	// MinimumGoldGrams is the smallest physical-gold redemption the
	// platform fulfills. Requests below it are downgraded to cash.
	MinimumGoldGrams decimal.Decimal
}

// RedemptionFromEnv builds a RedemptionConfig from the environment.
func RedemptionFromEnv() RedemptionConfig {
	return RedemptionConfig{
		FeeBps:           GetIntEnv("REDEMPTION_FEE_BPS", 50),
		MinimumGoldGrams: GetDecimalEnv("REDEMPTION_MIN_GOLD_GRAMS", decimal.RequireFromString("10")),
	}
}

// ChainConfig carries connection details for the token contract.
type ChainConfig struct {
	Enabled       bool
	RPCURL        string
	ContractAddr  string
	PrivateKeyHex string
	ChainID       int64
	TokenDecimals int
	CallTimeout   time.Duration
}

// ChainFromEnv builds a ChainConfig from the environment.
func ChainFromEnv() ChainConfig {
	return ChainConfig{
		Enabled:       GetBoolEnv("CHAIN_ENABLED", false),
		RPCURL:        GetEnv("CHAIN_RPC_URL", ""),
		ContractAddr:  GetEnv("CHAIN_TOKEN_CONTRACT", ""),
		PrivateKeyHex: GetEnv("CHAIN_MINTER_PRIVATE_KEY", ""),
		ChainID:       int64(GetIntEnv("CHAIN_ID", 1)),
		TokenDecimals: GetIntEnv("CHAIN_TOKEN_DECIMALS", 6),
		CallTimeout:   GetDurationEnv("CHAIN_CALL_TIMEOUT", 30*time.Second),
	}
}
