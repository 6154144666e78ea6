// Package pricing resolves the authoritative buy/sell gold price from a
// layered source chain: cached snapshot, vendor fetch, manual fallback.
package pricing

import (
	"context"
	"time"

	"github.com/oureum/oureum-backend/internal/config"
	"github.com/oureum/oureum-backend/internal/models"
	"github.com/oureum/oureum-backend/internal/repositories"
	"github.com/oureum/oureum-backend/internal/repositories/cache"
	"github.com/oureum/oureum-backend/internal/services/audit"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// gramsPerTroyOunce converts vendor ounce quotes to per-gram prices.
var gramsPerTroyOunce = decimal.RequireFromString("31.1034768")

// priceScale is the decimal precision every derived per-gram price is
// rounded to at the point of computation.
const priceScale = 6

type Service interface {
	// Current returns the current complete price snapshot, resolving
	// through the tier chain as needed. It only fails when every tier
	// is exhausted and no manual base price is configured.
	Current(ctx context.Context) (*models.PriceSnapshot, error)
	// Quote is the spread-annotated view of Current.
	Quote(ctx context.Context) (*Quote, error)
	// SetManual appends an operator price override snapshot. Existing
	// snapshots are never mutated; latest wins.
	SetManual(ctx context.Context, operator string, req ManualPriceRequest) (*models.PriceSnapshot, error)
	History(ctx context.Context, limit, offset int) ([]models.PriceSnapshot, int64, error)
}

type service struct {
	repo    repositories.PriceRepository
	cache   *cache.CacheService
	audit   audit.Service
	fetcher Fetcher
	cfg     config.PricingConfig
}

// NewService creates the price resolution engine. cache and fetcher may
// be nil; a nil fetcher behaves like manual-only mode.
func NewService(
	repo repositories.PriceRepository,
	cacheService *cache.CacheService,
	auditService audit.Service,
	fetcher Fetcher,
	cfg config.PricingConfig,
) Service {
	if repo == nil {
		panic("price repo is required")
	}
	return &service{
		repo:    repo,
		cache:   cacheService,
		audit:   auditService,
		fetcher: fetcher,
		cfg:     cfg,
	}
}

func (s *service) Current(ctx context.Context) (*models.PriceSnapshot, error) {
	// Tier 1: cached snapshot. The fast path and the common case.
	if snap := s.cached(ctx); snap != nil {
		return snap, nil
	}

	// Tier 2: vendor fetch, skipped in manual-only mode. Vendor errors
	// are logged and swallowed; resolution falls through.
	if s.cfg.Mode != config.PricingModeManual && s.fetcher != nil {
		snap, err := s.fetchVendor(ctx)
		if err == nil {
			return snap, nil
		}
		zap.L().Warn("vendor price fetch failed, falling back",
			zap.String("vendor", s.cfg.VendorName), zap.Error(err))
	}

	// Tier 3: manual fallback synthesized from the configured base.
	return s.manualFallback(ctx)
}

// cached returns the freshest complete snapshot from redis or the
// store, or nil when none qualifies.
func (s *service) cached(ctx context.Context) *models.PriceSnapshot {
	if s.cache != nil {
		if snap, err := s.cache.GetPrice(ctx); err == nil && snap != nil && snap.Complete() && s.fresh(snap) {
			return snap
		}
	}
	snap, err := s.repo.LatestComplete(ctx)
	if err != nil || !s.fresh(snap) {
		return nil
	}
	s.cachePrice(ctx, snap)
	return snap
}

func (s *service) fresh(snap *models.PriceSnapshot) bool {
	if s.cfg.SnapshotMaxAge <= 0 {
		return true
	}
	return time.Since(snap.CreatedAt) <= s.cfg.SnapshotMaxAge
}

func (s *service) fetchVendor(ctx context.Context) (*models.PriceSnapshot, error) {
	quote, err := s.fetcher.FetchQuote(ctx)
	if err != nil {
		return nil, err
	}

	rawBuy := quote.PricePerOunceBuy.Div(gramsPerTroyOunce)
	rawSell := quote.PricePerOunceSell.Div(gramsPerTroyOunce)

	snap := &models.PriceSnapshot{
		Source:             s.cfg.VendorName,
		VendorBuyPerOunce:  &quote.PricePerOunceBuy,
		VendorSellPerOunce: &quote.PricePerOunceSell,
		BuyPerGram:         applyBps(rawBuy, s.cfg.BuyMarkupBps),
		SellPerGram:        applyBps(rawSell, s.cfg.SellMarkupBps),
		BasePerGram:        average(rawBuy, rawSell),
		BuyMarkupBps:       s.cfg.BuyMarkupBps,
		SellMarkupBps:      s.cfg.SellMarkupBps,
		Note:               quote.LastUpdated,
	}
	if err := s.repo.Insert(ctx, snap); err != nil {
		return nil, err
	}
	s.cachePrice(ctx, snap)
	return snap, nil
}

func (s *service) manualFallback(ctx context.Context) (*models.PriceSnapshot, error) {
	base := s.cfg.ManualBasePerGram
	if !base.IsPositive() {
		return nil, ErrPriceUnavailable
	}
	snap := &models.PriceSnapshot{
		Source:        models.SourceManual,
		BuyPerGram:    applyBps(base, s.cfg.BuyMarkupBps),
		SellPerGram:   applyBps(base, s.cfg.SellMarkupBps),
		BasePerGram:   base.Round(priceScale),
		BuyMarkupBps:  s.cfg.BuyMarkupBps,
		SellMarkupBps: s.cfg.SellMarkupBps,
		Note:          "fallback from configured base price",
	}
	if err := s.repo.Insert(ctx, snap); err != nil {
		return nil, err
	}
	s.cachePrice(ctx, snap)
	return snap, nil
}

func (s *service) Quote(ctx context.Context) (*Quote, error) {
	snap, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	return &Quote{
		Buy:       snap.BuyPerGram,
		Sell:      snap.SellPerGram,
		Base:      snap.BasePerGram,
		Spread:    snap.Spread(),
		SpreadBps: snap.SpreadBps(),
		Source:    snap.Source,
		AsOf:      snap.CreatedAt,
	}, nil
}

func (s *service) SetManual(ctx context.Context, operator string, req ManualPriceRequest) (*models.PriceSnapshot, error) {
	snap := &models.PriceSnapshot{
		Source:        models.SourceManual,
		BuyMarkupBps:  s.cfg.BuyMarkupBps,
		SellMarkupBps: s.cfg.SellMarkupBps,
		Note:          req.Note,
	}

	switch {
	case req.Buy != nil && req.Sell != nil:
		if !req.Buy.IsPositive() || !req.Sell.IsPositive() {
			return nil, ErrInvalidPrice
		}
		snap.BuyPerGram = req.Buy.Round(priceScale)
		snap.SellPerGram = req.Sell.Round(priceScale)
		snap.BasePerGram = average(*req.Buy, *req.Sell)
	case req.Base != nil:
		if !req.Base.IsPositive() {
			return nil, ErrInvalidPrice
		}
		snap.BuyPerGram = applyBps(*req.Base, s.cfg.BuyMarkupBps)
		snap.SellPerGram = applyBps(*req.Base, s.cfg.SellMarkupBps)
		snap.BasePerGram = req.Base.Round(priceScale)
	default:
		return nil, ErrInvalidPrice
	}

	if err := s.repo.Insert(ctx, snap); err != nil {
		return nil, err
	}
	s.cachePrice(ctx, snap)

	if s.audit != nil {
		_ = s.audit.Record(ctx, operator, models.AuditActionSetManualPrice, "", models.JSON{
			"buy":  snap.BuyPerGram.String(),
			"sell": snap.SellPerGram.String(),
			"base": snap.BasePerGram.String(),
			"note": req.Note,
		})
	}
	return snap, nil
}

func (s *service) History(ctx context.Context, limit, offset int) ([]models.PriceSnapshot, int64, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *service) cachePrice(ctx context.Context, snap *models.PriceSnapshot) {
	if s.cache == nil {
		return
	}
	if err := s.cache.CachePrice(ctx, snap); err != nil {
		zap.L().Warn("failed to cache price snapshot", zap.Error(err))
	}
}

// applyBps marks a per-gram price up (or down, for negative bps) and
// rounds to the fixed price scale.
func applyBps(price decimal.Decimal, bps int) decimal.Decimal {
	factor := decimal.NewFromInt(10000 + int64(bps)).Div(decimal.NewFromInt(10000))
	return price.Mul(factor).Round(priceScale)
}

func average(a, b decimal.Decimal) decimal.Decimal {
	return a.Add(b).Div(decimal.NewFromInt(2)).Round(priceScale)
}
