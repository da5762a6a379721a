package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"treasury_api/internal/app/port"
	"treasury_api/internal/domain/entity"
	"treasury_api/internal/pkg/metrics"
	"treasury_api/internal/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Fallback kinds reported to metrics.PriceFallbacks.
const (
	fallbackNativeSecondary = "native_secondary"
	fallbackNativeExhausted = "native_exhausted"
	fallbackTokenSecondary  = "token_secondary"
	fallbackTokenRejected   = "token_symbol_rejected"
	fallbackTokenOverride   = "token_override"
)

// PriceResolverOptions configures NewPriceResolver.
type PriceResolverOptions struct {
	OverrideAddress          string
	OverridePrice            decimal.Decimal
	BlockedSymbolAddresses   []string
	MaxSymbolLength          int
	RejectedSymbolSubstrings []string

	// RateLimit paces secondary lookups, Burst is the limiter bucket size.
	RateLimit           float64
	Burst               int
	FallbackConcurrency int
}

type priceResolverImpl struct {
	primary   port.PrimaryPriceProvider
	secondary port.SecondaryPriceProvider
	opts      PriceResolverOptions
	override  string
	blocked   map[string]struct{}
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// NewPriceResolver creates a port.PriceResolver that prefers the batched primary
// source and falls back to per-symbol secondary lookups.
func NewPriceResolver(
	primary port.PrimaryPriceProvider,
	secondary port.SecondaryPriceProvider,
	opts PriceResolverOptions,
	logger *zap.Logger,
) port.PriceResolver {
	if opts.RateLimit <= 0 {
		opts.RateLimit = 10
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.FallbackConcurrency <= 0 {
		opts.FallbackConcurrency = 5
	}

	r := &priceResolverImpl{
		primary:   primary,
		secondary: secondary,
		opts:      opts,
		blocked:   make(map[string]struct{}, len(opts.BlockedSymbolAddresses)),
		limiter:   rate.NewLimiter(rate.Limit(opts.RateLimit), opts.Burst),
		logger:    logger.Named("PriceResolver"),
	}
	if opts.OverrideAddress != "" {
		if addr, err := utils.NormalizeAddress(opts.OverrideAddress); err == nil {
			r.override = addr
		} else {
			r.logger.Warn("Ignoring invalid override address", zap.String("address", opts.OverrideAddress))
		}
	}
	for _, a := range opts.BlockedSymbolAddresses {
		if addr, err := utils.NormalizeAddress(a); err == nil {
			r.blocked[addr] = struct{}{}
		}
	}
	return r
}

// ResolveNativePrice implements port.PriceResolver.
func (r *priceResolverImpl) ResolveNativePrice(ctx context.Context, native entity.NativeAsset) decimal.Decimal {
	price, err := r.primary.GetNativePrice(ctx, native.CoinGeckoID)
	if err == nil {
		return price
	}
	r.logger.Warn("Primary native price failed, trying secondary",
		zap.String("coin", native.CoinGeckoID), zap.Error(err))
	metrics.PriceFallbacks.WithLabelValues(fallbackNativeSecondary).Inc()

	price, err = r.secondary.GetPriceBySymbol(ctx, native.Symbol)
	if err == nil {
		return price
	}
	r.logger.Error("Native price unavailable, valuing native balance at zero",
		zap.String("symbol", native.Symbol), zap.Error(err))
	metrics.PriceFallbacks.WithLabelValues(fallbackNativeExhausted).Inc()
	return decimal.Zero
}

// ResolveTokenPrices implements port.PriceResolver. When the batched call succeeds its
// answer is final; contracts it does not know stay unpriced. When it fails every
// contract is looked up by symbol on the secondary source.
func (r *priceResolverImpl) ResolveTokenPrices(ctx context.Context, contractAddresses []string, metadata port.MetadataResolver) entity.PriceMap {
	prices := make(entity.PriceMap, len(contractAddresses))
	if len(contractAddresses) > 0 {
		batch, err := r.primary.GetTokenPrices(ctx, contractAddresses)
		if err == nil {
			for addr, p := range batch {
				prices[addr] = p
			}
		} else {
			r.logger.Warn("Primary token prices failed, falling back to per-symbol lookups",
				zap.Int("tokens", len(contractAddresses)), zap.Error(err))
			r.resolveBySymbol(ctx, contractAddresses, metadata, prices)
		}
	}

	r.applyOverride(contractAddresses, prices)
	return prices
}

func (r *priceResolverImpl) resolveBySymbol(ctx context.Context, contractAddresses []string, metadata port.MetadataResolver, prices entity.PriceMap) {
	var mu sync.Mutex
	eg, childCtx := errgroup.WithContext(ctx)
	eg.SetLimit(r.opts.FallbackConcurrency)

	start := time.Now()
	for _, addr := range contractAddresses {
		addr := addr
		eg.Go(func() error {
			price := r.priceBySymbol(childCtx, addr, metadata)
			mu.Lock()
			prices[addr] = price
			mu.Unlock()
			// ошибки не прерывают остальные запросы
			return nil
		})
	}
	_ = eg.Wait()
	r.logger.Debug("Per-symbol price fallback finished",
		zap.Int("tokens", len(contractAddresses)), zap.Duration("took", time.Since(start)))
}

func (r *priceResolverImpl) priceBySymbol(ctx context.Context, addr string, metadata port.MetadataResolver) decimal.Decimal {
	if _, blocked := r.blocked[addr]; blocked {
		metrics.PriceFallbacks.WithLabelValues(fallbackTokenRejected).Inc()
		return decimal.Zero
	}

	symbol := metadata.Resolve(ctx, addr).Symbol
	if !r.validSymbol(symbol) {
		r.logger.Debug("Rejected symbol for price lookup", zap.String("contract", addr), zap.String("symbol", symbol))
		metrics.PriceFallbacks.WithLabelValues(fallbackTokenRejected).Inc()
		return decimal.Zero
	}

	if err := r.limiter.Wait(ctx); err != nil {
		r.logger.Warn("Rate limiter wait failed", zap.String("symbol", symbol), zap.Error(err))
		return decimal.Zero
	}
	metrics.PriceFallbacks.WithLabelValues(fallbackTokenSecondary).Inc()
	price, err := r.secondary.GetPriceBySymbol(ctx, symbol)
	if err != nil {
		r.logger.Warn("Secondary price lookup failed", zap.String("contract", addr),
			zap.String("symbol", symbol), zap.Error(err))
		return decimal.Zero
	}
	return price
}

func (r *priceResolverImpl) validSymbol(symbol string) bool {
	if symbol == "" {
		return false
	}
	if r.opts.MaxSymbolLength > 0 && len(symbol) > r.opts.MaxSymbolLength {
		return false
	}
	lower := strings.ToLower(symbol)
	for _, s := range r.opts.RejectedSymbolSubstrings {
		if s != "" && strings.Contains(lower, strings.ToLower(s)) {
			return false
		}
	}
	return true
}

// applyOverride patches the hardcoded price when the override contract was requested
// and no source quoted it.
func (r *priceResolverImpl) applyOverride(contractAddresses []string, prices entity.PriceMap) {
	if r.override == "" || r.opts.OverridePrice.IsZero() {
		return
	}
	for _, addr := range contractAddresses {
		if addr != r.override {
			continue
		}
		if _, ok := prices.Get(addr); !ok {
			prices[addr] = r.opts.OverridePrice
			metrics.PriceFallbacks.WithLabelValues(fallbackTokenOverride).Inc()
		}
		return
	}
}

// IsOverride implements port.PriceResolver.
func (r *priceResolverImpl) IsOverride(address string) bool {
	return r.override != "" && address == r.override
}
