package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"treasury_api/internal/app/port"
	"treasury_api/internal/domain/entity"
	"treasury_api/internal/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrMissingAPIKey is returned when neither the request nor the configuration carries a provider key.
var ErrMissingAPIKey = errors.New("alchemyApi not provided")

// PortfolioServiceOptions configures NewPortfolioService.
type PortfolioServiceOptions struct {
	MetadataTimeout time.Duration
	MaxConcurrency  int
}

// PortfolioServiceImpl implements port.PortfolioService.
type PortfolioServiceImpl struct {
	chains   port.ChainDataClientFactory
	balances port.BalanceReader
	prices   port.PriceResolver
	opts     PortfolioServiceOptions
	logger   *zap.Logger
}

// NewPortfolioService creates a new instance of PortfolioServiceImpl.
func NewPortfolioService(
	chains port.ChainDataClientFactory,
	balances port.BalanceReader,
	prices port.PriceResolver,
	opts PortfolioServiceOptions,
	logger *zap.Logger,
) port.PortfolioService {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 1
	}
	return &PortfolioServiceImpl{
		chains:   chains,
		balances: balances,
		prices:   prices,
		opts:     opts,
		logger:   logger.Named("PortfolioService"),
	}
}

// GetPortfolio implements port.PortfolioService. The native line item is always last.
func (s *PortfolioServiceImpl) GetPortfolio(ctx context.Context, req entity.PortfolioRequest) (*entity.PortfolioSnapshot, error) {
	profile := req.Profile
	if profile == nil {
		return nil, entity.NewValidationError("profile not provided")
	}
	if strings.TrimSpace(req.APIKey) == "" {
		return nil, &entity.PortfolioError{Kind: entity.ValidationError, Message: ErrMissingAPIKey.Error(), Err: ErrMissingAPIKey}
	}
	addresses, err := utils.NormalizeAddresses(req.Addresses)
	if err != nil {
		return nil, &entity.PortfolioError{Kind: entity.ValidationError, Message: "invalid address", Err: err}
	}
	if len(addresses) == 0 {
		return nil, entity.NewValidationError("no addresses to value")
	}

	logger := s.logger.With(zap.String("profile", profile.Name), zap.Int("addresses", len(addresses)))
	start := time.Now()

	chain, err := s.chains.NewChainDataClient(ctx, req.APIKey)
	if err != nil {
		return nil, entity.NewUpstreamError("chain provider unavailable", err)
	}
	defer chain.Close()

	var (
		rawBalances  []entity.RawBalance
		nativeAmount decimal.Decimal
		nativePrice  decimal.Decimal
	)
	eg, childCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		rawBalances, err = s.balances.ReadBalances(childCtx, chain, profile, addresses)
		return err
	})
	eg.Go(func() error {
		var err error
		nativeAmount, err = s.balances.ReadNativeBalance(childCtx, chain, profile, addresses[0])
		return err
	})
	eg.Go(func() error {
		nativePrice = s.prices.ResolveNativePrice(childCtx, profile.Native)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, entity.NewUpstreamError("failed to read balances", err)
	}

	nonZero := make([]entity.RawBalance, 0, len(rawBalances))
	for _, b := range rawBalances {
		if !b.IsZeroSentinel() {
			nonZero = append(nonZero, b)
		}
	}

	contracts := make([]string, 0, len(nonZero))
	for _, b := range nonZero {
		contracts = append(contracts, b.ContractAddress)
	}
	contracts = utils.UniqueStrings(contracts)

	metadata := NewMetadataResolver(chain, s.opts.MetadataTimeout, s.logger)
	prices := s.prices.ResolveTokenPrices(ctx, contracts, metadata)

	priced := make([]entity.RawBalance, 0, len(nonZero))
	for _, b := range nonZero {
		if _, ok := prices.Get(b.ContractAddress); ok || s.prices.IsOverride(b.ContractAddress) {
			priced = append(priced, b)
		}
	}

	metaByContract := s.resolveMetadata(ctx, priced, metadata)

	items := make([]entity.TreasuryToken, 0, len(priced)+1)
	for _, b := range priced {
		meta := metaByContract[b.ContractAddress]
		if !profile.Accepts(meta.Name) {
			continue
		}
		price := prices[b.ContractAddress]
		item, err := NormalizeBalance(b, meta, price)
		if err != nil {
			return nil, entity.NewComputationError("failed to normalize balance", err)
		}
		items = append(items, item)
	}
	items = MergeLineItems(items, profile.MergeStrategy)

	items = append(items, entity.TreasuryToken{
		Address:       profile.Native.Address,
		ParentAddress: addresses[0],
		Amount:        nativeAmount,
		Decimals:      profile.Native.Decimals,
		Name:          profile.Native.Name,
		Symbol:        profile.Native.Symbol,
		Logo:          profile.Native.Logo,
		Price:         nativePrice,
		Value:         nativeAmount.Mul(nativePrice),
		IsNative:      true,
	})

	total := TotalValue(items)
	ApplyPercentages(items, total)

	logger.Info("Portfolio valued",
		zap.Int("balances", len(rawBalances)),
		zap.Int("priced", len(priced)),
		zap.Int("lineItems", len(items)),
		zap.String("totalUSD", total.StringFixed(2)),
		zap.Duration("took", time.Since(start)))

	return &entity.PortfolioSnapshot{TotalValueInUSD: total, Portfolio: items}, nil
}

func (s *PortfolioServiceImpl) resolveMetadata(ctx context.Context, balances []entity.RawBalance, metadata port.MetadataResolver) map[string]entity.TokenMetadata {
	result := make(map[string]entity.TokenMetadata, len(balances))
	var mu sync.Mutex

	eg, childCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.opts.MaxConcurrency)
	seen := make(map[string]struct{}, len(balances))
	for _, b := range balances {
		if _, ok := seen[b.ContractAddress]; ok {
			continue
		}
		seen[b.ContractAddress] = struct{}{}
		contract := b.ContractAddress
		eg.Go(func() error {
			meta := metadata.Resolve(childCtx, contract)
			mu.Lock()
			result[contract] = meta
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()
	return result
}
