// Package bootstrap wires the configured components into a ready portfolio service.
package bootstrap

import (
	"fmt"
	"time"

	"treasury_api/internal/app/port"
	"treasury_api/internal/app/provider"
	"treasury_api/internal/app/service"
	"treasury_api/internal/client"
	"treasury_api/internal/infrastructure/configloader"
	clientprovider "treasury_api/internal/infrastructure/network/client"
	networkdefinition "treasury_api/internal/infrastructure/network/definition"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// App holds the wired application components.
type App struct {
	Portfolio port.PortfolioService
	Profiles  port.ProfileProvider

	l2Clients port.BlockchainClientProvider
}

// Build constructs every component from cfg.
func Build(cfg *configloader.Config, logger *zap.Logger) (*App, error) {
	networks := networkdefinition.NewNetworkDefinitionProvider(cfg.Networks, logger)
	profiles, err := provider.NewProfileProvider(
		cfg.Profiles,
		networks,
		provider.NewTokenProvider(logger),
		provider.NewWalletProvider(logger),
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build profiles: %w", err)
	}

	evmOpts := make(map[string]clientprovider.EVMClientOptions, len(cfg.Networks))
	for _, n := range cfg.Networks {
		evmOpts[n.Identifier] = clientprovider.EVMClientOptions{
			RPCCallTimeout:   configloader.Millis(n.RPCCallTimeoutMillis),
			MaxCallsPerBatch: n.MaxCallsPerBatch,
		}
	}
	l2Clients := clientprovider.NewEVMClientProvider(evmOpts, logger)

	chainTimeout := configloader.Millis(cfg.ChainProvider.RequestTimeoutMillis)
	chains := clientprovider.NewAlchemyClientFactory(clientprovider.AlchemyOptions{
		URLTemplate:    cfg.ChainProvider.URLTemplate,
		RequestTimeout: chainTimeout,
		MaxPages:       cfg.ChainProvider.MaxPages,
	}, logger)

	coinGecko := client.NewCoinGeckoClient(client.CoinGeckoOptions{
		BaseURL:             cfg.CoinGecko.BaseURL,
		APIKey:              cfg.CoinGecko.APIKey,
		Platform:            cfg.CoinGecko.Platform,
		VsCurrency:          cfg.CoinGecko.VsCurrency,
		Timeout:             configloader.Millis(cfg.CoinGecko.RequestTimeoutMillis),
		MaxTokensPerRequest: cfg.CoinGecko.MaxTokensPerRequest,
	}, logger)
	cryptoCompare := client.NewCryptoCompareClient(
		cfg.CryptoCompare.BaseURL,
		cfg.CryptoCompare.APIKey,
		configloader.Millis(cfg.CryptoCompare.RequestTimeoutMillis),
		logger,
	)

	overridePrice, err := decimal.NewFromString(cfg.PriceResolver.OverridePriceUSD)
	if err != nil {
		return nil, fmt.Errorf("invalid priceResolver.overridePriceUSD %q: %w", cfg.PriceResolver.OverridePriceUSD, err)
	}
	prices := service.NewPriceResolver(coinGecko, cryptoCompare, service.PriceResolverOptions{
		OverrideAddress:          cfg.PriceResolver.OverrideAddress,
		OverridePrice:            overridePrice,
		BlockedSymbolAddresses:   cfg.PriceResolver.BlockedSymbolAddresses,
		MaxSymbolLength:          cfg.PriceResolver.MaxSymbolLength,
		RejectedSymbolSubstrings: cfg.PriceResolver.RejectedSymbolSubstrings,
		RateLimit:                cfg.CryptoCompare.RateLimitPerSecond,
		Burst:                    cfg.CryptoCompare.RateLimitBurst,
		FallbackConcurrency:      cfg.PortfolioService.MaxConcurrency,
	}, logger)

	var lp port.LPPositionSource
	for _, p := range profiles.Profiles() {
		if p.LPEnabled {
			subgraph := client.NewSubgraphClient(cfg.Subgraph.URL, configloader.Millis(cfg.Subgraph.RequestTimeoutMillis), logger)
			lp = service.NewLPPositionSource(subgraph, logger)
			break
		}
	}

	balances := service.NewBalanceReader(l2Clients, lp, cfg.PortfolioService.MaxConcurrency, logger)
	portfolio := service.NewPortfolioService(chains, balances, prices, service.PortfolioServiceOptions{
		MetadataTimeout: chainTimeout,
		MaxConcurrency:  cfg.PortfolioService.MaxConcurrency,
	}, logger)

	return &App{Portfolio: portfolio, Profiles: profiles, l2Clients: l2Clients}, nil
}

// CacheTTL returns the response cache lifetime, zero when the cache is disabled.
func CacheTTL(cfg *configloader.Config) time.Duration {
	if !cfg.Cache.Enabled {
		return 0
	}
	return time.Duration(cfg.Cache.TTLSeconds) * time.Second
}

// Close releases the shared L2 RPC connections.
func (a *App) Close() {
	if closer, ok := a.l2Clients.(interface{ Close() }); ok {
		closer.Close()
	}
}
