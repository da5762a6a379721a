package client

import (
	"context"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"time"

	"treasury_api/internal/app/port"
	"treasury_api/internal/domain/entity"
	apientity "treasury_api/internal/entity"
	"treasury_api/internal/pkg/metrics"
	"treasury_api/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

const alchemySource = "alchemy"

// AlchemyOptions configures the chain data provider.
type AlchemyOptions struct {
	URLTemplate    string // must contain {apiKey}
	RequestTimeout time.Duration
	MaxPages       int
}

// alchemyClientFactory builds one immutable client per provider key.
type alchemyClientFactory struct {
	opts   AlchemyOptions
	logger *zap.Logger
}

// NewAlchemyClientFactory creates a port.ChainDataClientFactory for Alchemy compatible endpoints.
func NewAlchemyClientFactory(opts AlchemyOptions, logger *zap.Logger) port.ChainDataClientFactory {
	if opts.MaxPages <= 0 {
		opts.MaxPages = 20
	}
	return &alchemyClientFactory{opts: opts, logger: logger.Named("AlchemyClient")}
}

// NewChainDataClient implements port.ChainDataClientFactory.
func (f *alchemyClientFactory) NewChainDataClient(ctx context.Context, apiKey string) (port.ChainDataClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("chain provider api key is empty")
	}
	endpoint := strings.ReplaceAll(f.opts.URLTemplate, "{apiKey}", url.PathEscape(apiKey))

	rpcClient, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to dial chain provider: %w", err)
	}
	return &alchemyClient{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
		opts:      f.opts,
		logger:    f.logger,
	}, nil
}

// alchemyClient implements port.ChainDataClient.
type alchemyClient struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
	opts      AlchemyOptions
	logger    *zap.Logger
}

func (c *alchemyClient) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opts.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.opts.RequestTimeout)
}

// GetTokenBalances implements port.ChainDataClient. Pages are followed until no pageKey is returned.
func (c *alchemyClient) GetTokenBalances(ctx context.Context, owner string) ([]entity.RawBalance, error) {
	var (
		balances []entity.RawBalance
		pageKey  string
	)
	for page := 0; page < c.opts.MaxPages; page++ {
		args := []interface{}{owner, "erc20"}
		if pageKey != "" {
			args = append(args, map[string]string{"pageKey": pageKey})
		}

		var result apientity.AlchemyTokenBalances
		callCtx, cancel := c.callContext(ctx)
		err := c.rpcClient.CallContext(callCtx, &result, "alchemy_getTokenBalances", args...)
		cancel()
		metrics.ObserveUpstream(alchemySource, err)
		if err != nil {
			return nil, fmt.Errorf("alchemy_getTokenBalances for %s failed: %w", owner, err)
		}

		for _, tb := range result.TokenBalances {
			if tb.Error != nil && *tb.Error != "" {
				c.logger.Debug("Skipping token balance with error", zap.String("owner", owner),
					zap.String("contract", tb.ContractAddress), zap.String("error", *tb.Error))
				continue
			}
			contract, err := utils.NormalizeAddress(tb.ContractAddress)
			if err != nil {
				c.logger.Debug("Skipping token balance with invalid contract", zap.String("contract", tb.ContractAddress))
				continue
			}
			balances = append(balances, entity.RawBalance{
				ParentAddress:   owner,
				ContractAddress: contract,
				Balance:         tb.TokenBalance,
			})
		}

		if result.PageKey == "" {
			return balances, nil
		}
		pageKey = result.PageKey
	}

	c.logger.Warn("Token balance pagination stopped at page limit", zap.String("owner", owner), zap.Int("maxPages", c.opts.MaxPages))
	return balances, nil
}

// GetNativeBalance implements port.ChainDataClient.
func (c *alchemyClient) GetNativeBalance(ctx context.Context, owner string) (*big.Int, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	balance, err := c.ethClient.BalanceAt(callCtx, common.HexToAddress(owner), nil)
	metrics.ObserveUpstream(alchemySource, err)
	if err != nil {
		return nil, fmt.Errorf("eth_getBalance for %s failed: %w", owner, err)
	}
	return balance, nil
}

// GetTokenMetadata implements port.ChainDataClient.
func (c *alchemyClient) GetTokenMetadata(ctx context.Context, contractAddress string) (entity.TokenMetadata, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	var result apientity.AlchemyTokenMetadata
	err := c.rpcClient.CallContext(callCtx, &result, "alchemy_getTokenMetadata", contractAddress)
	metrics.ObserveUpstream(alchemySource, err)
	if err != nil {
		return entity.TokenMetadata{}, fmt.Errorf("alchemy_getTokenMetadata for %s failed: %w", contractAddress, err)
	}

	meta := entity.TokenMetadata{
		ContractAddress: contractAddress,
		Name:            result.Name,
		Symbol:          result.Symbol,
		Decimals:        entity.DefaultTokenDecimals,
	}
	if result.Decimals != nil && *result.Decimals > 0 {
		meta.Decimals = *result.Decimals
	}
	if result.Logo != nil {
		meta.Logo = *result.Logo
	}
	return meta, nil
}

// Close implements port.ChainDataClient.
func (c *alchemyClient) Close() {
	c.rpcClient.Close()
}
