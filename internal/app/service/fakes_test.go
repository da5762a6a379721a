package service

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"treasury_api/internal/app/port"
	"treasury_api/internal/domain/entity"

	"github.com/shopspring/decimal"
)

const (
	treasuryAddress = "0x78605Df79524164911C144801f41e9811B7DB73D"
	lpOwnerAddress  = "0x5C128d25A21f681e678cB050E551A895c9309945"
	usdcAddress     = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	wethAddress     = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	usdtAddress     = "0xdAC17F958D2ee523a2206206994597C13D831ec7"
	daiAddress      = "0x6B175474E89094C44Da98b954EedeAC495271d0F"
)

var errUpstream = errors.New("upstream down")

type fakeChain struct {
	mu            sync.Mutex
	balances      map[string][]entity.RawBalance
	balanceErr    error
	native        map[string]*big.Int
	nativeErr     error
	metadata      map[string]entity.TokenMetadata
	metadataErr   error
	metadataCalls map[string]int
	closed        bool
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		balances:      make(map[string][]entity.RawBalance),
		native:        make(map[string]*big.Int),
		metadata:      make(map[string]entity.TokenMetadata),
		metadataCalls: make(map[string]int),
	}
}

func (c *fakeChain) GetTokenBalances(_ context.Context, owner string) ([]entity.RawBalance, error) {
	if c.balanceErr != nil {
		return nil, c.balanceErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]entity.RawBalance(nil), c.balances[owner]...), nil
}

func (c *fakeChain) GetNativeBalance(_ context.Context, owner string) (*big.Int, error) {
	if c.nativeErr != nil {
		return nil, c.nativeErr
	}
	if v, ok := c.native[owner]; ok {
		return v, nil
	}
	return big.NewInt(0), nil
}

func (c *fakeChain) GetTokenMetadata(_ context.Context, contract string) (entity.TokenMetadata, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metadataCalls[contract]++
	if c.metadataErr != nil {
		return entity.TokenMetadata{}, c.metadataErr
	}
	return c.metadata[contract], nil
}

func (c *fakeChain) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

type fakeChainFactory struct {
	chain *fakeChain
	err   error
	keys  []string
}

func (f *fakeChainFactory) NewChainDataClient(_ context.Context, apiKey string) (port.ChainDataClient, error) {
	f.keys = append(f.keys, apiKey)
	if f.err != nil {
		return nil, f.err
	}
	return f.chain, nil
}

type fakePrimary struct {
	mu         sync.Mutex
	native     decimal.Decimal
	nativeErr  error
	tokens     map[string]decimal.Decimal
	tokensErr  error
	tokenCalls int
}

func (p *fakePrimary) GetNativePrice(context.Context, string) (decimal.Decimal, error) {
	return p.native, p.nativeErr
}

func (p *fakePrimary) GetTokenPrices(_ context.Context, addrs []string) (map[string]decimal.Decimal, error) {
	p.mu.Lock()
	p.tokenCalls++
	p.mu.Unlock()
	if p.tokensErr != nil {
		return nil, p.tokensErr
	}
	out := make(map[string]decimal.Decimal)
	for _, a := range addrs {
		if v, ok := p.tokens[a]; ok {
			out[a] = v
		}
	}
	return out, nil
}

type fakeSecondary struct {
	mu      sync.Mutex
	prices  map[string]decimal.Decimal
	symbols []string
}

func (s *fakeSecondary) GetPriceBySymbol(_ context.Context, symbol string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.symbols = append(s.symbols, symbol)
	if v, ok := s.prices[symbol]; ok {
		return v, nil
	}
	return decimal.Zero, errUpstream
}

type fakeL2Client struct {
	def      entity.NetworkDefinition
	balances map[string]*big.Int // wallet|token, token is empty for native
	failing  map[string]bool
	err      error
	requests []entity.BalanceRequestItem
}

func (c *fakeL2Client) GetBalances(_ context.Context, reqs []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	c.requests = append(c.requests, reqs...)
	if c.err != nil {
		return nil, c.err
	}
	results := make([]entity.BalanceResultItem, len(reqs))
	for i, r := range reqs {
		key := r.WalletAddress + "|" + r.TokenAddress
		results[i] = entity.BalanceResultItem{
			WalletAddress: r.WalletAddress,
			TokenAddress:  r.TokenAddress,
			TokenSymbol:   r.TokenSymbol,
			IsNative:      r.Type == entity.NativeBalanceRequest,
		}
		if c.failing[key] {
			results[i].Error = errUpstream
			continue
		}
		if v, ok := c.balances[key]; ok {
			results[i].Balance = v
		} else {
			results[i].Balance = big.NewInt(0)
		}
	}
	return results, nil
}

func (c *fakeL2Client) Definition() entity.NetworkDefinition { return c.def }

type fakeL2Provider struct {
	client *fakeL2Client
	err    error
}

func (p *fakeL2Provider) GetClient(context.Context, entity.NetworkDefinition) (port.BlockchainClient, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.client, nil
}

type fakeLP struct {
	balances []entity.RawBalance
	err      error
	owners   []string
}

func (l *fakeLP) GetPositionBalances(_ context.Context, owner string) ([]entity.RawBalance, error) {
	l.owners = append(l.owners, owner)
	return l.balances, l.err
}

func hexWord(v int64) string {
	return "0x" + leftPad(big.NewInt(v).Text(16), 64)
}

func leftPad(s string, n int) string {
	for len(s) < n {
		s = "0" + s
	}
	return s
}

func ethProfile() *entity.ChainProfile {
	return &entity.ChainProfile{
		Name:  "portfolio",
		Route: "/api/v1/portfolio",
		Native: entity.NativeAsset{
			Address:     "eth",
			Name:        "Ethereum",
			Symbol:      "ETH",
			Logo:        "https://token-icons.s3.amazonaws.com/eth.png",
			Decimals:    18,
			CoinGeckoID: "ethereum",
		},
		MergeStrategy: entity.MergeBySymbol,
	}
}
