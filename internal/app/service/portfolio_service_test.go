package service

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"treasury_api/internal/app/port"
	"treasury_api/internal/domain/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type portfolioFixture struct {
	chain     *fakeChain
	factory   *fakeChainFactory
	primary   *fakePrimary
	secondary *fakeSecondary
	lp        *fakeLP
}

func newPortfolioFixture() *portfolioFixture {
	chain := newFakeChain()
	chain.native[treasuryAddress] = new(big.Int).Mul(big.NewInt(2), big.NewInt(1e18))
	chain.balances[treasuryAddress] = []entity.RawBalance{
		{ContractAddress: usdcAddress, Balance: hexWord(500_000_000)},
	}
	chain.metadata[usdcAddress] = entity.TokenMetadata{Name: "USD Coin", Symbol: "USDC", Decimals: 6, Logo: "usdc.png"}

	return &portfolioFixture{
		chain:     chain,
		factory:   &fakeChainFactory{chain: chain},
		primary:   &fakePrimary{native: decimal.NewFromInt(3000), tokens: map[string]decimal.Decimal{usdcAddress: decimal.NewFromInt(1)}},
		secondary: &fakeSecondary{},
		lp:        &fakeLP{},
	}
}

func (f *portfolioFixture) service(t *testing.T) port.PortfolioService {
	logger := zaptest.NewLogger(t)
	resolver := NewPriceResolver(f.primary, f.secondary, PriceResolverOptions{
		OverrideAddress:        overrideAddressLower,
		OverridePrice:          decimal.NewFromInt(650),
		BlockedSymbolAddresses: []string{overrideAddressLower},
		MaxSymbolLength:        28,
		RateLimit:              1000,
		Burst:                  10,
	}, logger)
	reader := NewBalanceReader(nil, f.lp, 4, logger)
	return NewPortfolioService(f.factory, reader, resolver, PortfolioServiceOptions{MaxConcurrency: 4}, logger)
}

func request(profile *entity.ChainProfile, addresses ...string) entity.PortfolioRequest {
	return entity.PortfolioRequest{Profile: profile, Addresses: addresses, APIKey: "key"}
}

func TestGetPortfolio(t *testing.T) {
	f := newPortfolioFixture()

	snapshot, err := f.service(t).GetPortfolio(context.Background(), request(ethProfile(), treasuryAddress))
	require.NoError(t, err)

	assert.Equal(t, "6500", snapshot.TotalValueInUSD.String())
	require.Len(t, snapshot.Portfolio, 2)

	usdc := snapshot.Portfolio[0]
	assert.Equal(t, usdcAddress, usdc.Address)
	assert.Equal(t, treasuryAddress, usdc.ParentAddress)
	assert.Equal(t, "500", usdc.Amount.String())
	assert.Equal(t, "USDC", usdc.Symbol)
	assert.Equal(t, "7.69%", usdc.PercentOfHoldings)

	eth := snapshot.Portfolio[1]
	assert.True(t, eth.IsNative)
	assert.Equal(t, "eth", eth.Address)
	assert.Equal(t, "2", eth.Amount.String())
	assert.Equal(t, "6000", eth.Value.String())
	assert.Equal(t, "92.31%", eth.PercentOfHoldings)

	assert.Equal(t, []string{"key"}, f.factory.keys)
	assert.True(t, f.chain.closed)
}

func TestGetPortfolioExcludesZeroSentinel(t *testing.T) {
	f := newPortfolioFixture()
	f.chain.balances[treasuryAddress] = append(f.chain.balances[treasuryAddress],
		entity.RawBalance{ContractAddress: wethAddress, Balance: entity.ZeroBalanceHash})
	f.primary.tokens[wethAddress] = decimal.NewFromInt(3000)

	snapshot, err := f.service(t).GetPortfolio(context.Background(), request(ethProfile(), treasuryAddress))
	require.NoError(t, err)
	for _, item := range snapshot.Portfolio {
		assert.NotEqual(t, wethAddress, item.Address)
	}
	assert.Zero(t, f.chain.metadataCalls[wethAddress])
}

func TestGetPortfolioDropsUnpricedAndFiltersNames(t *testing.T) {
	f := newPortfolioFixture()
	f.chain.balances[treasuryAddress] = append(f.chain.balances[treasuryAddress],
		entity.RawBalance{ContractAddress: wethAddress, Balance: hexWord(1)},
		entity.RawBalance{ContractAddress: daiAddress, Balance: hexWord(1)},
	)
	f.chain.metadata[daiAddress] = entity.TokenMetadata{Name: "BitDAO", Symbol: "BIT", Decimals: 18}
	f.primary.tokens[daiAddress] = decimal.NewFromInt(1)

	profile := ethProfile()
	profile.ExcludeNames = []string{"BitDAO"}

	snapshot, err := f.service(t).GetPortfolio(context.Background(), request(profile, treasuryAddress))
	require.NoError(t, err)
	require.Len(t, snapshot.Portfolio, 2)
	assert.Equal(t, "USDC", snapshot.Portfolio[0].Symbol)
	assert.Zero(t, f.chain.metadataCalls[wethAddress], "unpriced tokens are never resolved")
}

func TestGetPortfolioIncludeNames(t *testing.T) {
	f := newPortfolioFixture()
	profile := ethProfile()
	profile.IncludeNames = []string{"Wrapped Ether"}

	snapshot, err := f.service(t).GetPortfolio(context.Background(), request(profile, treasuryAddress))
	require.NoError(t, err)
	require.Len(t, snapshot.Portfolio, 1)
	assert.True(t, snapshot.Portfolio[0].IsNative)
	assert.Equal(t, "100%", snapshot.Portfolio[0].PercentOfHoldings)
}

func TestGetPortfolioKeepsOverrideToken(t *testing.T) {
	f := newPortfolioFixture()
	override := overrideAddress(t)
	f.chain.balances[treasuryAddress] = []entity.RawBalance{{ContractAddress: override, Balance: hexWord(1e18)}}
	f.chain.metadata[override] = entity.TokenMetadata{Name: "Override", Symbol: "OVR", Decimals: 18}
	f.primary.tokensErr = errUpstream

	snapshot, err := f.service(t).GetPortfolio(context.Background(), request(ethProfile(), treasuryAddress))
	require.NoError(t, err)
	require.Len(t, snapshot.Portfolio, 2)
	assert.Equal(t, "650", snapshot.Portfolio[0].Value.String())
	assert.Equal(t, "6650", snapshot.TotalValueInUSD.String())
}

func TestGetPortfolioMergesAcrossAddresses(t *testing.T) {
	f := newPortfolioFixture()
	f.chain.balances[lpOwnerAddress] = []entity.RawBalance{{ContractAddress: usdcAddress, Balance: hexWord(1_500_000_000)}}

	snapshot, err := f.service(t).GetPortfolio(context.Background(), request(ethProfile(), treasuryAddress, lpOwnerAddress))
	require.NoError(t, err)
	require.Len(t, snapshot.Portfolio, 2)
	assert.Equal(t, "2000", snapshot.Portfolio[0].Amount.String())
	assert.Equal(t, treasuryAddress, snapshot.Portfolio[0].ParentAddress)
	assert.Equal(t, "8000", snapshot.TotalValueInUSD.String())
}

func TestGetPortfolioIsIdempotent(t *testing.T) {
	f := newPortfolioFixture()
	svc := f.service(t)

	first, err := svc.GetPortfolio(context.Background(), request(ethProfile(), treasuryAddress))
	require.NoError(t, err)
	second, err := svc.GetPortfolio(context.Background(), request(ethProfile(), treasuryAddress))
	require.NoError(t, err)

	assert.True(t, first.TotalValueInUSD.Equal(second.TotalValueInUSD))
	require.Len(t, second.Portfolio, len(first.Portfolio))
	for i := range first.Portfolio {
		assert.Equal(t, first.Portfolio[i].PercentOfHoldings, second.Portfolio[i].PercentOfHoldings)
	}
}

func TestGetPortfolioZeroTotal(t *testing.T) {
	f := newPortfolioFixture()
	f.chain.balances = map[string][]entity.RawBalance{}
	f.chain.native = map[string]*big.Int{}

	snapshot, err := f.service(t).GetPortfolio(context.Background(), request(ethProfile(), treasuryAddress))
	require.NoError(t, err)
	assert.True(t, snapshot.TotalValueInUSD.IsZero())
	require.Len(t, snapshot.Portfolio, 1)
	assert.Equal(t, "0%", snapshot.Portfolio[0].PercentOfHoldings)
}

func TestGetPortfolioErrors(t *testing.T) {
	kindOf := func(err error) entity.ErrorKind {
		var pe *entity.PortfolioError
		require.True(t, errors.As(err, &pe), "unexpected error type %T", err)
		return pe.Kind
	}

	t.Run("missing key", func(t *testing.T) {
		f := newPortfolioFixture()
		req := request(ethProfile(), treasuryAddress)
		req.APIKey = " "
		_, err := f.service(t).GetPortfolio(context.Background(), req)
		assert.Equal(t, entity.ValidationError, kindOf(err))
		assert.ErrorIs(t, err, ErrMissingAPIKey)
		assert.Empty(t, f.factory.keys)
	})

	t.Run("invalid address", func(t *testing.T) {
		f := newPortfolioFixture()
		_, err := f.service(t).GetPortfolio(context.Background(), request(ethProfile(), "0x1234"))
		assert.Equal(t, entity.ValidationError, kindOf(err))
	})

	t.Run("no addresses", func(t *testing.T) {
		f := newPortfolioFixture()
		_, err := f.service(t).GetPortfolio(context.Background(), request(ethProfile()))
		assert.Equal(t, entity.ValidationError, kindOf(err))
	})

	t.Run("balances fail", func(t *testing.T) {
		f := newPortfolioFixture()
		f.chain.balanceErr = errUpstream
		_, err := f.service(t).GetPortfolio(context.Background(), request(ethProfile(), treasuryAddress))
		assert.Equal(t, entity.UpstreamError, kindOf(err))
		assert.ErrorIs(t, err, errUpstream)
		assert.True(t, f.chain.closed)
	})

	t.Run("provider unavailable", func(t *testing.T) {
		f := newPortfolioFixture()
		f.factory.err = errUpstream
		_, err := f.service(t).GetPortfolio(context.Background(), request(ethProfile(), treasuryAddress))
		assert.Equal(t, entity.UpstreamError, kindOf(err))
	})

	t.Run("native price exhausted still values tokens", func(t *testing.T) {
		f := newPortfolioFixture()
		f.primary.nativeErr = errUpstream
		snapshot, err := f.service(t).GetPortfolio(context.Background(), request(ethProfile(), treasuryAddress))
		require.NoError(t, err)
		assert.Equal(t, "500", snapshot.TotalValueInUSD.String())
	})
}

func TestMetadataResolverResolvesOncePerAddress(t *testing.T) {
	chain := newFakeChain()
	chain.metadata[usdcAddress] = entity.TokenMetadata{Name: "USD Coin", Symbol: "USDC", Decimals: 6}
	resolver := NewMetadataResolver(chain, 0, zaptest.NewLogger(t))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			meta := resolver.Resolve(context.Background(), usdcAddress)
			assert.Equal(t, int32(6), meta.Decimals)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, chain.metadataCalls[usdcAddress])
}

func TestMetadataResolverZeroDecimals(t *testing.T) {
	chain := newFakeChain()
	chain.metadata[usdcAddress] = entity.TokenMetadata{Name: "USD Coin", Symbol: "USDC", Decimals: 0}
	resolver := NewMetadataResolver(chain, 0, zaptest.NewLogger(t))

	meta := resolver.Resolve(context.Background(), usdcAddress)
	assert.Equal(t, entity.DefaultTokenDecimals, meta.Decimals)
	assert.Equal(t, "USDC", meta.Symbol)
}

func TestMetadataResolverDefaultsOnFailure(t *testing.T) {
	chain := newFakeChain()
	chain.metadataErr = errUpstream
	resolver := NewMetadataResolver(chain, 0, zaptest.NewLogger(t))

	meta := resolver.Resolve(context.Background(), usdcAddress)
	assert.Equal(t, entity.DefaultTokenDecimals, meta.Decimals)
	assert.Equal(t, usdcAddress, meta.ContractAddress)
	assert.Empty(t, meta.Name)
}
