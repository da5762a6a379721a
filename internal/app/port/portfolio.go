package port

import (
	"context"

	"treasury_api/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// PortfolioService builds valuation snapshots.
type PortfolioService interface {
	// GetPortfolio values the requested addresses under the request's profile.
	GetPortfolio(ctx context.Context, req entity.PortfolioRequest) (*entity.PortfolioSnapshot, error)
}

// BalanceReader discovers raw balances of a set of addresses across every configured source.
type BalanceReader interface {
	ReadBalances(ctx context.Context, chain ChainDataClient, profile *entity.ChainProfile, addresses []string) ([]entity.RawBalance, error)

	// ReadNativeBalance returns the scaled native balance of owner summed over L1 and, when enabled, L2.
	ReadNativeBalance(ctx context.Context, chain ChainDataClient, profile *entity.ChainProfile, owner string) (decimal.Decimal, error)
}

// ProfileProvider exposes the configured endpoint profiles.
type ProfileProvider interface {
	Profiles() []*entity.ChainProfile
	GetProfile(name string) (*entity.ChainProfile, bool)
}
