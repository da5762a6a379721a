package port

import (
	"context"

	"treasury_api/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// PrimaryPriceProvider is the batched price source.
type PrimaryPriceProvider interface {
	// GetNativePrice returns the USD price of the coin with the given provider id.
	GetNativePrice(ctx context.Context, coinID string) (decimal.Decimal, error)

	// GetTokenPrices returns USD prices keyed by checksummed contract address.
	// Contracts the provider does not know are absent from the map.
	GetTokenPrices(ctx context.Context, contractAddresses []string) (map[string]decimal.Decimal, error)
}

// SecondaryPriceProvider is the single asset price-by-symbol source.
type SecondaryPriceProvider interface {
	GetPriceBySymbol(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// PriceResolver resolves USD prices with fallbacks. It never returns an error.
type PriceResolver interface {
	// ResolveNativePrice returns the native coin price, or zero when every source failed.
	ResolveNativePrice(ctx context.Context, native entity.NativeAsset) decimal.Decimal

	// ResolveTokenPrices prices the given contracts. metadata is used for the per-token symbol fallback.
	ResolveTokenPrices(ctx context.Context, contractAddresses []string, metadata MetadataResolver) entity.PriceMap

	// IsOverride reports whether address carries the hardcoded fallback price.
	IsOverride(address string) bool
}
