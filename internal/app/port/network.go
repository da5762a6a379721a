package port

import (
	"context"
	"math/big"

	"treasury_api/internal/domain/entity"
)

// ChainDataClient reads account-level data from the L1 chain data provider.
// A client is bound to one provider key and is used for a single request.
type ChainDataClient interface {
	// GetTokenBalances enumerates every ERC-20 balance of owner, including zero words.
	GetTokenBalances(ctx context.Context, owner string) ([]entity.RawBalance, error)

	// GetNativeBalance fetches the native coin balance of owner in wei.
	GetNativeBalance(ctx context.Context, owner string) (*big.Int, error)

	// GetTokenMetadata fetches name, symbol, decimals and logo of a contract.
	GetTokenMetadata(ctx context.Context, contractAddress string) (entity.TokenMetadata, error)

	// Close releases the underlying connection.
	Close()
}

// ChainDataClientFactory builds a ChainDataClient for the caller supplied provider key.
type ChainDataClientFactory interface {
	NewChainDataClient(ctx context.Context, apiKey string) (ChainDataClient, error)
}

// BlockchainClient reads balances from a public RPC endpoint of a network.
type BlockchainClient interface {
	// GetBalances executes the requests as one or more JSON-RPC batches.
	GetBalances(ctx context.Context, requests []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error)

	// Definition returns the network definition associated with this client.
	Definition() entity.NetworkDefinition
}

// BlockchainClientProvider defines the interface for providing blockchain clients.
type BlockchainClientProvider interface {
	GetClient(ctx context.Context, networkDefinition entity.NetworkDefinition) (BlockchainClient, error)
}

// LPPositionSource decomposes LP positions of an owner into constituent token balances.
type LPPositionSource interface {
	GetPositionBalances(ctx context.Context, owner string) ([]entity.RawBalance, error)
}

// NetworkDefinitionProvider defines the interface for providing network definitions.
type NetworkDefinitionProvider interface {
	// GetAllNetworkDefinitions returns all available network definitions as a slice.
	GetAllNetworkDefinitions() []entity.NetworkDefinition

	// GetNetworkDefinitionByName returns a specific network definition by its identifier.
	// Возвращает определение и true, если найдено, иначе false.
	GetNetworkDefinitionByName(identifier string) (entity.NetworkDefinition, bool)
}
