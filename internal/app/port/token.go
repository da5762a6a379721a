package port

import (
	"context"

	"treasury_api/internal/domain/entity"
)

// TokenProvider defines the interface for fetching token definitions.
type TokenProvider interface {
	// GetBridgedTokens returns the L2 tokens of a token list file paired with their L1 counterparts.
	GetBridgedTokens(tokensFile string, l1ChainID, l2ChainID uint64) ([]entity.BridgedToken, error)
}

// MetadataResolver resolves token metadata. Implementations never fail;
// unresolved fields fall back to defaults.
type MetadataResolver interface {
	Resolve(ctx context.Context, contractAddress string) entity.TokenMetadata
}
