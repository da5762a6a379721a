package service

import (
	"context"
	"sync"
	"time"

	"treasury_api/internal/app/port"
	"treasury_api/internal/domain/entity"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// metadataResolverImpl resolves token metadata through the chain client of a single request.
// Results live as long as the resolver, so one resolver must not outlive its request.
type metadataResolverImpl struct {
	chain   port.ChainDataClient
	timeout time.Duration
	logger  *zap.Logger

	group    singleflight.Group
	mu       sync.Mutex
	resolved map[string]entity.TokenMetadata
}

// NewMetadataResolver creates a request-scoped port.MetadataResolver.
func NewMetadataResolver(chain port.ChainDataClient, timeout time.Duration, logger *zap.Logger) port.MetadataResolver {
	return &metadataResolverImpl{
		chain:    chain,
		timeout:  timeout,
		logger:   logger.Named("MetadataResolver"),
		resolved: make(map[string]entity.TokenMetadata),
	}
}

// Resolve implements port.MetadataResolver. Each address hits the provider at most once;
// lookup failures resolve to empty names and the default 18 decimals, and so does a
// reported decimals of zero.
func (r *metadataResolverImpl) Resolve(ctx context.Context, contractAddress string) entity.TokenMetadata {
	r.mu.Lock()
	meta, ok := r.resolved[contractAddress]
	r.mu.Unlock()
	if ok {
		return meta
	}

	v, _, _ := r.group.Do(contractAddress, func() (interface{}, error) {
		r.mu.Lock()
		if cached, ok := r.resolved[contractAddress]; ok {
			r.mu.Unlock()
			return cached, nil
		}
		r.mu.Unlock()

		meta := r.lookup(ctx, contractAddress)

		r.mu.Lock()
		r.resolved[contractAddress] = meta
		r.mu.Unlock()
		return meta, nil
	})
	return v.(entity.TokenMetadata)
}

func (r *metadataResolverImpl) lookup(ctx context.Context, contractAddress string) entity.TokenMetadata {
	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	meta, err := r.chain.GetTokenMetadata(callCtx, contractAddress)
	if err != nil {
		r.logger.Warn("Token metadata lookup failed, using defaults",
			zap.String("contract", contractAddress), zap.Error(err))
		return entity.TokenMetadata{ContractAddress: contractAddress, Decimals: entity.DefaultTokenDecimals}
	}
	meta.ContractAddress = contractAddress
	if meta.Decimals <= 0 {
		meta.Decimals = entity.DefaultTokenDecimals
	}
	return meta
}
