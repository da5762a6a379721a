package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"treasury_api/internal/app/port"
	"treasury_api/internal/domain/entity"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	defaultProviderConnectionTimeout = 10 * time.Second
	defaultRPCCallTimeout            = 15 * time.Second
)

// evmClientProvider implements the port.BlockchainClientProvider interface.
// Public RPC clients carry no caller credentials, so they are shared across requests.
// Dials run outside mu, one at a time per network.
type evmClientProvider struct {
	clients map[string]*EVMClient
	mu      sync.Mutex
	dials   singleflight.Group
	opts    map[string]EVMClientOptions
	logger  *zap.Logger
}

// NewEVMClientProvider creates a new EVMClientProvider. opts holds per-network
// options keyed by network identifier.
func NewEVMClientProvider(opts map[string]EVMClientOptions, logger *zap.Logger) port.BlockchainClientProvider {
	if opts == nil {
		opts = make(map[string]EVMClientOptions)
	}
	return &evmClientProvider{
		clients: make(map[string]*EVMClient),
		opts:    opts,
		logger:  logger.Named("EVMClientProvider"),
	}
}

// GetClient retrieves a blockchain client for the given network definition.
// It caches clients to avoid reconnecting repeatedly.
func (p *evmClientProvider) GetClient(ctx context.Context, netDef entity.NetworkDefinition) (port.BlockchainClient, error) {
	if client, ok := p.cached(netDef.Identifier); ok {
		return client, nil
	}

	v, err, _ := p.dials.Do(netDef.Identifier, func() (interface{}, error) {
		if client, ok := p.cached(netDef.Identifier); ok {
			return client, nil
		}

		p.logger.Info("Creating new EVM client", zap.String("network", netDef.Identifier), zap.String("rpc_primary", netDef.PrimaryRPCURL))
		newClient, err := NewEVMClient(ctx, netDef, p.opts[netDef.Identifier], p.logger)
		if err != nil {
			p.logger.Error("Failed to create EVM client", zap.String("network", netDef.Identifier), zap.Error(err))
			return nil, fmt.Errorf("failed to create EVM client for %s: %w", netDef.Identifier, err)
		}

		p.mu.Lock()
		p.clients[netDef.Identifier] = newClient
		p.mu.Unlock()
		return newClient, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*EVMClient), nil
}

func (p *evmClientProvider) cached(identifier string) (*EVMClient, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	client, ok := p.clients[identifier]
	return client, ok
}

// Close closes every cached client.
func (p *evmClientProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, c := range p.clients {
		c.Close()
		delete(p.clients, id)
	}
}
