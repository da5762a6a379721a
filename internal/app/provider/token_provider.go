package provider

import (
	"fmt"
	"sync"

	"treasury_api/internal/app/port"
	"treasury_api/internal/domain/entity"
	"treasury_api/internal/infrastructure/tokenloader"

	"go.uber.org/zap"
)

type tokenProviderImpl struct {
	mu          sync.Mutex
	tokensCache map[string][]entity.BridgedToken // Cache loaded tokens
	logger      *zap.Logger
}

// NewTokenProvider creates a new TokenProvider.
func NewTokenProvider(logger *zap.Logger) port.TokenProvider {
	return &tokenProviderImpl{
		tokensCache: make(map[string][]entity.BridgedToken),
		logger:      logger.Named("TokenProvider"),
	}
}

// GetBridgedTokens loads token definitions from a token list file.
// It caches the results after the first successful load.
func (p *tokenProviderImpl) GetBridgedTokens(tokensFile string, l1ChainID, l2ChainID uint64) ([]entity.BridgedToken, error) {
	key := fmt.Sprintf("%s|%d|%d", tokensFile, l1ChainID, l2ChainID)

	p.mu.Lock()
	defer p.mu.Unlock()
	if cached, ok := p.tokensCache[key]; ok {
		p.logger.Debug("Returning cached bridged tokens", zap.String("file", tokensFile))
		return cached, nil
	}

	tokens, err := tokenloader.LoadTokenList(tokensFile)
	if err != nil {
		p.logger.Error("Failed to load tokens", zap.String("file", tokensFile), zap.Error(err))
		return nil, err
	}
	bridged := tokenloader.PairBridgedTokens(tokens, l1ChainID, l2ChainID, p.logger)

	p.tokensCache[key] = bridged
	p.logger.Info("Tokens loaded and cached successfully", zap.String("file", tokensFile),
		zap.Int("listed", len(tokens)), zap.Int("bridged", len(bridged)))
	return bridged, nil
}
