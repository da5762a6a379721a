package tokenloader

import (
	"fmt"
	"os"
	"strings"

	"treasury_api/internal/domain/entity"
	"treasury_api/internal/pkg/utils"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// tokenListFile is the token-list JSON layout ({"name": ..., "tokens": [...]}).
type tokenListFile struct {
	Name   string             `json:"name"`
	Tokens []entity.TokenInfo `json:"tokens"`
}

// LoadTokenList reads a token list file. Both the token-list object layout and
// a bare array of tokens are accepted.
func LoadTokenList(filePath string) ([]entity.TokenInfo, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file %s: %w", filePath, err)
	}

	var list tokenListFile
	if err := json.Unmarshal(data, &list); err == nil && list.Tokens != nil {
		return list.Tokens, nil
	}

	var tokens []entity.TokenInfo
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tokens from %s: %w", filePath, err)
	}
	return tokens, nil
}

// PairBridgedTokens matches every token of l2ChainID with the l1ChainID token of
// the same symbol. L2 tokens without an L1 counterpart cannot be priced and are skipped.
func PairBridgedTokens(tokens []entity.TokenInfo, l1ChainID, l2ChainID uint64, logger *zap.Logger) []entity.BridgedToken {
	l1BySymbol := make(map[string]entity.TokenInfo)
	for _, t := range tokens {
		if t.ChainID != l1ChainID {
			continue
		}
		key := strings.ToUpper(t.Symbol)
		if _, exists := l1BySymbol[key]; !exists {
			l1BySymbol[key] = t
		}
	}

	var bridged []entity.BridgedToken
	seen := make(map[string]struct{})
	for _, t := range tokens {
		if t.ChainID != l2ChainID {
			continue
		}
		l2Address, err := utils.NormalizeAddress(t.Address)
		if err != nil {
			logger.Warn("Token has invalid address, skipping token.", zap.String("symbol", t.Symbol), zap.String("address", t.Address))
			continue
		}
		if _, dup := seen[l2Address]; dup {
			continue
		}
		l1, ok := l1BySymbol[strings.ToUpper(t.Symbol)]
		if !ok {
			logger.Debug("L2 token has no L1 counterpart, skipping token.", zap.String("symbol", t.Symbol), zap.String("address", l2Address))
			continue
		}
		l1Address, err := utils.NormalizeAddress(l1.Address)
		if err != nil {
			logger.Warn("L1 token has invalid address, skipping token.", zap.String("symbol", l1.Symbol), zap.String("address", l1.Address))
			continue
		}
		seen[l2Address] = struct{}{}
		bridged = append(bridged, entity.BridgedToken{
			Symbol:    t.Symbol,
			Name:      t.Name,
			Decimals:  t.Decimals,
			L1Address: l1Address,
			L2Address: l2Address,
		})
	}
	return bridged
}
