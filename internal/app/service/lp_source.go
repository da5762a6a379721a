package service

import (
	"context"
	"fmt"

	"treasury_api/internal/app/port"
	"treasury_api/internal/client"
	"treasury_api/internal/domain/entity"
	"treasury_api/internal/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type lpPositionSourceImpl struct {
	subgraph client.SubgraphClient
	logger   *zap.Logger
}

// NewLPPositionSource creates a port.LPPositionSource backed by the positions subgraph.
func NewLPPositionSource(subgraph client.SubgraphClient, logger *zap.Logger) port.LPPositionSource {
	return &lpPositionSourceImpl{subgraph: subgraph, logger: logger.Named("LPPositionSource")}
}

// GetPositionBalances implements port.LPPositionSource. A position owns
// liquidity/poolLiquidity of each side of the pool's locked value.
func (s *lpPositionSourceImpl) GetPositionBalances(ctx context.Context, owner string) ([]entity.RawBalance, error) {
	positions, err := s.subgraph.GetPositions(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("lp positions of %s: %w", owner, err)
	}

	var balances []entity.RawBalance
	for _, pos := range positions {
		liquidity, err := decimal.NewFromString(pos.Liquidity)
		if err != nil {
			s.logger.Warn("Skipping position with invalid liquidity", zap.String("position", pos.ID), zap.Error(err))
			continue
		}
		poolLiquidity, err := decimal.NewFromString(pos.Pool.Liquidity)
		if err != nil || poolLiquidity.IsZero() {
			s.logger.Debug("Skipping position of empty pool", zap.String("position", pos.ID), zap.String("pool", pos.Pool.ID))
			continue
		}
		share := liquidity.Div(poolLiquidity)

		sides := []struct {
			token  string
			locked string
		}{
			{pos.Token0.ID, pos.Pool.TotalValueLockedToken0},
			{pos.Token1.ID, pos.Pool.TotalValueLockedToken1},
		}
		for _, side := range sides {
			contract, err := utils.NormalizeAddress(side.token)
			if err != nil {
				continue
			}
			locked, err := decimal.NewFromString(side.locked)
			if err != nil {
				continue
			}
			amount := share.Mul(locked)
			if amount.Sign() <= 0 {
				continue
			}
			balances = append(balances, entity.RawBalance{
				ParentAddress:   owner,
				ContractAddress: contract,
				Balance:         amount.String(),
				IsLP:            true,
			})
		}
	}
	return balances, nil
}
