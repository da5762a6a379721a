package service

import (
	"context"
	"strings"
	"testing"

	"treasury_api/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeSubgraph struct {
	positions []entity.SubgraphPosition
	err       error
}

func (s *fakeSubgraph) GetPositions(context.Context, string) ([]entity.SubgraphPosition, error) {
	return s.positions, s.err
}

func TestGetPositionBalances(t *testing.T) {
	subgraph := &fakeSubgraph{positions: []entity.SubgraphPosition{
		{
			ID:        "1",
			Liquidity: "250",
			Token0:    entity.SubgraphToken{ID: strings.ToLower(usdcAddress)},
			Token1:    entity.SubgraphToken{ID: strings.ToLower(wethAddress)},
			Pool: entity.SubgraphPool{
				ID:                     "pool",
				Liquidity:              "1000",
				TotalValueLockedToken0: "4000",
				TotalValueLockedToken1: "2",
			},
		},
		{
			ID:        "2",
			Liquidity: "1",
			Token0:    entity.SubgraphToken{ID: strings.ToLower(usdtAddress)},
			Token1:    entity.SubgraphToken{ID: strings.ToLower(daiAddress)},
			Pool:      entity.SubgraphPool{ID: "empty", Liquidity: "0"},
		},
	}}

	balances, err := NewLPPositionSource(subgraph, zaptest.NewLogger(t)).GetPositionBalances(context.Background(), treasuryAddress)
	require.NoError(t, err)
	require.Len(t, balances, 2)

	assert.Equal(t, usdcAddress, balances[0].ContractAddress)
	assert.Equal(t, "1000", balances[0].Balance)
	assert.True(t, balances[0].IsLP)
	assert.Equal(t, treasuryAddress, balances[0].ParentAddress)

	assert.Equal(t, wethAddress, balances[1].ContractAddress)
	assert.Equal(t, "0.5", balances[1].Balance)
}

func TestGetPositionBalancesError(t *testing.T) {
	_, err := NewLPPositionSource(&fakeSubgraph{err: errUpstream}, zaptest.NewLogger(t)).GetPositionBalances(context.Background(), treasuryAddress)
	assert.ErrorIs(t, err, errUpstream)
}
