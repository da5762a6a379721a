package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"treasury_api/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSubgraphGetPositions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req entity.GraphQLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Query, "$owner: Bytes!", "Position.owner is a Bytes field")
		assert.Contains(t, req.Query, "owner: $owner")
		assert.Contains(t, req.Query, "liquidity_gt: 0")
		assert.Equal(t, "0x5c128d25a21f681e678cb050e551a895c9309945", req.Variables["owner"])

		w.Write([]byte(`{"data":{"positions":[{
			"id":"1","liquidity":"50",
			"token0":{"id":"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48","symbol":"USDC","decimals":"6"},
			"token1":{"id":"0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2","symbol":"WETH","decimals":"18"},
			"pool":{"id":"0xpool","liquidity":"100","totalValueLockedToken0":"1000","totalValueLockedToken1":"2.5"}
		}]}}`))
	}))
	defer server.Close()

	c := NewSubgraphClient(server.URL, time.Second, zap.NewNop())
	positions, err := c.GetPositions(context.Background(), "0x5C128d25A21f681e678cB050E551A895c9309945")
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "USDC", positions[0].Token0.Symbol)
	assert.Equal(t, "2.5", positions[0].Pool.TotalValueLockedToken1)
}

func TestSubgraphGraphQLErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"message":"indexer unavailable"}]}`))
	}))
	defer server.Close()

	_, err := NewSubgraphClient(server.URL, time.Second, zap.NewNop()).GetPositions(context.Background(), "0x5C128d25A21f681e678cB050E551A895c9309945")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "indexer unavailable")
}
