package networkdefinition

import (
	"testing"

	"treasury_api/internal/infrastructure/configloader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProviderOverlaysConfig(t *testing.T) {
	p := NewNetworkDefinitionProvider([]configloader.NetworkNodeConfig{
		{Identifier: "mantle", RPCURL: "https://private.mantle.example"},
		{Identifier: "devnet", ChainID: 1337, RPCURL: "http://localhost:8545", NativeSymbol: "DEV", Decimals: 18},
	}, zap.NewNop())

	mantle, ok := p.GetNetworkDefinitionByName("mantle")
	require.True(t, ok)
	assert.Equal(t, uint64(5000), mantle.ChainID)
	assert.Equal(t, "https://private.mantle.example", mantle.PrimaryRPCURL)
	assert.Empty(t, mantle.FallbackRPCURLs)

	devnet, ok := p.GetNetworkDefinitionByName("devnet")
	require.True(t, ok)
	assert.Equal(t, uint64(1337), devnet.ChainID)

	_, ok = p.GetNetworkDefinitionByName("solana")
	assert.False(t, ok)

	all := p.GetAllNetworkDefinitions()
	assert.Equal(t, "arbitrum", all[0].Identifier)
	assert.Len(t, all, 5)
}
