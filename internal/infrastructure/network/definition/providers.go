package networkdefinition

import (
	"sort"

	"treasury_api/internal/app/port"
	"treasury_api/internal/domain/entity"
	"treasury_api/internal/infrastructure/configloader"

	"go.uber.org/zap"
)

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.NetworkDefinition{
		ChainID:         1,
		Name:            "Ethereum Mainnet",
		Identifier:      "ethereum",
		NativeSymbol:    "ETH",
		Decimals:        18,
		PrimaryRPCURL:   "https://ethereum-rpc.publicnode.com",
		FallbackRPCURLs: []string{"https://rpc.ankr.com/eth", "https://ethereum.publicnode.com"},
	}
	Mantle = entity.NetworkDefinition{
		ChainID:         5000,
		Name:            "Mantle Network",
		Identifier:      "mantle",
		NativeSymbol:    "MNT",
		Decimals:        18,
		PrimaryRPCURL:   "https://rpc.mantle.xyz",
		FallbackRPCURLs: []string{"https://mantle-rpc.publicnode.com"},
	}
	Arbitrum = entity.NetworkDefinition{
		ChainID:         42161,
		Name:            "Arbitrum One",
		Identifier:      "arbitrum",
		NativeSymbol:    "ETH",
		Decimals:        18,
		PrimaryRPCURL:   "https://arb1.arbitrum.io/rpc",
		FallbackRPCURLs: []string{"https://arbitrum.publicnode.com"},
	}
	Optimism = entity.NetworkDefinition{
		ChainID:         10,
		Name:            "OP Mainnet",
		Identifier:      "optimism",
		NativeSymbol:    "ETH",
		Decimals:        18,
		PrimaryRPCURL:   "https://mainnet.optimism.io",
		FallbackRPCURLs: []string{"https://optimism.publicnode.com"},
	}
)

// NetworkDefinitionProvider provides network definitions: the predefined ones
// overlaid with whatever the configuration declares.
type NetworkDefinitionProvider struct {
	allNetworkDefs map[string]entity.NetworkDefinition
}

// NewNetworkDefinitionProvider builds the provider from the configured networks.
func NewNetworkDefinitionProvider(networks []configloader.NetworkNodeConfig, logger *zap.Logger) port.NetworkDefinitionProvider {
	logger = logger.Named("NetworkDefinitionProvider")
	defs := map[string]entity.NetworkDefinition{
		Ethereum.Identifier: Ethereum,
		Mantle.Identifier:   Mantle,
		Arbitrum.Identifier: Arbitrum,
		Optimism.Identifier: Optimism,
	}

	for _, n := range networks {
		def, predefined := defs[n.Identifier]
		def.Identifier = n.Identifier
		if n.Name != "" {
			def.Name = n.Name
		}
		if n.ChainID != 0 {
			def.ChainID = n.ChainID
		}
		if n.NativeSymbol != "" {
			def.NativeSymbol = n.NativeSymbol
		}
		if n.Decimals > 0 {
			def.Decimals = n.Decimals
		}
		if n.RPCURL != "" {
			def.PrimaryRPCURL = n.RPCURL
			def.FallbackRPCURLs = n.FallbackRPCURLs
		}
		defs[n.Identifier] = def
		logger.Debug("Network configured", zap.String("identifier", n.Identifier), zap.Bool("predefined", predefined), zap.Uint64("chainId", def.ChainID))
	}

	return &NetworkDefinitionProvider{allNetworkDefs: defs}
}

// GetAllNetworkDefinitions returns all known network definitions sorted by identifier.
func (p *NetworkDefinitionProvider) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	out := make([]entity.NetworkDefinition, 0, len(p.allNetworkDefs))
	for _, def := range p.allNetworkDefs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out
}

// GetNetworkDefinitionByName returns a network definition by its identifier.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByName(identifier string) (entity.NetworkDefinition, bool) {
	def, ok := p.allNetworkDefs[identifier]
	return def, ok
}
