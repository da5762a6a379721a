package entity

// NetworkDefinition holds the configuration for a specific blockchain network.
type NetworkDefinition struct {
	ChainID         uint64   `json:"chainId" yaml:"chainId"`
	Name            string   `json:"name" yaml:"name"`
	Identifier      string   `json:"identifier" yaml:"identifier"` // уникальный идентификатор сети ("ethereum", "mantle")
	NativeSymbol    string   `json:"nativeSymbol" yaml:"nativeSymbol"`
	Decimals        int32    `json:"decimals" yaml:"decimals"`
	PrimaryRPCURL   string   `json:"primaryRpcUrl" yaml:"primaryRpcUrl"`
	FallbackRPCURLs []string `json:"fallbackRpcUrls" yaml:"fallbackRpcUrls"`
}
