package entity

// TokenInfo is one entry of a token list file.
type TokenInfo struct {
	ChainID  uint64 `json:"chainId"`
	Address  string `json:"address"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	LogoURI  string `json:"logoURI,omitempty"`
}

// BridgedToken pairs an L2 token contract with the L1 contract of the same asset.
// Balances read on L2 are reported under L1Address so that L1 price sources can value them.
type BridgedToken struct {
	Symbol    string
	Name      string
	Decimals  uint8
	L1Address string
	L2Address string
}

// DefaultTokenDecimals is used when a token's decimals cannot be resolved.
const DefaultTokenDecimals int32 = 18

// TokenMetadata describes an ERC-20 contract.
type TokenMetadata struct {
	ContractAddress string `json:"contractAddress"`
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	Decimals        int32  `json:"decimals"`
	Logo            string `json:"logo"`
}
