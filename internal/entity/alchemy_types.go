package entity

// AlchemyTokenBalance is one entry of alchemy_getTokenBalances.
type AlchemyTokenBalance struct {
	ContractAddress string  `json:"contractAddress"`
	TokenBalance    string  `json:"tokenBalance"`
	Error           *string `json:"error"`
}

// AlchemyTokenBalances is the result of alchemy_getTokenBalances.
type AlchemyTokenBalances struct {
	Address       string                `json:"address"`
	TokenBalances []AlchemyTokenBalance `json:"tokenBalances"`
	PageKey       string                `json:"pageKey,omitempty"`
}

// AlchemyTokenMetadata is the result of alchemy_getTokenMetadata.
// Decimals is null for contracts that do not expose it.
type AlchemyTokenMetadata struct {
	Name     string  `json:"name"`
	Symbol   string  `json:"symbol"`
	Decimals *int32  `json:"decimals"`
	Logo     *string `json:"logo"`
}
