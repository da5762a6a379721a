package entity

// GraphQLRequest is a GraphQL POST body.
type GraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// GraphQLError is one entry of a GraphQL errors array.
type GraphQLError struct {
	Message string `json:"message"`
}

// SubgraphToken is a token as exposed by the LP subgraph.
type SubgraphToken struct {
	ID       string `json:"id"`
	Symbol   string `json:"symbol"`
	Decimals string `json:"decimals"`
}

// SubgraphPool is the pool a position belongs to.
type SubgraphPool struct {
	ID                     string `json:"id"`
	Liquidity              string `json:"liquidity"`
	TotalValueLockedToken0 string `json:"totalValueLockedToken0"`
	TotalValueLockedToken1 string `json:"totalValueLockedToken1"`
}

// SubgraphPosition is one open LP position.
type SubgraphPosition struct {
	ID        string        `json:"id"`
	Liquidity string        `json:"liquidity"`
	Token0    SubgraphToken `json:"token0"`
	Token1    SubgraphToken `json:"token1"`
	Pool      SubgraphPool  `json:"pool"`
}

// SubgraphPositionsResponse is the GraphQL response of the positions query.
type SubgraphPositionsResponse struct {
	Data struct {
		Positions []SubgraphPosition `json:"positions"`
	} `json:"data"`
	Errors []GraphQLError `json:"errors"`
}
