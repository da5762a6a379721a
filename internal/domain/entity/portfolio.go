package entity

import "github.com/shopspring/decimal"

// TreasuryToken is one valued line of a portfolio snapshot.
type TreasuryToken struct {
	Address           string
	ParentAddress     string
	Amount            decimal.Decimal
	Decimals          int32
	Name              string
	Symbol            string
	Logo              string
	Price             decimal.Decimal
	Value             decimal.Decimal
	PercentOfHoldings string
	IsLP              bool
	IsNative          bool
}

// PortfolioSnapshot is the valuation result for one request.
type PortfolioSnapshot struct {
	TotalValueInUSD decimal.Decimal
	Portfolio       []TreasuryToken
}

// PortfolioRequest carries everything a single valuation needs.
type PortfolioRequest struct {
	Profile   *ChainProfile
	Addresses []string
	APIKey    string
}
