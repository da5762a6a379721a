package main

import (
	"testing"

	"treasury_api/internal/domain/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPortfolioMarkdown(t *testing.T) {
	md := portfolioMarkdown("portfolio", &entity.PortfolioSnapshot{
		TotalValueInUSD: decimal.NewFromInt(6500),
		Portfolio: []entity.TreasuryToken{
			{Symbol: "USDC", Name: "USD Coin", Amount: decimal.NewFromInt(500), Price: decimal.NewFromInt(1),
				Value: decimal.NewFromInt(500), PercentOfHoldings: "7.69%", IsLP: true},
			{Symbol: "ETH", Name: "Ethereum", Amount: decimal.NewFromInt(2), Price: decimal.NewFromInt(3000),
				Value: decimal.NewFromInt(6000), PercentOfHoldings: "92.31%"},
		},
	})

	assert.Contains(t, md, "**Total value:** $6500.00")
	assert.Contains(t, md, "| USDC | USD Coin (LP) | 500 | $1 | $500.00 | 7.69% |")
	assert.Contains(t, md, "| ETH | Ethereum | 2 | $3000 | $6000.00 | 92.31% |")
}
