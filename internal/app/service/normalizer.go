package service

import (
	"fmt"

	"treasury_api/internal/domain/entity"
	"treasury_api/internal/pkg/utils"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// NormalizeBalance turns a raw balance into a valued line item.
// Hex balances are scaled by the token decimals; LP balances are already scaled.
func NormalizeBalance(raw entity.RawBalance, meta entity.TokenMetadata, price decimal.Decimal) (entity.TreasuryToken, error) {
	amount, err := utils.ParseAmount(raw.Balance, meta.Decimals)
	if err != nil {
		return entity.TreasuryToken{}, fmt.Errorf("balance of %s held by %s: %w", raw.ContractAddress, raw.ParentAddress, err)
	}
	return entity.TreasuryToken{
		Address:       raw.ContractAddress,
		ParentAddress: raw.ParentAddress,
		Amount:        amount,
		Decimals:      meta.Decimals,
		Name:          meta.Name,
		Symbol:        meta.Symbol,
		Logo:          meta.Logo,
		Price:         price,
		Value:         amount.Mul(price),
		IsLP:          raw.IsLP,
	}, nil
}

// MergeLineItems collapses items sharing the strategy key, summing amount and value.
// The first occurrence keeps its position and metadata.
func MergeLineItems(items []entity.TreasuryToken, strategy entity.MergeStrategy) []entity.TreasuryToken {
	merged := make([]entity.TreasuryToken, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		key := mergeKey(item, strategy)
		if i, ok := index[key]; ok {
			merged[i].Amount = merged[i].Amount.Add(item.Amount)
			merged[i].Value = merged[i].Value.Add(item.Value)
			merged[i].IsLP = merged[i].IsLP && item.IsLP
			continue
		}
		index[key] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

func mergeKey(item entity.TreasuryToken, strategy entity.MergeStrategy) string {
	// токены без символа не склеиваются между собой
	if strategy == entity.MergeByAddress || item.Symbol == "" {
		return "address:" + item.Address
	}
	return "symbol:" + item.Symbol
}

// TotalValue sums the value of every item.
func TotalValue(items []entity.TreasuryToken) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Value)
	}
	return total
}

// ApplyPercentages fills PercentOfHoldings of every item relative to total.
func ApplyPercentages(items []entity.TreasuryToken, total decimal.Decimal) {
	for i := range items {
		items[i].PercentOfHoldings = FormatPercent(items[i].Value, total)
	}
}

// FormatPercent renders value/total as a percentage rounded to two decimals, e.g. "92.31%".
// A zero total yields "0%".
func FormatPercent(value, total decimal.Decimal) string {
	if total.IsZero() {
		return "0%"
	}
	return value.Mul(hundred).Div(total).Round(2).String() + "%"
}
