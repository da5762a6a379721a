package entity

import "github.com/shopspring/decimal"

// PriceMap maps a checksummed contract address to its USD unit price.
// An absent key means no quote was obtained.
type PriceMap map[string]decimal.Decimal

// Get returns the price for address and whether a non-zero quote exists.
func (m PriceMap) Get(address string) (decimal.Decimal, bool) {
	p, ok := m[address]
	if !ok || p.IsZero() {
		return decimal.Zero, false
	}
	return p, true
}
