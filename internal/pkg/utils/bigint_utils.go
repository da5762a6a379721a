package utils

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseHexBigInt parses a 0x-prefixed hex integer. Leading zero padding is
// accepted, which hexutil.DecodeBig rejects.
func ParseHexBigInt(s string) (*big.Int, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return nil, fmt.Errorf("hex value %q has no 0x prefix", s)
	}
	digits := s[2:]
	if digits == "" {
		return big.NewInt(0), nil
	}
	v, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex value %q", s)
	}
	return v, nil
}

// ScaleBigInt converts an integer amount in the smallest unit to a decimal
// amount with the given number of decimals.
// Example: amount=1234500000000000000, decimals=18 => 1.2345
func ScaleBigInt(amount *big.Int, decimals int32) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -decimals)
}

// ParseAmount turns a raw balance string into a decimal amount. Hex strings
// are scaled by decimals, anything else is read as an already scaled decimal.
func ParseAmount(raw string, decimals int32) (decimal.Decimal, error) {
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		v, err := ParseHexBigInt(raw)
		if err != nil {
			return decimal.Zero, err
		}
		return ScaleBigInt(v, decimals), nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal amount %q: %w", raw, err)
	}
	return d, nil
}
