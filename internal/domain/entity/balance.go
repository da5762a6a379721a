package entity

import "strings"

// ZeroBalanceHash is the 32-byte all-zero word chain providers report for
// contracts an address has touched but no longer holds.
const ZeroBalanceHash = "0x0000000000000000000000000000000000000000000000000000000000000000"

// RawBalance is a single balance as discovered by one of the balance sources.
// Balance is either a 0x-prefixed hex integer in the token's smallest unit or
// an already scaled decimal string (LP positions).
type RawBalance struct {
	ParentAddress   string `json:"parentAddress"`
	ContractAddress string `json:"contractAddress"`
	L2Address       string `json:"l2Address,omitempty"`
	Balance         string `json:"balance"`
	IsLP            bool   `json:"isLP,omitempty"`
}

// IsZeroSentinel reports whether the balance is the provider's "no balance" word.
func (b RawBalance) IsZeroSentinel() bool {
	return strings.EqualFold(b.Balance, ZeroBalanceHash)
}

// IsHex reports whether the balance is encoded as a hex integer.
func (b RawBalance) IsHex() bool {
	return strings.HasPrefix(b.Balance, "0x") || strings.HasPrefix(b.Balance, "0X")
}
