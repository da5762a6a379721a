package entity

import "math/big"

// BalanceRequestType defines the type of balance request.
type BalanceRequestType int

const (
	// NativeBalanceRequest requests the native balance of a wallet.
	NativeBalanceRequest BalanceRequestType = iota
	// TokenBalanceRequest requests the balance of a specific token for a wallet.
	TokenBalanceRequest
)

// BalanceRequestItem represents a single item in a batch request for balances.
type BalanceRequestItem struct {
	Type          BalanceRequestType
	WalletAddress string
	TokenAddress  string
	TokenSymbol   string
}

// BalanceResultItem represents the result of a single balance request from a batch.
type BalanceResultItem struct {
	WalletAddress string
	TokenAddress  string
	TokenSymbol   string
	IsNative      bool
	Balance       *big.Int
	Error         error
}
