package entity

import "github.com/shopspring/decimal"

// CryptoComparePrice is the body of /data/price?fsym=X&tsyms=USD.
// On failure Response is "Error" and Message explains why.
type CryptoComparePrice struct {
	USD      *decimal.Decimal `json:"USD"`
	Response string           `json:"Response"`
	Message  string           `json:"Message"`
}
