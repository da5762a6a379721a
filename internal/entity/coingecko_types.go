package entity

import "github.com/shopspring/decimal"

// CoinGeckoPrices is the body of /simple/price and /simple/token_price/{platform}:
// id or lowercase contract address -> vs currency -> price.
type CoinGeckoPrices map[string]map[string]decimal.Decimal

// CoinGeckoError is the error body returned by CoinGecko.
type CoinGeckoError struct {
	Error  string `json:"error"`
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
}
