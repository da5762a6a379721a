package entity

import "strings"

// MergeStrategy selects the key used to collapse duplicate line items.
type MergeStrategy string

const (
	MergeBySymbol  MergeStrategy = "symbol"
	MergeByAddress MergeStrategy = "address"
)

// NativeAsset describes the native coin line item of a profile.
type NativeAsset struct {
	Address     string
	Name        string
	Symbol      string
	Logo        string
	Decimals    int32
	CoinGeckoID string
}

// L2Source is the optional L2 balance sweep of a profile.
type L2Source struct {
	Network       NetworkDefinition
	Tokens        []BridgedToken
	IncludeNative bool
}

// ChainProfile parameterizes one endpoint variant of the aggregator.
type ChainProfile struct {
	Name             string
	Route            string
	DefaultAddresses []string
	Native           NativeAsset
	LPEnabled        bool
	L2               *L2Source
	IncludeNames     []string
	ExcludeNames     []string
	MergeStrategy    MergeStrategy
}

// Accepts reports whether a token with the given name passes the profile's name filters.
func (p *ChainProfile) Accepts(name string) bool {
	for _, excluded := range p.ExcludeNames {
		if strings.EqualFold(excluded, name) {
			return false
		}
	}
	if len(p.IncludeNames) == 0 {
		return true
	}
	for _, included := range p.IncludeNames {
		if strings.EqualFold(included, name) {
			return true
		}
	}
	return false
}
