package utils

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NormalizeAddress validates a hex address and returns its EIP-55 checksummed form.
func NormalizeAddress(address string) (string, error) {
	trimmed := strings.TrimSpace(address)
	if !common.IsHexAddress(trimmed) {
		return "", fmt.Errorf("invalid address %q", address)
	}
	return common.HexToAddress(trimmed).Hex(), nil
}

// NormalizeAddresses normalizes every address and drops duplicates, keeping first-seen order.
func NormalizeAddresses(addresses []string) ([]string, error) {
	seen := make(map[string]struct{}, len(addresses))
	result := make([]string, 0, len(addresses))
	for _, a := range addresses {
		if strings.TrimSpace(a) == "" {
			continue
		}
		normalized, err := NormalizeAddress(a)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}
	return result, nil
}

// SplitAddressList splits a comma separated address list.
func SplitAddressList(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
