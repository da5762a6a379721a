package walletloader

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"treasury_api/internal/pkg/utils"

	"go.uber.org/zap"
)

// LoadWallets reads treasury addresses from a text file: one 0x address per
// line, blank lines and # comments ignored. Invalid lines are skipped.
func LoadWallets(filePath string, logger *zap.Logger) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet file %s: %w", filePath, err)
	}
	defer file.Close()

	var wallets []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if line == "" {
			continue
		}
		address, err := utils.NormalizeAddress(line)
		if err != nil {
			logger.Warn("Skipping invalid wallet address format", zap.String("file", filePath), zap.Int("line_number", lineNum), zap.String("address", line))
			continue
		}
		wallets = append(wallets, address)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning wallet file %s: %w", filePath, err)
	}
	return wallets, nil
}
