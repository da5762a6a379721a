package provider

import (
	"treasury_api/internal/app/port"
	"treasury_api/internal/infrastructure/walletloader"

	"go.uber.org/zap"
)

type walletProviderImpl struct {
	logger *zap.Logger
}

// NewWalletProvider creates a new WalletProvider.
func NewWalletProvider(logger *zap.Logger) port.WalletProvider {
	return &walletProviderImpl{logger: logger.Named("WalletProvider")}
}

// GetWallets loads wallet addresses from the given file.
func (p *walletProviderImpl) GetWallets(filePath string) ([]string, error) {
	p.logger.Debug("Loading wallets from file", zap.String("path", filePath))
	wallets, err := walletloader.LoadWallets(filePath, p.logger)
	if err != nil {
		p.logger.Error("Failed to load wallets", zap.String("path", filePath), zap.Error(err))
		return nil, err
	}
	p.logger.Info("Wallets loaded successfully", zap.Int("count", len(wallets)), zap.String("path", filePath))
	return wallets, nil
}
