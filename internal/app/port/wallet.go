package port

// WalletProvider defines the interface for fetching treasury addresses.
type WalletProvider interface {
	// GetWallets returns the checksummed addresses listed in filePath.
	GetWallets(filePath string) ([]string, error)
}
