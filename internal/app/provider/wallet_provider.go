package provider

import (
	"wallet_state/internal/app/port"
	"wallet_state/internal/domain/entity"
)

type walletProviderImpl struct {
	source port.WalletProvider
	logger port.Logger
}

// NewWalletProvider wraps a wallet source with logging.
func NewWalletProvider(source port.WalletProvider, logger port.Logger) port.WalletProvider {
	return &walletProviderImpl{source: source, logger: logger}
}

// GetWallets loads the seed wallets.
func (p *walletProviderImpl) GetWallets() ([]entity.Wallet, error) {
	p.logger.Debug("Loading seed wallets")
	wallets, err := p.source.GetWallets()
	if err != nil {
		p.logger.Error("Failed to load wallets", "error", err)
		return nil, err
	}
	p.logger.Info("Wallets loaded successfully", "count", len(wallets))
	return wallets, nil
}
