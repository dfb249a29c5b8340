package port

import "wallet_state/internal/domain/entity"

// WalletProvider defines the interface for fetching the seed wallets tracked at startup.
type WalletProvider interface {
	GetWallets() ([]entity.Wallet, error)
}
