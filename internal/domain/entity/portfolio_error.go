package entity

// PollError describes a balance that could not be fetched for a wallet on a network.
type PollError struct {
	WalletAddress string `json:"walletAddress"`
	NetworkName   string `json:"networkName"`
	ChainID       uint64 `json:"chainId"`
	TokenSymbol   string `json:"tokenSymbol,omitempty"`
	TokenAddress  string `json:"tokenAddress,omitempty"`
	IsNative      bool   `json:"isNative"`
	Message       string `json:"message"`
}
