package entity

// Wallet is a seed address the service starts tracking at boot.
type Wallet struct {
	Address string
	Label   string
}
