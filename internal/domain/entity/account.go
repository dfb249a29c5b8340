package entity

// ENSInfo holds a resolved ENS name and avatar. Both are optional.
type ENSInfo struct {
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatarURL,omitempty"`
}

// AccountRecord is the per-address wallet data unit.
type AccountRecord struct {
	Address       string                  `json:"address"`
	Network       NetworkDefinition       `json:"network"`
	Balances      map[string]AssetBalance `json:"balances"`
	ENS           ENSInfo                 `json:"ens"`
	DefaultName   string                  `json:"defaultName"`
	DefaultAvatar string                  `json:"defaultAvatar"`
}

// WithBalance returns a copy of the record with the balance stored under its symbol.
func (r AccountRecord) WithBalance(b AssetBalance) AccountRecord {
	balances := make(map[string]AssetBalance, len(r.Balances)+1)
	for symbol, existing := range r.Balances {
		balances[symbol] = existing
	}
	balances[b.Symbol()] = b
	r.Balances = balances
	return r
}

// AccountState is either Loading or Ready.
type AccountState interface {
	isAccountState()
}

// Loading marks an address whose data has been requested but not yet received.
type Loading struct{}

// Ready carries a fully materialized account record.
type Ready struct {
	Record AccountRecord
}

func (Loading) isAccountState() {}
func (Ready) isAccountState()   {}
