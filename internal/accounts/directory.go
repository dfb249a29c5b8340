// Package accounts holds the account directory: per-address wallet data, the
// generated display identities, and the combined portfolio derived from them.
//
// State is an immutable value. Every operation returns a new State and leaves
// the receiver untouched, so a caller that keeps an old snapshot keeps seeing
// exactly what it saw before. None of the operations fail; input that cannot be
// applied leaves the state unchanged.
package accounts

import (
	"math/big"
	"sort"
	"strings"

	"wallet_state/internal/domain/entity"

	"github.com/benbjohnson/immutable"
	"github.com/ethereum/go-ethereum/common"
)

// State is one snapshot of the account directory.
type State struct {
	entries    *immutable.SortedMap[string, entity.AccountState]
	combined   []entity.AssetAmount
	identities IdentityAllocator
}

// NewState returns an empty directory that assigns names from identities.
func NewState(identities IdentityAllocator) State {
	return State{
		entries:    immutable.NewSortedMap[string, entity.AccountState](nil),
		identities: identities,
	}
}

func (s State) table() *immutable.SortedMap[string, entity.AccountState] {
	if s.entries == nil {
		return immutable.NewSortedMap[string, entity.AccountState](nil)
	}
	return s.entries
}

// Identities returns the allocator the next account creation will use.
func (s State) Identities() IdentityAllocator {
	return s.identities
}

// Len is the number of tracked addresses, loading ones included.
func (s State) Len() int {
	return s.table().Len()
}

// Entry returns the tracked state of an address.
func (s State) Entry(address string) (entity.AccountState, bool) {
	key, ok := NormalizeAddress(address)
	if !ok {
		return nil, false
	}
	return s.table().Get(key)
}

// Each calls fn for every tracked address in ascending address order.
func (s State) Each(fn func(address string, entry entity.AccountState)) {
	itr := s.table().Iterator()
	for !itr.Done() {
		address, entry, _ := itr.Next()
		fn(address, entry)
	}
}

// CombinedAssets returns the per-symbol sums computed by the last balance update.
func (s State) CombinedAssets() []entity.AssetAmount {
	out := make([]entity.AssetAmount, len(s.combined))
	for i, amount := range s.combined {
		out[i] = entity.AssetAmount{Asset: amount.Asset, Amount: new(big.Int).Set(amount.Amount)}
	}
	return out
}

// LoadAccount marks address as loading unless it is already tracked.
func (s State) LoadAccount(address string) State {
	key, ok := NormalizeAddress(address)
	if !ok {
		return s
	}
	if _, tracked := s.table().Get(key); tracked {
		return s
	}
	s.entries = s.table().Set(key, entity.Loading{})
	return s
}

// DeleteAccount forgets address entirely.
func (s State) DeleteAccount(address string) State {
	key, ok := NormalizeAddress(address)
	if !ok {
		return s
	}
	if _, tracked := s.table().Get(key); !tracked {
		return s
	}
	s.entries = s.table().Delete(key)
	return s
}

// UpdateAccountBalance merges balances into their accounts and recomputes the
// combined assets. An address that is loading, or not tracked at all, gets a
// new record with a freshly generated identity.
func (s State) UpdateAccountBalance(updates []entity.AssetBalance) State {
	for _, update := range updates {
		key, ok := NormalizeAddress(update.Address)
		if !ok {
			continue
		}
		update.Address = key
		update.AssetAmount.Amount = copyAmount(update.AssetAmount.Amount)

		var record entity.AccountRecord
		switch entry := s.lookup(key).(type) {
		case entity.Ready:
			record = entry.Record.WithBalance(update)
		default:
			record, s = s.newAccountData(key, update.Network)
			record = record.WithBalance(update)
		}
		s.entries = s.table().Set(key, entity.Ready{Record: record})
	}
	s.combined = combineAssets(s)
	return s
}

// RefreshBalances is UpdateAccountBalance restricted to addresses that are
// tracked when it is applied. Balances for any other address are discarded.
func (s State) RefreshBalances(updates []entity.AssetBalance) State {
	kept := make([]entity.AssetBalance, 0, len(updates))
	for _, update := range updates {
		key, ok := NormalizeAddress(update.Address)
		if !ok {
			continue
		}
		if _, tracked := s.table().Get(key); tracked {
			kept = append(kept, update)
		}
	}
	if len(kept) == 0 {
		return s
	}
	return s.UpdateAccountBalance(kept)
}

// UpdateAccountName attaches a resolved ENS name to a tracked account.
func (s State) UpdateAccountName(address string, network entity.NetworkDefinition, name string) State {
	return s.updateENS(address, network, func(ens *entity.ENSInfo) { ens.Name = name })
}

// UpdateENSAvatar attaches a resolved ENS avatar to a tracked account.
func (s State) UpdateENSAvatar(address string, network entity.NetworkDefinition, avatarURL string) State {
	return s.updateENS(address, network, func(ens *entity.ENSInfo) { ens.AvatarURL = avatarURL })
}

func (s State) updateENS(address string, network entity.NetworkDefinition, apply func(*entity.ENSInfo)) State {
	key, ok := NormalizeAddress(address)
	if !ok {
		return s
	}

	var record entity.AccountRecord
	switch entry := s.lookup(key).(type) {
	case nil:
		return s
	case entity.Loading:
		record, s = s.newAccountData(key, network)
	case entity.Ready:
		record = entry.Record
	}

	apply(&record.ENS)
	s.entries = s.table().Set(key, entity.Ready{Record: record})
	return s
}

func (s State) lookup(key string) entity.AccountState {
	entry, ok := s.table().Get(key)
	if !ok {
		return nil
	}
	return entry
}

// newAccountData builds an empty record for address and consumes one identity.
func (s State) newAccountData(address string, network entity.NetworkDefinition) (entity.AccountRecord, State) {
	existing := s.table().Len()
	if _, tracked := s.table().Get(address); tracked {
		existing--
	}

	identity, identities := s.identities.Allocate(address, existing)
	s.identities = identities

	return entity.AccountRecord{
		Address:       address,
		Network:       network,
		Balances:      map[string]entity.AssetBalance{},
		DefaultName:   identity.Name,
		DefaultAvatar: identity.Avatar,
	}, s
}

// combineAssets sums every ready account's balances by symbol. Accounts are
// folded in address order and balances in symbol order; the first occurrence
// of a symbol fixes its position and asset metadata.
func combineAssets(s State) []entity.AssetAmount {
	combined := make([]entity.AssetAmount, 0)
	position := make(map[string]int)

	s.Each(func(_ string, entry entity.AccountState) {
		ready, ok := entry.(entity.Ready)
		if !ok {
			return
		}
		symbols := make([]string, 0, len(ready.Record.Balances))
		for symbol := range ready.Record.Balances {
			symbols = append(symbols, symbol)
		}
		sort.Strings(symbols)

		for _, symbol := range symbols {
			amount := ready.Record.Balances[symbol].AssetAmount
			i, seen := position[symbol]
			if !seen {
				position[symbol] = len(combined)
				combined = append(combined, entity.AssetAmount{Asset: amount.Asset, Amount: copyAmount(amount.Amount)})
				continue
			}
			if amount.Amount != nil {
				combined[i].Amount = new(big.Int).Add(combined[i].Amount, amount.Amount)
			}
		}
	})
	return combined
}

func copyAmount(amount *big.Int) *big.Int {
	if amount == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(amount)
}

// NormalizeAddress returns the lowercase 0x-prefixed form of a hex address.
func NormalizeAddress(address string) (string, bool) {
	a := strings.ToLower(strings.TrimSpace(address))
	if a == "" {
		return "", false
	}
	if !strings.HasPrefix(a, "0x") {
		a = "0x" + a
	}
	if !common.IsHexAddress(a) {
		return "", false
	}
	return a, true
}
