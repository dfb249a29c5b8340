package accounts

import "wallet_state/internal/domain/entity"

// SnapshotEntry is one tracked address in serialized form. Record is nil while loading.
type SnapshotEntry struct {
	Address string                `json:"address"`
	Record  *entity.AccountRecord `json:"record,omitempty"`
}

// Snapshot is the serializable form of a State.
type Snapshot struct {
	Entries  []SnapshotEntry      `json:"entries"`
	Names    []string             `json:"names"`
	Combined []entity.AssetAmount `json:"combined"`
}

// Export captures s in serializable form.
func (s State) Export() Snapshot {
	snap := Snapshot{
		Entries:  make([]SnapshotEntry, 0, s.Len()),
		Names:    s.identities.Names(),
		Combined: s.CombinedAssets(),
	}
	s.Each(func(address string, entry entity.AccountState) {
		e := SnapshotEntry{Address: address}
		if ready, ok := entry.(entity.Ready); ok {
			record := ready.Record
			e.Record = &record
		}
		snap.Entries = append(snap.Entries, e)
	})
	return snap
}

// Restore rebuilds a State from a snapshot. Entries with invalid addresses are skipped.
func Restore(snap Snapshot) State {
	s := NewState(NewIdentityAllocator(snap.Names...))
	for _, e := range snap.Entries {
		key, ok := NormalizeAddress(e.Address)
		if !ok {
			continue
		}
		if e.Record == nil {
			s.entries = s.table().Set(key, entity.Loading{})
			continue
		}
		record := *e.Record
		record.Address = key
		if record.Balances == nil {
			record.Balances = map[string]entity.AssetBalance{}
		}
		s.entries = s.table().Set(key, entity.Ready{Record: record})
	}
	s.combined = make([]entity.AssetAmount, len(snap.Combined))
	for i, a := range snap.Combined {
		s.combined[i] = entity.AssetAmount{Asset: a.Asset, Amount: copyAmount(a.Amount)}
	}
	return s
}
