package accounts

import (
	"testing"

	"wallet_state/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportRestorePreservesDirectory(t *testing.T) {
	s := newState().LoadAccount(addr(5))
	s = s.UpdateAccountBalance([]entity.AssetBalance{balance(addr(1), "ETH", 3), balance(addr(2), "USDC", 4)})
	s = s.UpdateAccountName(addr(1), testNetwork, "one.eth")

	restored := Restore(s.Export())

	assert.Equal(t, TrackedAddresses(s), TrackedAddresses(restored))
	assert.Equal(t, LoadingAddresses(s), LoadingAddresses(restored))
	assert.Equal(t, s.Identities().Names(), restored.Identities().Names())

	record, ok := Account(restored, addr(1))
	require.True(t, ok)
	assert.Equal(t, "one.eth", record.ENS.Name)
	assert.Equal(t, int64(3), record.Balances["ETH"].AssetAmount.Amount.Int64())

	require.Len(t, restored.CombinedAssets(), 2)

	// Identity allocation continues from the restored pool.
	next := restored.UpdateAccountBalance([]entity.AssetBalance{balance(addr(9), "ETH", 1)})
	expected := s.UpdateAccountBalance([]entity.AssetBalance{balance(addr(9), "ETH", 1)})
	a, _ := Account(next, addr(9))
	b, _ := Account(expected, addr(9))
	assert.Equal(t, b.DefaultName, a.DefaultName)
}

func TestRestoreEmptySnapshotUsesDefaultNames(t *testing.T) {
	s := Restore(Snapshot{})
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, DefaultNames, s.Identities().Names())
}
