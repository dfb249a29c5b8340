package store

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"wallet_state/internal/accounts"
	"wallet_state/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func addr(n int) string {
	return fmt.Sprintf("0x%040x", n)
}

func newStore(t *testing.T) *Store {
	t.Helper()
	s := New(accounts.NewState(accounts.NewIdentityAllocator()), zap.NewNop())
	t.Cleanup(s.Close)
	return s
}

func TestDispatchReturnsResultingState(t *testing.T) {
	s := newStore(t)

	state, err := s.Dispatch(context.Background(), accounts.LoadAccount{Address: addr(1)})
	require.NoError(t, err)
	assert.Equal(t, 1, state.Len())
	assert.Equal(t, 1, s.Snapshot().Len())
}

func TestConcurrentDispatchesAreAllApplied(t *testing.T) {
	s := newStore(t)

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := s.Dispatch(context.Background(), accounts.UpdateAccountBalance{Balances: []entity.AssetBalance{{
				Address:     addr(n),
				AssetAmount: entity.AssetAmount{Asset: entity.Asset{Symbol: "ETH", Decimals: 18}, Amount: big.NewInt(1)},
			}}})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	snapshot := s.Snapshot()
	assert.Equal(t, 50, snapshot.Len())
	require.Len(t, snapshot.CombinedAssets(), 1)
	assert.Equal(t, int64(50), snapshot.CombinedAssets()[0].Amount.Int64())
}

func TestSnapshotIsNotAffectedByLaterActions(t *testing.T) {
	s := newStore(t)

	_, err := s.Dispatch(context.Background(), accounts.LoadAccount{Address: addr(1)})
	require.NoError(t, err)
	before := s.Snapshot()

	_, err = s.Dispatch(context.Background(), accounts.LoadAccount{Address: addr(2)})
	require.NoError(t, err)

	assert.Equal(t, 1, before.Len())
	assert.Equal(t, 2, s.Snapshot().Len())
}

func TestSubscribeReceivesLatestState(t *testing.T) {
	s := newStore(t)
	updates, unsubscribe := s.Subscribe()
	defer unsubscribe()

	for i := 1; i <= 3; i++ {
		_, err := s.Dispatch(context.Background(), accounts.LoadAccount{Address: addr(i)})
		require.NoError(t, err)
	}

	select {
	case state := <-updates:
		assert.Equal(t, 3, state.Len())
	case <-time.After(time.Second):
		t.Fatal("no update received")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	s := newStore(t)
	updates, unsubscribe := s.Subscribe()
	unsubscribe()
	unsubscribe()

	_, err := s.Dispatch(context.Background(), accounts.LoadAccount{Address: addr(1)})
	require.NoError(t, err)

	select {
	case <-updates:
		t.Fatal("unexpected update after unsubscribe")
	default:
	}
}

func TestDispatchAfterClose(t *testing.T) {
	s := New(accounts.NewState(accounts.NewIdentityAllocator()), zap.NewNop())
	s.Close()
	s.Close()

	_, err := s.Dispatch(context.Background(), accounts.LoadAccount{Address: addr(1)})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestDispatchHonorsCanceledContext(t *testing.T) {
	s := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Dispatch(ctx, accounts.LoadAccount{Address: addr(1)})
	assert.ErrorIs(t, err, context.Canceled)
}
