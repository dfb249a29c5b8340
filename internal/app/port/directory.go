package port

import (
	"context"

	"wallet_state/internal/accounts"
	"wallet_state/internal/domain/entity"
)

// AccountDirectory is the write and read surface of the live account state.
type AccountDirectory interface {
	Dispatch(ctx context.Context, action accounts.Action) (accounts.State, error)
	Snapshot() accounts.State
}

// SnapshotStore persists directory snapshots between runs.
type SnapshotStore interface {
	Save(ctx context.Context, state accounts.State) error
	// Load returns false when nothing has been saved yet.
	Load(ctx context.Context) (accounts.State, bool, error)
}

// ActivityService keeps the transfer history of tracked accounts.
type ActivityService interface {
	Refresh(ctx context.Context, address string) ([]entity.ActivityItem, error)
	History(address string) []entity.ActivityItem
}
