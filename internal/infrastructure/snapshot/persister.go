package snapshot

import (
	"context"
	"time"

	"wallet_state/internal/accounts"
	"wallet_state/internal/app/port"

	"go.uber.org/zap"
)

// Persister writes every published directory state to a SnapshotStore.
type Persister struct {
	store   port.SnapshotStore
	logger  *zap.Logger
	timeout time.Duration
}

// NewPersister creates a persister.
func NewPersister(store port.SnapshotStore, logger *zap.Logger) *Persister {
	return &Persister{store: store, logger: logger.Named("SnapshotPersister"), timeout: 5 * time.Second}
}

// Run saves each state received from updates until ctx is done or updates is
// closed. Failed saves are logged; the next update retries with newer data.
// A state still pending when ctx is done is saved before Run returns.
func (p *Persister) Run(ctx context.Context, updates <-chan accounts.State) {
	for {
		select {
		case <-ctx.Done():
			select {
			case state, ok := <-updates:
				if ok {
					p.Flush(state)
				}
			default:
			}
			return
		case state, ok := <-updates:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				p.Flush(state)
				return
			}
			p.save(ctx, state)
		}
	}
}

// Flush saves state with its own timeout, independent of any caller context.
// It is meant for shutdown, after the loop context is gone.
func (p *Persister) Flush(state accounts.State) {
	p.save(context.Background(), state)
}

func (p *Persister) save(ctx context.Context, state accounts.State) {
	saveCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.store.Save(saveCtx, state); err != nil {
		p.logger.Warn("Failed to persist directory snapshot", zap.Error(err))
		return
	}
	p.logger.Debug("Persisted directory snapshot", zap.Int("tracked", state.Len()))
}
