// Package store owns the live account directory. One goroutine applies every
// action in arrival order; readers get immutable snapshots.
package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"wallet_state/internal/accounts"
	"wallet_state/internal/domain/entity"
	"wallet_state/internal/pkg/metrics"

	"go.uber.org/zap"
)

// ErrClosed is returned by Dispatch after Close.
var ErrClosed = errors.New("store is closed")

type command struct {
	action accounts.Action
	result chan accounts.State
}

// Store serializes writes to the account directory.
type Store struct {
	commands chan command
	state    atomic.Pointer[accounts.State]
	logger   *zap.Logger

	mu          sync.Mutex
	subscribers map[int]chan accounts.State
	nextID      int

	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// New starts a store holding initial.
func New(initial accounts.State, logger *zap.Logger) *Store {
	s := &Store{
		commands:    make(chan command),
		logger:      logger.Named("Store"),
		subscribers: make(map[int]chan accounts.State),
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
	}
	s.state.Store(&initial)
	go s.loop()
	return s
}

func (s *Store) loop() {
	defer close(s.stopped)
	for {
		select {
		case <-s.done:
			return
		case cmd := <-s.commands:
			next := s.apply(cmd.action)
			cmd.result <- next
		}
	}
}

func (s *Store) apply(action accounts.Action) accounts.State {
	name := accounts.ActionName(action)
	start := time.Now()

	next := accounts.Reduce(*s.state.Load(), action)
	s.state.Store(&next)

	metrics.ActionDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	metrics.ActionsApplied.WithLabelValues(name).Inc()
	recordGauges(next)
	s.logger.Debug("Applied action", zap.String("action", name), zap.Int("tracked", next.Len()))

	s.publish(next)
	return next
}

// Dispatch applies action and returns the state it produced.
func (s *Store) Dispatch(ctx context.Context, action accounts.Action) (accounts.State, error) {
	if err := ctx.Err(); err != nil {
		return accounts.State{}, err
	}
	cmd := command{action: action, result: make(chan accounts.State, 1)}

	select {
	case <-ctx.Done():
		return accounts.State{}, ctx.Err()
	case <-s.done:
		return accounts.State{}, ErrClosed
	case s.commands <- cmd:
	}

	// Once accepted the action is always applied; the caller may stop waiting.
	select {
	case <-ctx.Done():
		return accounts.State{}, ctx.Err()
	case next := <-cmd.result:
		return next, nil
	}
}

// Snapshot returns the latest state.
func (s *Store) Snapshot() accounts.State {
	return *s.state.Load()
}

// Subscribe returns a channel that receives the state after every applied
// action. A slow subscriber only sees the most recent state. Call the
// returned function to unsubscribe.
func (s *Store) Subscribe() (<-chan accounts.State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan accounts.State, 1)
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) publish(state accounts.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subscribers {
		select {
		case ch <- state:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- state:
			default:
			}
		}
	}
}

// Close stops the loop. Pending and later dispatches fail with ErrClosed.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		<-s.stopped
	})
}

func recordGauges(state accounts.State) {
	var loading, ready int
	state.Each(func(_ string, entry entity.AccountState) {
		switch entry.(type) {
		case entity.Loading:
			loading++
		case entity.Ready:
			ready++
		}
	})
	metrics.TrackedAccounts.WithLabelValues("loading").Set(float64(loading))
	metrics.TrackedAccounts.WithLabelValues("ready").Set(float64(ready))
	metrics.CombinedAssets.Set(float64(len(state.CombinedAssets())))
}
