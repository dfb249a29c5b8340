// Package snapshot persists account directory snapshots outside the process.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallet_state/internal/accounts"
	"wallet_state/internal/app/port"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config holds Redis connection configuration.
type Config struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// keyValue is the part of the Redis command set the store needs.
type keyValue interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisStore keeps the latest directory snapshot under a single key.
type RedisStore struct {
	rdb    keyValue
	closer func() error
	key    string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg Config) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return &RedisStore{rdb: rdb, closer: rdb.Close, key: cfg.Key}, nil
}

// Save stores state, replacing the previous snapshot.
func (s *RedisStore) Save(ctx context.Context, state accounts.State) error {
	data, err := Encode(state)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, or false if there is none.
func (s *RedisStore) Load(ctx context.Context) (accounts.State, bool, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return accounts.State{}, false, nil
	}
	if err != nil {
		return accounts.State{}, false, fmt.Errorf("failed to load snapshot: %w", err)
	}

	state, err := Decode(data)
	if err != nil {
		return accounts.State{}, false, err
	}
	return state, true, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// Encode serializes a directory state.
func Encode(state accounts.State) ([]byte, error) {
	data, err := json.Marshal(state.Export())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

// Decode rebuilds a directory state produced by Encode.
func Decode(data []byte) (accounts.State, error) {
	var snap accounts.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return accounts.State{}, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return accounts.Restore(snap), nil
}

var _ port.SnapshotStore = (*RedisStore)(nil)
