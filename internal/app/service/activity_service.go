package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"wallet_state/internal/accounts"
	"wallet_state/internal/app/port"
	"wallet_state/internal/domain/entity"
	"wallet_state/internal/erc20"
	"wallet_state/internal/pkg/metrics"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

// ActivityConfig tunes the activity service.
type ActivityConfig struct {
	LookbackBlocks uint64
	MaxItems       int
	CacheTTL       time.Duration
}

// ActivityService builds the ERC20 transfer history of tracked addresses
// from chain logs.
type ActivityService struct {
	networks port.NetworkDefinitionProvider
	clients  port.BlockchainClientProvider
	logger   port.Logger
	cfg      ActivityConfig
	history  *cache.Cache
	mu       sync.Mutex
}

// NewActivityService creates an activity service.
func NewActivityService(networks port.NetworkDefinitionProvider, clients port.BlockchainClientProvider, logger port.Logger, cfg ActivityConfig) *ActivityService {
	if cfg.LookbackBlocks == 0 {
		cfg.LookbackBlocks = 5000
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = 200
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &ActivityService{
		networks: networks,
		clients:  clients,
		logger:   logger,
		cfg:      cfg,
		history:  cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
	}
}

// Refresh fetches recent transfers of address on every active network, merges
// them into the cached history and returns it newest first. Networks that
// fail are logged and skipped.
func (s *ActivityService) Refresh(ctx context.Context, address string) ([]entity.ActivityItem, error) {
	key, ok := accounts.NormalizeAddress(address)
	if !ok {
		return nil, fmt.Errorf("invalid address %q", address)
	}

	var (
		mu    sync.Mutex
		items []entity.ActivityItem
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, netDef := range s.networks.GetAllNetworkDefinitions() {
		g.Go(func() error {
			found, err := s.fetch(gctx, netDef, key)
			if err != nil {
				s.logger.Warn("Failed to fetch transfers", "network", netDef.Identifier, "address", key, "error", err)
				return nil
			}
			mu.Lock()
			items = append(items, found...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	merged := s.merge(s.cached(key), items)
	s.history.SetDefault(key, merged)
	return append([]entity.ActivityItem(nil), merged...), nil
}

func (s *ActivityService) fetch(ctx context.Context, netDef entity.NetworkDefinition, address string) ([]entity.ActivityItem, error) {
	client, err := s.clients.GetClient(netDef)
	if err != nil {
		return nil, err
	}
	head, err := client.LatestBlock(ctx)
	if err != nil {
		return nil, err
	}
	var from uint64
	if head > s.cfg.LookbackBlocks {
		from = head - s.cfg.LookbackBlocks
	}

	logs, err := client.TransferLogs(ctx, address, from, head)
	if err != nil {
		return nil, err
	}

	items := make([]entity.ActivityItem, 0, len(logs))
	for _, l := range logs {
		record, err := erc20.ParseTransfer(l)
		if err != nil {
			continue
		}
		items = append(items, entity.ActivityItem{
			TransferLogRecord: record,
			Network:           netDef.Identifier,
			TxHash:            l.TxHash.Hex(),
			BlockNumber:       l.BlockNumber,
			LogIndex:          l.Index,
		})
	}
	metrics.TransfersDecoded.WithLabelValues(netDef.Identifier).Add(float64(len(items)))
	return items, nil
}

func (s *ActivityService) merge(existing, fresh []entity.ActivityItem) []entity.ActivityItem {
	type itemKey struct {
		network string
		tx      string
		index   uint
	}
	seen := make(map[itemKey]struct{}, len(existing)+len(fresh))
	out := make([]entity.ActivityItem, 0, len(existing)+len(fresh))
	for _, item := range append(append([]entity.ActivityItem{}, fresh...), existing...) {
		k := itemKey{item.Network, item.TxHash, item.LogIndex}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].BlockNumber != out[j].BlockNumber {
			return out[i].BlockNumber > out[j].BlockNumber
		}
		return out[i].LogIndex > out[j].LogIndex
	})
	if len(out) > s.cfg.MaxItems {
		out = out[:s.cfg.MaxItems]
	}
	return out
}

func (s *ActivityService) cached(key string) []entity.ActivityItem {
	v, ok := s.history.Get(key)
	if !ok {
		return nil
	}
	return v.([]entity.ActivityItem)
}

// History returns the cached transfer history of address, newest first.
func (s *ActivityService) History(address string) []entity.ActivityItem {
	key, ok := accounts.NormalizeAddress(address)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.ActivityItem(nil), s.cached(key)...)
}

var _ port.ActivityService = (*ActivityService)(nil)
