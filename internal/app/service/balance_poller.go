package service

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"wallet_state/internal/accounts"
	"wallet_state/internal/app/port"
	"wallet_state/internal/domain/entity"
	"wallet_state/internal/pkg/metrics"
	"wallet_state/internal/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// PollerConfig tunes the balance poller.
type PollerConfig struct {
	Interval         time.Duration
	Concurrency      int
	MaxItemsPerBatch int
}

// BalancePoller periodically reads balances of every tracked address on
// every active network and feeds them to the account directory.
type BalancePoller struct {
	directory port.AccountDirectory
	networks  port.NetworkDefinitionProvider
	tokens    port.TokenProvider
	clients   port.BlockchainClientProvider
	logger    port.Logger
	cfg       PollerConfig
	now       func() time.Time

	mu         sync.RWMutex
	lastErrors []entity.PollError
}

// NewBalancePoller creates a poller.
func NewBalancePoller(
	directory port.AccountDirectory,
	networks port.NetworkDefinitionProvider,
	tokens port.TokenProvider,
	clients port.BlockchainClientProvider,
	logger port.Logger,
	cfg PollerConfig,
) *BalancePoller {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.MaxItemsPerBatch <= 0 {
		cfg.MaxItemsPerBatch = 100
	}
	return &BalancePoller{
		directory: directory,
		networks:  networks,
		tokens:    tokens,
		clients:   clients,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

type fetched struct {
	network  entity.NetworkDefinition
	balances []entity.AssetBalance
}

// PollOnce runs one polling round. It returns the balances that could not be
// fetched; the error is non-nil only when the round could not run at all or
// the directory rejected an update.
func (p *BalancePoller) PollOnce(ctx context.Context) ([]entity.PollError, error) {
	addresses := accounts.TrackedAddresses(p.directory.Snapshot())
	networks := p.networks.GetAllNetworkDefinitions()
	if len(addresses) == 0 || len(networks) == 0 {
		p.logger.Debug("Nothing to poll", "addresses", len(addresses), "networks", len(networks))
		return nil, nil
	}

	tokensByChainID, err := p.tokens.GetTokensByNetwork(networks)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokens for polling: %w", err)
	}

	var (
		mu       sync.Mutex
		results  = make(map[string][]fetched, len(addresses))
		failures []entity.PollError
	)
	record := func(address string, f fetched, errs []entity.PollError) {
		mu.Lock()
		defer mu.Unlock()
		if len(f.balances) > 0 {
			results[address] = append(results[address], f)
		}
		failures = append(failures, errs...)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)

	for _, netDef := range networks {
		client, err := p.clients.GetClient(netDef)
		if err != nil {
			p.logger.Error("No client for network, skipping", "network", netDef.Identifier, "error", err)
			for _, address := range addresses {
				record(address, fetched{}, []entity.PollError{newPollError(address, netDef, entity.Asset{}, true, err)})
			}
			continue
		}

		tokens := tokensByChainID[netDef.ChainID]
		for _, address := range addresses {
			g.Go(func() error {
				balances, errs := p.pollAccount(gctx, client, netDef, tokens, address)
				record(address, fetched{network: netDef, balances: balances}, errs)
				return nil
			})
		}
	}
	_ = g.Wait()

	for _, address := range addresses {
		balances := mergeAcrossNetworks(results[address])
		if len(balances) == 0 {
			continue
		}
		if _, err := p.directory.Dispatch(ctx, accounts.RefreshBalances{Balances: balances}); err != nil {
			return failures, fmt.Errorf("failed to apply balances for %s: %w", address, err)
		}
	}

	for _, f := range failures {
		metrics.PollErrors.WithLabelValues(f.NetworkName).Inc()
	}
	p.mu.Lock()
	p.lastErrors = failures
	p.mu.Unlock()

	p.logger.Info("Balance poll finished", "addresses", len(addresses), "networks", len(networks), "errors", len(failures))
	return failures, nil
}

func (p *BalancePoller) pollAccount(ctx context.Context, client port.BlockchainClient, netDef entity.NetworkDefinition, tokens []entity.TokenInfo, address string) ([]entity.AssetBalance, []entity.PollError) {
	requests := make([]entity.BalanceRequestItem, 0, len(tokens)+1)
	requests = append(requests, entity.BalanceRequestItem{
		ID:            fmt.Sprintf("%s:%s:native", netDef.Identifier, address),
		Type:          entity.NativeBalanceRequest,
		WalletAddress: address,
		Asset:         entity.NativeAsset(netDef),
	})
	for _, token := range tokens {
		requests = append(requests, entity.BalanceRequestItem{
			ID:            fmt.Sprintf("%s:%s:%s", netDef.Identifier, address, token.Address),
			Type:          entity.TokenBalanceRequest,
			WalletAddress: address,
			Asset:         entity.AssetFromToken(token),
		})
	}

	var (
		balances []entity.AssetBalance
		errs     []entity.PollError
	)
	retrievedAt := p.now()

	for _, batch := range utils.Batch(requests, p.cfg.MaxItemsPerBatch) {
		results, err := client.GetBalances(ctx, batch)
		if err != nil {
			p.logger.Warn("Balance batch failed", "network", netDef.Identifier, "address", address, "error", err)
			for _, req := range batch {
				errs = append(errs, newPollError(address, netDef, req.Asset, req.Type == entity.NativeBalanceRequest, err))
			}
			continue
		}
		for _, res := range results {
			if res.Error != nil || res.Balance == nil {
				errs = append(errs, newPollError(address, netDef, res.Asset, res.IsNative, res.Error))
				continue
			}
			balances = append(balances, entity.AssetBalance{
				Address:     address,
				Network:     netDef,
				AssetAmount: entity.AssetAmount{Asset: res.Asset, Amount: res.Balance},
				RetrievedAt: retrievedAt,
				DataSource:  entity.DataSourceLocal,
			})
		}
	}
	return balances, errs
}

// mergeAcrossNetworks folds one address's balances from several networks
// into one balance per symbol. Same-symbol amounts are summed; the network of
// the lowest chain id is kept.
func mergeAcrossNetworks(perNetwork []fetched) []entity.AssetBalance {
	sort.Slice(perNetwork, func(i, j int) bool {
		return perNetwork[i].network.ChainID < perNetwork[j].network.ChainID
	})

	bySymbol := make(map[string]int)
	var merged []entity.AssetBalance
	for _, f := range perNetwork {
		for _, b := range f.balances {
			i, seen := bySymbol[b.Symbol()]
			if !seen {
				bySymbol[b.Symbol()] = len(merged)
				b.AssetAmount.Amount = new(big.Int).Set(b.AssetAmount.Amount)
				merged = append(merged, b)
				continue
			}
			merged[i].AssetAmount.Amount.Add(merged[i].AssetAmount.Amount, b.AssetAmount.Amount)
		}
	}
	return merged
}

func newPollError(address string, netDef entity.NetworkDefinition, asset entity.Asset, native bool, err error) entity.PollError {
	msg := "no balance returned"
	if err != nil {
		msg = err.Error()
	}
	return entity.PollError{
		WalletAddress: address,
		NetworkName:   netDef.Name,
		ChainID:       netDef.ChainID,
		TokenSymbol:   asset.Symbol,
		TokenAddress:  asset.ContractAddress,
		IsNative:      native,
		Message:       msg,
	}
}

// Run polls on every tick until ctx is done.
func (p *BalancePoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()
	for {
		if _, err := p.PollOnce(ctx); err != nil && ctx.Err() == nil {
			p.logger.Error("Balance poll failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// LastErrors returns the failures of the most recent round.
func (p *BalancePoller) LastErrors() []entity.PollError {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]entity.PollError, len(p.lastErrors))
	copy(out, p.lastErrors)
	return out
}

// FailedWallets returns the distinct addresses with at least one failure in
// the most recent round.
func (p *BalancePoller) FailedWallets() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, e := range p.LastErrors() {
		if _, ok := seen[e.WalletAddress]; ok {
			continue
		}
		seen[e.WalletAddress] = struct{}{}
		out = append(out, e.WalletAddress)
	}
	sort.Strings(out)
	return out
}
