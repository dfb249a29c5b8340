package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"wallet_state/internal/accounts"
	"wallet_state/internal/app/port"
	"wallet_state/internal/client"
	dex_types "wallet_state/internal/entity"
	"wallet_state/internal/pkg/utils"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

const (
	stablecoinUSDCSymbol = "USDC"
	stablecoinUSDTSymbol = "USDT"
	stablecoinDAISymbol  = "DAI"
)

var stablecoinSymbols = map[string]struct{}{
	stablecoinUSDCSymbol: {},
	stablecoinUSDTSymbol: {},
	stablecoinDAISymbol:  {},
}

// TokenPriceConfig tunes the price service.
type TokenPriceConfig struct {
	MaxTokensPerBatch int
	Concurrency       int
	CacheTTL          time.Duration
}

// TokenPriceService caches DEXScreener prices. It implements
// port.TokenPriceService and accounts.PriceSource.
type TokenPriceService struct {
	tokenProvider     port.TokenProvider
	networkProvider   port.NetworkDefinitionProvider
	dexscreenerClient client.DEXScreenerClient
	logger            port.Logger
	cfg               TokenPriceConfig
	prices            *cache.Cache
}

// NewTokenPriceService creates a new price service.
func NewTokenPriceService(
	tp port.TokenProvider,
	np port.NetworkDefinitionProvider,
	dsc client.DEXScreenerClient,
	l port.Logger,
	cfg TokenPriceConfig,
) *TokenPriceService {
	if cfg.MaxTokensPerBatch <= 0 {
		cfg.MaxTokensPerBatch = 30
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	return &TokenPriceService{
		tokenProvider:     tp,
		networkProvider:   np,
		dexscreenerClient: dsc,
		logger:            l,
		cfg:               cfg,
		prices:            cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
	}
}

type priceTarget struct {
	address string
	symbol  string
}

// LoadAndCacheTokenPrices fetches prices for every token of every active
// network, plus each network's wrapped native token. A failed batch is
// logged and skipped.
func (s *TokenPriceService) LoadAndCacheTokenPrices(ctx context.Context) error {
	networks := s.networkProvider.GetAllNetworkDefinitions()
	if len(networks) == 0 {
		s.logger.Warn("No active networks found. Cannot fetch token prices.")
		return nil
	}

	tokensByChainID, err := s.tokenProvider.GetTokensByNetwork(networks)
	if err != nil {
		return fmt.Errorf("failed to get tokens for price fetching: %w", err)
	}

	var cached, missing atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for _, netDef := range networks {
		if netDef.DEXScreenerChainID == "" {
			s.logger.Warn("DEXScreenerChainID not defined for network, skipping", "network_identifier", netDef.Identifier)
			continue
		}

		targets := make([]priceTarget, 0, len(tokensByChainID[netDef.ChainID])+1)
		for _, token := range tokensByChainID[netDef.ChainID] {
			targets = append(targets, priceTarget{address: token.Address, symbol: token.Symbol})
		}
		if netDef.WrappedNativeTokenAddress != "" {
			targets = append(targets, priceTarget{address: netDef.WrappedNativeTokenAddress, symbol: netDef.NativeSymbol})
		}

		for _, batch := range utils.Batch(targets, s.cfg.MaxTokensPerBatch) {
			dexID := netDef.DEXScreenerChainID
			g.Go(func() error {
				addresses := make([]string, len(batch))
				for i, target := range batch {
					addresses[i] = target.address
				}

				pairs, err := s.dexscreenerClient.GetTokenPairsByAddresses(gctx, dexID, addresses)
				if err != nil {
					s.logger.Error("Failed to get token pairs from DEXScreener", "dexScreenerID", dexID, "token_count", len(batch), "error", err)
					missing.Add(int64(len(batch)))
					return nil
				}

				for _, target := range batch {
					price, ok := s.selectBestPriceFromPairs(pairs, target.address)
					if !ok {
						missing.Add(1)
						continue
					}
					s.prices.SetDefault(addressKey(dexID, target.address), price)
					s.prices.SetDefault(symbolKey(target.symbol), price)
					cached.Add(1)
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("Finished loading token prices from DEXScreener", "cached", cached.Load(), "failed_or_missing", missing.Load())
	return nil
}

// Run refreshes prices on every tick until ctx is done.
func (s *TokenPriceService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := s.LoadAndCacheTokenPrices(ctx); err != nil {
			s.logger.Error("Token price refresh failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// selectBestPriceFromPairs prefers the most liquid stablecoin-quoted pair and
// falls back to the most liquid pair of any quote.
func (s *TokenPriceService) selectBestPriceFromPairs(pairs []dex_types.PairData, baseTokenAddress string) (float64, bool) {
	var bestOverall, bestStable *dex_types.PairData
	usd := func(l dex_types.DEXLiquidity) float64 { return l.Usd }

	for i := range pairs {
		pair := &pairs[i]
		if !strings.EqualFold(pair.BaseToken.Address, baseTokenAddress) {
			continue
		}
		if price, err := strconv.ParseFloat(pair.PriceUsd, 64); err != nil || price <= 0 {
			continue
		}

		liquidity := utils.SafeDerefFloat64(pair.Liquidity, usd)
		if _, isStable := stablecoinSymbols[strings.ToUpper(pair.QuoteToken.Symbol)]; isStable {
			if bestStable == nil || liquidity > utils.SafeDerefFloat64(bestStable.Liquidity, usd) {
				bestStable = pair
			}
		}
		if bestOverall == nil || liquidity > utils.SafeDerefFloat64(bestOverall.Liquidity, usd) {
			bestOverall = pair
		}
	}

	best := bestStable
	if best == nil {
		best = bestOverall
	}
	if best == nil {
		s.logger.Debug("No suitable price found from pairs", "baseTokenAddress", baseTokenAddress, "evaluatedPairCount", len(pairs))
		return 0, false
	}
	price, _ := strconv.ParseFloat(best.PriceUsd, 64)
	return price, true
}

// GetPriceUSD returns the cached price of a token on one chain.
func (s *TokenPriceService) GetPriceUSD(dexScreenerChainID string, tokenAddress string) (float64, bool) {
	v, ok := s.prices.Get(addressKey(dexScreenerChainID, tokenAddress))
	if !ok {
		return 0, false
	}
	return v.(float64), true
}

// PriceBySymbol returns the last cached price for symbol. Stablecoins without
// a cached price are valued at one.
func (s *TokenPriceService) PriceBySymbol(symbol string) (float64, bool) {
	if v, ok := s.prices.Get(symbolKey(symbol)); ok {
		return v.(float64), true
	}
	if _, isStable := stablecoinSymbols[strings.ToUpper(symbol)]; isStable {
		return 1, true
	}
	return 0, false
}

// Prices returns every cached per-token price keyed by "<chain>:<address>".
func (s *TokenPriceService) Prices() map[string]float64 {
	out := make(map[string]float64)
	for key, item := range s.prices.Items() {
		if strings.HasPrefix(key, "symbol:") {
			continue
		}
		out[key] = item.Object.(float64)
	}
	return out
}

func addressKey(dexScreenerChainID, address string) string {
	return dexScreenerChainID + ":" + strings.ToLower(address)
}

func symbolKey(symbol string) string {
	return "symbol:" + strings.ToUpper(symbol)
}

var (
	_ port.TokenPriceService = (*TokenPriceService)(nil)
	_ accounts.PriceSource   = (*TokenPriceService)(nil)
)
