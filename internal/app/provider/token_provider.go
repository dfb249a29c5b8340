package provider

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"wallet_state/internal/app/port"
	"wallet_state/internal/domain/entity"
)

type tokenProviderImpl struct {
	source port.TokenProvider
	logger port.Logger

	mu          sync.Mutex
	tokensCache map[string]map[uint64][]entity.TokenInfo
}

// NewTokenProvider wraps source with a cache keyed by the requested network set.
func NewTokenProvider(source port.TokenProvider, logger port.Logger) port.TokenProvider {
	return &tokenProviderImpl{
		source:      source,
		logger:      logger,
		tokensCache: make(map[string]map[uint64][]entity.TokenInfo),
	}
}

// GetTokensByNetwork loads token definitions for the active networks once and
// serves later calls for the same networks from cache.
func (p *tokenProviderImpl) GetTokensByNetwork(activeNetworkDefs []entity.NetworkDefinition) (map[uint64][]entity.TokenInfo, error) {
	key := networkSetKey(activeNetworkDefs)

	p.mu.Lock()
	defer p.mu.Unlock()

	if cached, ok := p.tokensCache[key]; ok {
		p.logger.Debug("Returning cached tokens by network")
		return cached, nil
	}

	tokens, err := p.source.GetTokensByNetwork(activeNetworkDefs)
	if err != nil {
		p.logger.Error("Failed to load tokens", "error", err)
		return nil, err
	}

	p.tokensCache[key] = tokens
	p.logger.Info("Tokens loaded and cached successfully", "total_networks_with_tokens", len(tokens))
	return tokens, nil
}

func networkSetKey(defs []entity.NetworkDefinition) string {
	ids := make([]string, len(defs))
	for i, def := range defs {
		ids[i] = strconv.FormatUint(def.ChainID, 10)
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}
