package client

import (
	"fmt"
	"sync"
	"time"

	"wallet_state/internal/app/port"
	"wallet_state/internal/domain/entity"
	"wallet_state/internal/infrastructure/configloader"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// evmClientProvider implements port.BlockchainClientProvider. Clients are
// dialed lazily and cached per chain; each chain gets its own rate limiter.
type evmClientProvider struct {
	clients           map[uint64]*EVMClient
	mu                sync.Mutex
	logger            *zap.Logger
	connectionTimeout time.Duration
	rpcCallTimeout    time.Duration
	rateLimit         rate.Limit
	burst             int
}

// NewEVMClientProvider creates a new EVMClientProvider.
func NewEVMClientProvider(cfg *configloader.Config, logger *zap.Logger) port.BlockchainClientProvider {
	return &evmClientProvider{
		clients:           make(map[uint64]*EVMClient),
		logger:            logger.Named("EVMClientProvider"),
		connectionTimeout: cfg.ConnectionTimeout(),
		rpcCallTimeout:    cfg.RPCCallTimeout(),
		rateLimit:         rate.Limit(cfg.Poller.RateLimitPerSecond),
		burst:             cfg.Poller.BurstLimit,
	}
}

// GetClient retrieves the client for netDef, dialing it on first use.
func (p *evmClientProvider) GetClient(netDef entity.NetworkDefinition) (port.BlockchainClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if client, exists := p.clients[netDef.ChainID]; exists {
		return client, nil
	}

	p.logger.Info("Creating new EVM client", zap.String("network", netDef.Name), zap.String("rpc_primary", netDef.PrimaryRPCURL))
	newClient, err := NewEVMClient(netDef, p.logger, p.connectionTimeout, p.rpcCallTimeout, rate.NewLimiter(p.rateLimit, p.burst))
	if err != nil {
		p.logger.Error("Failed to create EVM client", zap.String("network", netDef.Name), zap.Error(err))
		return nil, fmt.Errorf("failed to create EVM client for %s: %w", netDef.Name, err)
	}

	p.clients[netDef.ChainID] = newClient
	return newClient, nil
}

// Close closes every cached client.
func (p *evmClientProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, c := range p.clients {
		c.Close()
		delete(p.clients, id)
	}
}
