package networkdefinition

import (
	"os"
	"sort"
	"strings"

	"wallet_state/internal/app/port"
	"wallet_state/internal/domain/entity"
)

// NetworkDefinitionProvider provides network definitions. A known network is
// active when a token list exists for it and, if a tracked list is
// configured, it is on that list.
type NetworkDefinitionProvider struct {
	logger            port.Logger
	allNetworkDefs    map[string]entity.NetworkDefinition
	activeNetworkDefs []entity.NetworkDefinition
	byIdentifier      map[string]int
	byChainID         map[uint64]int
}

// NewNetworkDefinitionProvider activates networks from the token files in
// tokenDataDir. <IDENTIFIER>_RPC_URL in the environment replaces a network's
// primary RPC endpoint.
func NewNetworkDefinitionProvider(log port.Logger, tokenDataDir string, tracked []string) *NetworkDefinitionProvider {
	p := &NetworkDefinitionProvider{
		logger:            log,
		allNetworkDefs:    allKnownDefinitions,
		activeNetworkDefs: make([]entity.NetworkDefinition, 0),
		byIdentifier:      make(map[string]int),
		byChainID:         make(map[uint64]int),
	}

	allowed := make(map[string]struct{}, len(tracked))
	for _, id := range tracked {
		allowed[strings.ToLower(strings.TrimSpace(id))] = struct{}{}
	}

	files, err := os.ReadDir(tokenDataDir)
	if err != nil {
		p.logger.Error("Failed to read token data directory", "directory", tokenDataDir, "error", err)
		return p
	}

	seen := make(map[string]struct{})
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(strings.ToLower(file.Name()), ".json") {
			continue
		}
		identifier := strings.TrimSuffix(strings.ToLower(file.Name()), ".json")
		if _, dup := seen[identifier]; dup {
			continue
		}
		seen[identifier] = struct{}{}

		def, ok := p.allNetworkDefs[identifier]
		if !ok {
			p.logger.Warn("Token file found for unknown network, skipping", "identifier", identifier)
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[identifier]; !ok {
				p.logger.Debug("Network has a token file but is not tracked", "identifier", identifier)
				continue
			}
		}
		if url := rpcOverride(identifier); url != "" {
			def.PrimaryRPCURL = url
			p.logger.Info("RPC URL overridden from environment", "identifier", identifier)
		}
		p.activeNetworkDefs = append(p.activeNetworkDefs, def)
	}

	sort.Slice(p.activeNetworkDefs, func(i, j int) bool {
		return p.activeNetworkDefs[i].ChainID < p.activeNetworkDefs[j].ChainID
	})
	for i, def := range p.activeNetworkDefs {
		p.byIdentifier[def.Identifier] = i
		p.byChainID[def.ChainID] = i
	}

	if len(p.activeNetworkDefs) == 0 {
		p.logger.Warn("No active networks. Add token files for known networks.", "directory", tokenDataDir)
	} else {
		p.logger.Info("NetworkDefinitionProvider initialized", "active_networks", len(p.activeNetworkDefs))
	}
	return p
}

// GetAllNetworkDefinitions returns the active networks in ascending chain id order.
func (p *NetworkDefinitionProvider) GetAllNetworkDefinitions() []entity.NetworkDefinition {
	if p == nil {
		return []entity.NetworkDefinition{}
	}
	return append([]entity.NetworkDefinition(nil), p.activeNetworkDefs...)
}

// GetNetworkDefinitionByName returns an active network by identifier.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByName(identifier string) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	i, ok := p.byIdentifier[strings.ToLower(identifier)]
	if !ok {
		return entity.NetworkDefinition{}, false
	}
	return p.activeNetworkDefs[i], true
}

// GetNetworkDefinitionByChainID returns an active network by chain id and
// falls back to the inactive known networks.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByChainID(chainID uint64) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	if i, ok := p.byChainID[chainID]; ok {
		return p.activeNetworkDefs[i], true
	}
	for _, known := range p.allNetworkDefs {
		if known.ChainID == chainID {
			return known, true
		}
	}
	return entity.NetworkDefinition{}, false
}

// rpcOverride reads <IDENTIFIER>_RPC_URL from the environment.
func rpcOverride(identifier string) string {
	return strings.TrimSpace(os.Getenv(strings.ToUpper(identifier) + "_RPC_URL"))
}
