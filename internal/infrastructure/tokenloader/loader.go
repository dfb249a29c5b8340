package tokenloader

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"wallet_state/internal/app/port"
	"wallet_state/internal/domain/entity"
	"wallet_state/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultTokenDirectoryPath is used when no directory is configured.
const DefaultTokenDirectoryPath = "data/tokens"

// TokenFileLoader implements port.TokenProvider by reading <identifier>.json
// files from a directory.
type TokenFileLoader struct {
	tokenDirPath string
	logger       port.Logger
}

// NewTokenLoader creates a new TokenFileLoader.
func NewTokenLoader(tokenDirPath string, logger port.Logger) *TokenFileLoader {
	if tokenDirPath == "" {
		tokenDirPath = DefaultTokenDirectoryPath
	}
	return &TokenFileLoader{tokenDirPath: tokenDirPath, logger: logger}
}

// GetTokensByNetwork reads the token list of every active network. A missing
// file yields no tokens for that network; a malformed file is skipped with a
// warning. Tokens whose chain id or address does not fit the network are dropped.
func (l *TokenFileLoader) GetTokensByNetwork(activeNetworkDefs []entity.NetworkDefinition) (map[uint64][]entity.TokenInfo, error) {
	tokensByChainID := make(map[uint64][]entity.TokenInfo, len(activeNetworkDefs))

	for _, netDef := range activeNetworkDefs {
		filePath := filepath.Join(l.tokenDirPath, netDef.Identifier+".json")
		tokensInFile, err := utils.LoadTokensFromJSON(filePath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				l.logger.Debug("No token file for network", "network_identifier", netDef.Identifier, "path", filePath)
				continue
			}
			l.logger.Warn("Failed to load token file, skipping", "path", filePath, "error", err)
			continue
		}

		valid := make([]entity.TokenInfo, 0, len(tokensInFile))
		seen := make(map[string]struct{}, len(tokensInFile))
		for _, token := range tokensInFile {
			if token.ChainID != netDef.ChainID {
				l.logger.Warn("Token has mismatched ChainID in file, skipping token",
					"file", filePath, "token_symbol", token.Symbol,
					"token_chain_id", token.ChainID, "expected_chain_id", netDef.ChainID)
				continue
			}
			if !common.IsHexAddress(token.Address) || token.Symbol == "" {
				l.logger.Warn("Token has invalid address or symbol, skipping token", "file", filePath, "token_address", token.Address)
				continue
			}
			key := strings.ToLower(token.Address)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			valid = append(valid, token)
		}

		if len(valid) > 0 {
			tokensByChainID[netDef.ChainID] = valid
			l.logger.Info("Loaded tokens for network", "network_identifier", netDef.Identifier, "count", len(valid))
		}
	}

	if len(tokensByChainID) == 0 && len(activeNetworkDefs) > 0 {
		return tokensByChainID, fmt.Errorf("no tokens loaded from %s for %d active networks", l.tokenDirPath, len(activeNetworkDefs))
	}
	return tokensByChainID, nil
}
