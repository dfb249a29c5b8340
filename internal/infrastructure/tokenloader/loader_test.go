package tokenloader

import (
	"os"
	"path/filepath"
	"testing"

	"wallet_state/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

var (
	ethereum = entity.NetworkDefinition{ChainID: 1, Identifier: "ethereum"}
	base     = entity.NetworkDefinition{ChainID: 8453, Identifier: "base"}
)

func TestGetTokensByNetwork(t *testing.T) {
	dir := t.TempDir()
	body := `[
 {"chainId":1,"address":"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48","name":"USD Coin","symbol":"USDC","decimals":6},
 {"chainId":1,"address":"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48","name":"USD Coin","symbol":"USDC","decimals":6},
 {"chainId":56,"address":"0x55d398326f99059fF775485246999027B3197955","name":"Tether","symbol":"USDT","decimals":18},
 {"chainId":1,"address":"not-an-address","name":"Broken","symbol":"BRK","decimals":18}
]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ethereum.json"), []byte(body), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.json"), []byte("{not json"), 0o600))

	tokens, err := NewTokenLoader(dir, nopLogger{}).GetTokensByNetwork([]entity.NetworkDefinition{ethereum, base})
	require.NoError(t, err)

	require.Len(t, tokens[1], 1)
	assert.Equal(t, "USDC", tokens[1][0].Symbol)
	assert.NotContains(t, tokens, uint64(8453))
}

func TestGetTokensByNetworkNothingLoaded(t *testing.T) {
	_, err := NewTokenLoader(t.TempDir(), nopLogger{}).GetTokensByNetwork([]entity.NetworkDefinition{ethereum})
	assert.Error(t, err)

	tokens, err := NewTokenLoader(t.TempDir(), nopLogger{}).GetTokensByNetwork(nil)
	assert.NoError(t, err)
	assert.Empty(t, tokens)
}
