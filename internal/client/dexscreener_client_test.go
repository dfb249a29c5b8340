package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetTokenPairsByAddresses(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"chainId":"ethereum","pairAddress":"0xpair","baseToken":{"address":"0xAAA","symbol":"AAA"},"quoteToken":{"symbol":"USDC"},"priceUsd":"1.25","liquidity":{"usd":1000}}]`))
	}))
	defer server.Close()

	c := NewDEXScreenerClient(server.URL+"/", time.Second, zap.NewNop(), 30)
	pairs, err := c.GetTokenPairsByAddresses(context.Background(), "ethereum", []string{"0xAAA", "0xBBB"})
	require.NoError(t, err)

	assert.Equal(t, "/tokens/v1/ethereum/0xAAA,0xBBB", gotPath)
	require.Len(t, pairs, 1)
	assert.Equal(t, "1.25", pairs[0].PriceUsd)
	assert.Equal(t, 1000.0, pairs[0].Liquidity.Usd)
}

func TestGetTokenPairsWrappedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"schemaVersion":"1.0.0","pairs":[{"baseToken":{"address":"0xAAA"},"priceUsd":"2"}]}`))
	}))
	defer server.Close()

	pairs, err := NewDEXScreenerClient(server.URL, time.Second, zap.NewNop(), 30).
		GetTokenPairsByAddresses(context.Background(), "base", []string{"0xAAA"})
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "2", pairs[0].PriceUsd)
}

func TestGetTokenPairsErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewDEXScreenerClient(server.URL, time.Second, zap.NewNop(), 1)

	_, err := c.GetTokenPairsByAddresses(context.Background(), "ethereum", nil)
	assert.Error(t, err)

	_, err = c.GetTokenPairsByAddresses(context.Background(), "ethereum", []string{"0x1", "0x2"})
	assert.ErrorIs(t, err, ErrTooManyTokens)

	_, err = c.GetTokenPairsByAddresses(context.Background(), "ethereum", []string{"0x1"})
	assert.Error(t, err)
}
