// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wallet_state"

var (
	// ActionsApplied counts directory actions applied by the store.
	ActionsApplied = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "actions_applied_total",
		Help:      "Number of account directory actions applied, by action.",
	}, []string{"action"})

	// ActionDuration observes how long the store takes to apply one action.
	ActionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "action_duration_seconds",
		Help:      "Time spent applying one account directory action.",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
	}, []string{"action"})

	// TrackedAccounts reports tracked addresses by state.
	TrackedAccounts = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "tracked_accounts",
		Help:      "Tracked addresses, by state (loading or ready).",
	}, []string{"state"})

	// CombinedAssets reports the number of distinct symbols in the combined portfolio.
	CombinedAssets = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "combined_assets",
		Help:      "Distinct asset symbols in the combined portfolio.",
	})

	// RPCBatchDuration observes JSON-RPC balance batch latency by network.
	RPCBatchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rpc_batch_duration_seconds",
		Help:      "Latency of JSON-RPC balance batches.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network"})

	// PollErrors counts balances that could not be fetched, by network.
	PollErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poll_errors_total",
		Help:      "Balances that failed to fetch during polling.",
	}, []string{"network"})

	// TransfersDecoded counts Transfer logs decoded by the activity service.
	TransfersDecoded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transfers_decoded_total",
		Help:      "ERC20 Transfer logs decoded, by network.",
	}, []string{"network"})

	// PriceRequests counts DEXScreener requests by outcome.
	PriceRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_requests_total",
		Help:      "DEXScreener price requests, by outcome.",
	}, []string{"outcome"})
)

var registerOnce sync.Once

// MustRegisterMetrics registers every collector with the default registry.
// Calling it more than once is harmless.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ActionsApplied,
			ActionDuration,
			TrackedAccounts,
			CombinedAssets,
			RPCBatchDuration,
			PollErrors,
			TransfersDecoded,
			PriceRequests,
		)
	})
}
