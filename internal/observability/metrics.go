// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Custody metrics
	WalletsCreated  prometheus.Counter
	FundingAttempts *prometheus.CounterVec

	// Pricing metrics
	PriceLookups *prometheus.CounterVec

	// Trading metrics
	SwapsBuilt        prometheus.Counter
	SwapBuildFailures prometheus.Counter
	TradesExecuted    *prometheus.CounterVec
	TradeFailures     *prometheus.CounterVec

	// Submission metrics
	TransactionsSubmitted prometheus.Counter
	SubmissionFailures    prometheus.Counter

	// Latency metrics
	RPCCallLatency *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	Heartbeats    prometheus.Counter
	UptimeSeconds prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "trading_agent"
	}

	return &Metrics{
		// Custody metrics
		WalletsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "custody",
			Name:      "wallets_created_total",
			Help:      "Total number of custodial wallets created",
		}),
		FundingAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "custody",
			Name:      "funding_attempts_total",
			Help:      "Total number of privileged funding transfers by status",
		}, []string{"status"}),

		// Pricing metrics
		PriceLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "lookups_total",
			Help:      "Total number of price resolutions by source",
		}, []string{"source"}),

		// Trading metrics
		SwapsBuilt: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "routes_built_total",
			Help:      "Total number of swap transactions built",
		}),
		SwapBuildFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "route_build_failures_total",
			Help:      "Total number of failed swap route builds",
		}),
		TradesExecuted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "trades_executed_total",
			Help:      "Total number of executed trades by side",
		}, []string{"side"}),
		TradeFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "trade_failures_total",
			Help:      "Total number of failed trades by side and reason",
		}, []string{"side", "reason"}),

		// Submission metrics
		TransactionsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "submit",
			Name:      "transactions_submitted_total",
			Help:      "Total number of transactions broadcast to the chain",
		}),
		SubmissionFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "submit",
			Name:      "submission_failures_total",
			Help:      "Total number of failed transaction submissions",
		}),

		// Latency metrics
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		Heartbeats: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "heartbeats_total",
			Help:      "Total number of liveness heartbeats emitted",
		}),
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordWalletCreated increments the wallets created counter.
func RecordWalletCreated() {
	DefaultMetrics.WalletsCreated.Inc()
}

// RecordFundingAttempt records a privileged funding transfer outcome.
func RecordFundingAttempt(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	DefaultMetrics.FundingAttempts.WithLabelValues(status).Inc()
}

// RecordPriceLookup records a price resolution by source.
func RecordPriceLookup(source string) {
	DefaultMetrics.PriceLookups.WithLabelValues(source).Inc()
}

// RecordSwapBuild records a swap route build outcome.
func RecordSwapBuild(err error) {
	if err != nil {
		DefaultMetrics.SwapBuildFailures.Inc()
		return
	}
	DefaultMetrics.SwapsBuilt.Inc()
}

// RecordTrade records an executed trade by side.
func RecordTrade(side string) {
	DefaultMetrics.TradesExecuted.WithLabelValues(side).Inc()
}

// RecordTradeFailure records a failed trade by side and reason.
func RecordTradeFailure(side, reason string) {
	DefaultMetrics.TradeFailures.WithLabelValues(side, reason).Inc()
}

// RecordSubmission records a broadcast outcome.
func RecordSubmission(err error) {
	if err != nil {
		DefaultMetrics.SubmissionFailures.Inc()
		return
	}
	DefaultMetrics.TransactionsSubmitted.Inc()
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordHeartbeat increments the heartbeat counter.
func RecordHeartbeat() {
	DefaultMetrics.Heartbeats.Inc()
}
