package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SettlementMetrics tracks marketplace settlement activity for the node's
// /metrics endpoint.
type SettlementMetrics struct {
	rpcRequests    *prometheus.CounterVec
	purchases      *prometheus.CounterVec
	purchasedUnits *prometheus.CounterVec
	refunds        *prometheus.CounterVec
	withdrawals    *prometheus.CounterVec
}

var (
	settlementOnce     sync.Once
	settlementRegistry *SettlementMetrics
)

func Settlement() *SettlementMetrics {
	settlementOnce.Do(func() {
		settlementRegistry = &SettlementMetrics{
			rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "marketnet_rpc_requests_total",
				Help: "Count of JSON-RPC requests by method.",
			}, []string{"method"}),
			purchases: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "marketnet_purchases_total",
				Help: "Count of completed purchases by payment asset and settlement mode.",
			}, []string{"asset", "mode"}),
			purchasedUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "marketnet_purchased_units_total",
				Help: "Total exemplars sold by payment asset.",
			}, []string{"asset"}),
			refunds: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "marketnet_refunds_total",
				Help: "Count of refunded escrow payments by asset.",
			}, []string{"asset"}),
			withdrawals: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "marketnet_withdrawals_total",
				Help: "Count of seller escrow withdrawals by asset.",
			}, []string{"asset"}),
		}
		prometheus.MustRegister(
			settlementRegistry.rpcRequests,
			settlementRegistry.purchases,
			settlementRegistry.purchasedUnits,
			settlementRegistry.refunds,
			settlementRegistry.withdrawals,
		)
	})
	return settlementRegistry
}

func (m *SettlementMetrics) ObserveRPCRequest(method string) {
	if m == nil {
		return
	}
	if method == "" {
		method = "unknown"
	}
	m.rpcRequests.WithLabelValues(method).Inc()
}

func (m *SettlementMetrics) ObservePurchase(asset string, units uint64, escrowed bool) {
	if m == nil {
		return
	}
	if asset == "" {
		asset = "unknown"
	}
	mode := "immediate"
	if escrowed {
		mode = "escrow"
	}
	m.purchases.WithLabelValues(asset, mode).Inc()
	m.purchasedUnits.WithLabelValues(asset).Add(float64(units))
}

func (m *SettlementMetrics) ObserveRefund(asset string) {
	if m == nil {
		return
	}
	if asset == "" {
		asset = "unknown"
	}
	m.refunds.WithLabelValues(asset).Inc()
}

func (m *SettlementMetrics) ObserveWithdrawal(asset string) {
	if m == nil {
		return
	}
	if asset == "" {
		asset = "unknown"
	}
	m.withdrawals.WithLabelValues(asset).Inc()
}

// Package-level helpers operating on the shared registry.

func ObserveRPCRequest(method string) { Settlement().ObserveRPCRequest(method) }

func ObservePurchase(asset string, units uint64, escrowed bool) {
	Settlement().ObservePurchase(asset, units, escrowed)
}

func ObserveRefund(asset string) { Settlement().ObserveRefund(asset) }

func ObserveWithdrawal(asset string) { Settlement().ObserveWithdrawal(asset) }

// Handler exposes the default prometheus registry over HTTP.
func Handler() http.Handler {
	Settlement()
	return promhttp.Handler()
}
