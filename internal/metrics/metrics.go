// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "moderation"

// StorageProvider is 1 for the provider currently bound, 0 for the others.
var StorageProvider = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "storage",
	Name:      "provider_active",
	Help:      "Which storage provider is bound (1) or not (0).",
}, []string{"kind"})

// RemoteRequests counts remote ledger calls by endpoint and outcome.
var RemoteRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "remote",
	Name:      "requests_total",
	Help:      "Remote ledger requests by endpoint and outcome.",
}, []string{"endpoint", "outcome"})

// RewardsApplied counts successful coin rewards.
var RewardsApplied = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "rewards_total",
	Help:      "Total coin rewards written to the ledger.",
})

// CoinsAwarded sums the coins credited by rewards.
var CoinsAwarded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "coins_awarded_total",
	Help:      "Total coins credited through rewards.",
})

// RewardFailures counts ledger writes that failed.
var RewardFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "reward_failures_total",
	Help:      "Total coin rewards that could not be written.",
})

// SyncAttempts counts main site sync deliveries by outcome (delivered, failed, parked, enqueued).
var SyncAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "sync",
	Name:      "attempts_total",
	Help:      "Main site coin sync attempts by outcome.",
}, []string{"outcome"})

// OutboxDepth is the number of undelivered sync entries.
var OutboxDepth = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "sync",
	Name:      "outbox_depth",
	Help:      "Sync entries waiting for delivery.",
})

// ModerationDecisions counts approvals and rejections by result.
var ModerationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "notes",
	Name:      "decisions_total",
	Help:      "Moderation decisions by action and result.",
}, []string{"action", "result"})

// SetStorageProvider marks kind as the bound provider.
func SetStorageProvider(kind string, all ...string) {
	for _, k := range all {
		StorageProvider.WithLabelValues(k).Set(0)
	}
	StorageProvider.WithLabelValues(kind).Set(1)
}
