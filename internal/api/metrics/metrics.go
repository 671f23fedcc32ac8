// Package metrics defines and registers all custom Prometheus metrics for
// the admin backend. It is the single source of truth for metric names,
// labels, and help strings. Registration happens at import time via
// promauto; the scrape endpoint is mounted by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "foundly_admin"

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenRefreshesTotal counts access-token refreshes.
// Label:
//   - result: "success" or "failure"
var TokenRefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refreshes_total",
		Help:      "Total number of refresh-token exchanges, by result.",
	},
	[]string{"result"},
)

// AccessCodesCreatedTotal counts invite codes written to the store.
var AccessCodesCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_codes_created_total",
		Help:      "Total number of access codes created.",
	},
)

// RewardRecalculationsTotal counts average-rewards aggregate rebuilds.
var RewardRecalculationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reward_recalculations_total",
		Help:      "Total number of average-rewards recalculations.",
	},
)

// CollectionReadsTotal counts generic collection browses.
// Label:
//   - collection: a known logical collection name, or "other"
var CollectionReadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "collection_reads_total",
		Help:      "Total number of generic collection reads, by collection.",
	},
	[]string{"collection"},
)

// knownCollections bounds the collection label set: the path parameter is
// client-controlled, and an unchecked label would let any authenticated
// caller mint unbounded series.
var knownCollections = map[string]struct{}{
	"Posts":            {},
	"SearchLogs":       {},
	"Partners":         {},
	"PartnerLocations": {},
	"AccessCodes":      {},
	"Messages":         {},
	"Dynamic":          {},
	"AppUsers":         {},
}

// CollectionLabel maps a requested collection name onto the bounded label
// set; unknown names collapse into "other".
func CollectionLabel(name string) string {
	if _, ok := knownCollections[name]; ok {
		return name
	}
	return "other"
}
