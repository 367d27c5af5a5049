// Package services – job metrics
//
// This file exposes Prometheus instrumentation for the background jobs. The
// single counter keeps label cardinality trivially bounded: one label with
// three possible outcomes.
package services

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeUpdated = "updated"
	outcomeSkipped = "skipped"
	outcomeFailed  = "failed"
)

// posterSyncItems counts poster sync work items by outcome.
var posterSyncItems = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "poster_sync_items_total",
		Help: "Total number of movies processed by the poster sync job, by outcome.",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(posterSyncItems)
}
