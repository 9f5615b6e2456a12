// Package metrics defines and registers all custom Prometheus metrics for the
// user API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry at import time
// via promauto; the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "userapi"

// UsersEnqueuedTotal counts signups admitted into the pending queue. The
// client receives a success response at this point, before durable commit.
var UsersEnqueuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_enqueued_total",
		Help:      "Total number of signups admitted into the pending queue.",
	},
)

// UsersCommittedTotal counts pending signups durably committed by the flusher.
var UsersCommittedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_committed_total",
		Help:      "Total number of pending signups committed to durable storage.",
	},
)

// UsersDroppedTotal counts accepted signups that never reached storage.
// Label:
//   - reason: currently only "duplicate_email" (a uniqueness race lost at
//     flush time). Every increment is a client that was told success for a
//     write that did not land.
var UsersDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_dropped_total",
		Help:      "Total number of accepted signups dropped before durable commit.",
	},
	[]string{"reason"},
)

// FlushFailuresTotal counts flush cycles that failed because durable storage
// was unavailable. The affected batch is re-queued, so this is a retry
// counter, not a loss counter.
var FlushFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "flush_failures_total",
		Help:      "Total number of flush cycles that failed with an unavailable store.",
	},
)

// FlushDuration measures a successful drain-to-commit cycle end-to-end.
var FlushDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "flush_duration_seconds",
		Help:      "Duration of a successful queue flush from drain to commit.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
)

// QueueDepth tracks the number of signups currently pending, sampled after
// each flush cycle.
var QueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Current number of signups waiting in the pending queue.",
	},
)
