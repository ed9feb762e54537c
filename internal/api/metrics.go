package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	postingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "greenbooks_postings_total",
		Help: "Transactions posted through the HTTP API, by document kind.",
	}, []string{"kind"})

	postingReplaysTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "greenbooks_posting_replays_total",
		Help: "Idempotent replays of already-posted references, by document kind.",
	}, []string{"kind"})

	closingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "greenbooks_period_closings_total",
		Help: "Period-close transactions posted.",
	})

	depreciationEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "greenbooks_depreciation_events_total",
		Help: "Depreciation periods posted by runs triggered over HTTP.",
	})
)

func observePosting(kind string, existing bool) {
	if existing {
		postingReplaysTotal.WithLabelValues(kind).Inc()
		return
	}
	postingsTotal.WithLabelValues(kind).Inc()
}
