// Package observability registers the process-wide Prometheus collectors.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	tideFetchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tidetimes",
		Name:      "tide_fetches_total",
		Help:      "Remote tide data fetches issued.",
	})
	tideCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tidetimes",
		Name:      "tide_cache_hits_total",
		Help:      "Tide range requests answered from the local store.",
	})
	moonFetchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tidetimes",
		Name:      "moon_fetches_total",
		Help:      "Moon phase year fetches issued.",
	})
	warningRefreshesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tidetimes",
		Name:      "warning_refreshes_total",
		Help:      "Weather warning feed refreshes performed.",
	})
	warningNotModifiedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tidetimes",
		Name:      "warning_not_modified_total",
		Help:      "Warning feed checks skipped because the feed was unchanged.",
	})
	scheduleBuildSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tidetimes",
		Name:      "schedule_build_seconds",
		Help:      "Wall time of one schedule pipeline run.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
	})
)

func init() {
	prometheus.MustRegister(
		tideFetchesTotal,
		tideCacheHitsTotal,
		moonFetchesTotal,
		warningRefreshesTotal,
		warningNotModifiedTotal,
		scheduleBuildSeconds,
	)
}

func IncTideFetch()          { tideFetchesTotal.Inc() }
func IncTideCacheHit()       { tideCacheHitsTotal.Inc() }
func IncMoonFetch()          { moonFetchesTotal.Inc() }
func IncWarningRefresh()     { warningRefreshesTotal.Inc() }
func IncWarningNotModified() { warningNotModifiedTotal.Inc() }

func ObserveScheduleBuild(d time.Duration) {
	scheduleBuildSeconds.Observe(d.Seconds())
}
