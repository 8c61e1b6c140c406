// Package metrics wires the Directory Agent's cache and dispatcher into
// prometheus/client_golang counters and gauges, grounded in the teacher
// stack's existing prometheus dependency (used there for cluster metrics,
// here for registry and request metrics).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics groups every counter/gauge the DA core emits. A zero-value
// Metrics is unusable; always construct with New.
type Metrics struct {
	Registrations   prometheus.Counter
	Deregistrations prometheus.Counter
	Updates         prometheus.Counter
	Queries         prometheus.Counter
	Matches         prometheus.Histogram
	DropsByReason   *prometheus.CounterVec
	PurgeRuns       prometheus.Counter
	Purged          prometheus.Counter
	AdvertsSent     *prometheus.CounterVec
	CacheSize       prometheus.GaugeFunc
}

// New registers every metric against reg and returns the handle. CacheSize
// is wired to sizeFn, called on every scrape.
func New(reg prometheus.Registerer, sizeFn func() float64) *Metrics {
	m := &Metrics{
		Registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "slpd",
			Name:      "registrations_total",
			Help:      "Total successful fresh SrvReg registrations (updates are counted in updates_total).",
		}),
		Deregistrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "slpd",
			Name:      "deregistrations_total",
			Help:      "Total successful full SrvDeReg deregistrations.",
		}),
		Updates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "slpd",
			Name:      "updates_total",
			Help:      "Total attribute-only SrvReg/SrvDeReg updates.",
		}),
		Queries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "slpd",
			Name:      "queries_total",
			Help:      "Total TCP SrvRqst requests answered from the cache.",
		}),
		Matches: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "slpd",
			Name:      "match_results",
			Help:      "Number of ServiceInfos matched per answered TCP SrvRqst.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
		DropsByReason: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slpd",
			Name:      "dispatch_drops_total",
			Help:      "Messages dropped by the dispatcher, by reason.",
		}, []string{"reason"}),
		PurgeRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "slpd",
			Name:      "purge_runs_total",
			Help:      "Total purger ticks.",
		}),
		Purged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "slpd",
			Name:      "purged_services_total",
			Help:      "Total expired services removed by the purger.",
		}),
		AdvertsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slpd",
			Name:      "adverts_sent_total",
			Help:      "DAAdverts sent, by kind.",
		}, []string{"kind"}),
	}
	m.CacheSize = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "slpd",
		Name:      "cache_size",
		Help:      "Current number of live registrations.",
	}, sizeFn)

	reg.MustRegister(
		m.Registrations, m.Deregistrations, m.Updates, m.Queries, m.Matches,
		m.DropsByReason, m.PurgeRuns, m.Purged, m.AdvertsSent, m.CacheSize,
	)
	return m
}
