package telemetry

import "github.com/prometheus/client_golang/prometheus"

var EntitiesRegisteredTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "vigil",
		Subsystem: "entities",
		Name:      "registered_total",
		Help:      "Total number of entities registered.",
	},
)

var EntitiesDeletedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "vigil",
		Subsystem: "entities",
		Name:      "deleted_total",
		Help:      "Total number of entities deleted.",
	},
)

var BlacklistCreatedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "vigil",
		Subsystem: "blacklist",
		Name:      "created_total",
		Help:      "Total number of blacklist verdicts created, by type.",
	},
	[]string{"type"},
)

var BlacklistLiftedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "vigil",
		Subsystem: "blacklist",
		Name:      "lifted_total",
		Help:      "Total number of blacklist verdicts lifted.",
	},
)

var ScansTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "vigil",
		Subsystem: "scan",
		Name:      "requests_total",
		Help:      "Total number of content scan requests.",
	},
)

var ScanPositionsFoundTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "vigil",
		Subsystem: "scan",
		Name:      "positions_found_total",
		Help:      "Total number of named-entity positions found, by type.",
	},
	[]string{"type"},
)

var CacheHitsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "vigil",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total number of cache hits, by prefix.",
	},
	[]string{"prefix"},
)

var CacheMissesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "vigil",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total number of cache misses, by prefix.",
	},
	[]string{"prefix"},
)

var CacheErrorsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "vigil",
		Subsystem: "cache",
		Name:      "errors_total",
		Help:      "Total number of cache transport errors, by prefix.",
	},
	[]string{"prefix"},
)

var AuditLogAppendedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "vigil",
		Subsystem: "audit_log",
		Name:      "appended_total",
		Help:      "Total number of audit log entries appended, by type.",
	},
	[]string{"type"},
)

var RequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "vigil",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request handling duration in seconds.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	},
	[]string{"route", "method"},
)

// All returns every vigil-specific metric for registration.
func All() []prometheus.Collector {
	return []prometheus.Collector{
		EntitiesRegisteredTotal,
		EntitiesDeletedTotal,
		BlacklistCreatedTotal,
		BlacklistLiftedTotal,
		ScansTotal,
		ScanPositionsFoundTotal,
		CacheHitsTotal,
		CacheMissesTotal,
		CacheErrorsTotal,
		AuditLogAppendedTotal,
		RequestDuration,
	}
}
