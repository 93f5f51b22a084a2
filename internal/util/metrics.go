package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_recorded_total",
		Help: "Total number of orders recorded from capture submissions",
	})

	CaptureReplaysTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "capture_replays_total",
		Help: "Total number of duplicate capture submissions resolved idempotently",
	})

	OrdersRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_rejected_total",
		Help: "Total number of capture submissions rejected",
	}, []string{"reason"})

	StatusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "status_transitions_total",
		Help: "Total number of applied payment status transitions",
	}, []string{"to"})

	InvalidTransitionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "invalid_transitions_total",
		Help: "Total number of rejected payment status transitions",
	})

	StatsCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stats_cache_hits_total",
		Help: "Total number of stats reads served from cache",
	})

	StatsCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stats_cache_misses_total",
		Help: "Total number of stats reads computed from the ledger",
	})

	RecordCaptureLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "record_capture_latency_seconds",
		Help:    "Latency of recording a capture submission",
		Buckets: prometheus.DefBuckets,
	})

	AuditEntriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audit_entries_total",
		Help: "Total number of audit trail entries written",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
