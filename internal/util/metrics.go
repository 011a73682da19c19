package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersSubmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_submitted_total",
		Help: "Total number of order transactions committed",
	}, []string{"kind"})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed order submissions",
	}, []string{"kind", "reason"})

	OrderRowsWrittenTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_rows_written_total",
		Help: "Total number of detail and master rows appended",
	}, []string{"kind"})

	ConsistencyFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_consistency_failures_total",
		Help: "Order transactions left partially written in the store",
	}, []string{"kind"})

	OrderSubmitLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_submit_latency_seconds",
		Help:    "Latency of full order transactions",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	ReceiptsRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "receipts_recorded_total",
		Help: "Total number of receipt ledger entries written",
	})

	PaymentsRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payments_recorded_total",
		Help: "Total number of payment ledger entries written",
	})

	LedgerEntriesRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_entries_rejected_total",
		Help: "Receipts/payments rejected before any store write",
	}, []string{"reason"})

	CacheRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reference_cache_refresh_total",
		Help: "Reference cache refreshes by outcome",
	}, []string{"outcome"})

	CacheInvalidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reference_cache_invalidations_total",
		Help: "Reference cache invalidations by kind",
	}, []string{"kind"})

	StoreRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tabular_store_request_duration_seconds",
		Help:    "Latency of tabular store API calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	DashboardBuildLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dashboard_build_latency_seconds",
		Help:    "Latency of dashboard fetch and aggregation",
		Buckets: prometheus.DefBuckets,
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
