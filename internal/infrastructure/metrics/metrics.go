package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/satelink/econledger/internal/domain"
)

const namespace = "econledger"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	TxnsCommitted prometheus.Counter
	TxnLines      prometheus.Histogram
	TxnDuration   prometheus.Histogram
	TxnsRejected  *prometheus.CounterVec
	TxnsFailed    prometheus.Counter

	// Alert metrics
	AlertsEmitted        *prometheus.CounterVec
	AlertPersistFailures *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Authentication and rate limiting
	AuthFailures  *prometheus.CounterVec
	RateLimitHits prometheus.Counter
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TxnsCommitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "txns_committed_total",
			Help:      "Total number of ledger transactions committed",
		}),
		TxnLines: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "txn_lines",
			Help:      "Number of lines per committed transaction",
			Buckets:   []float64{2, 3, 4, 6, 8, 12, 16, 32},
		}),
		TxnDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "txn_duration_seconds",
			Help:      "Duration of the atomic unit of committed transactions",
			Buckets:   prometheus.DefBuckets,
		}),
		TxnsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "txns_rejected_total",
				Help:      "Transactions rejected by validation, by rule",
			},
			[]string{"rule"},
		),
		TxnsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "txns_failed_total",
			Help:      "Transactions rolled back by a storage error",
		}),

		AlertsEmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alerts_emitted_total",
				Help:      "Security alerts emitted, by category",
			},
			[]string{"category"},
		),
		AlertPersistFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alert_persist_failures_total",
				Help:      "Security alerts that could not be stored, by category",
			},
			[]string{"category"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),

		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_failures_total",
				Help:      "Total authentication failures",
			},
			[]string{"reason"},
		),
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Requests rejected by the rate limiter",
		}),
	}
}

// TxnCommitted implements usecase.LedgerMetrics.
func (m *Metrics) TxnCommitted(lines int, duration time.Duration) {
	m.TxnsCommitted.Inc()
	m.TxnLines.Observe(float64(lines))
	m.TxnDuration.Observe(duration.Seconds())
}

// TxnRejected implements usecase.LedgerMetrics.
func (m *Metrics) TxnRejected(rule string) {
	m.TxnsRejected.WithLabelValues(rule).Inc()
}

// TxnFailed implements usecase.LedgerMetrics.
func (m *Metrics) TxnFailed() {
	m.TxnsFailed.Inc()
}

// AlertEmitted implements usecase.AlertMetrics.
func (m *Metrics) AlertEmitted(category domain.AlertCategory) {
	m.AlertsEmitted.WithLabelValues(string(category)).Inc()
}

// AlertPersistFailed implements usecase.AlertMetrics.
func (m *Metrics) AlertPersistFailed(category domain.AlertCategory) {
	m.AlertPersistFailures.WithLabelValues(string(category)).Inc()
}

// ObserveHTTP records a finished request.
func (m *Metrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// AuthFailed counts a rejected credential by reason.
func (m *Metrics) AuthFailed(reason string) {
	m.AuthFailures.WithLabelValues(reason).Inc()
}

// RateLimited counts a request rejected by the rate limiter.
func (m *Metrics) RateLimited() {
	m.RateLimitHits.Inc()
}

// PoolStats reports connection pool occupancy.
type PoolStats func() (total, idle, acquired int32)

// RegisterPoolStats exposes database pool gauges read from stats on scrape.
func RegisterPoolStats(reg prometheus.Registerer, stats PoolStats) {
	factory := promauto.With(reg)

	gauge := func(name, help string, pick func(total, idle, acquired int32) int32) {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      name,
			Help:      help,
		}, func() float64 {
			return float64(pick(stats()))
		})
	}

	gauge("connections_total", "Connections currently open", func(t, _, _ int32) int32 { return t })
	gauge("connections_idle", "Idle connections", func(_, i, _ int32) int32 { return i })
	gauge("connections_acquired", "Connections in use", func(_, _, a int32) int32 { return a })
}
