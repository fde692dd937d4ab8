package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all the Prometheus metrics for our service
type Metrics struct {
	// Request counters
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Ledger metrics
	LedgerOperations        *prometheus.CounterVec
	LedgerOperationDuration *prometheus.HistogramVec
	AmountContributed       *prometheus.CounterVec
	AmountRefunded          *prometheus.CounterVec
	AssetTransfers          *prometheus.CounterVec

	// Storage metrics
	DatabaseQueries *prometheus.CounterVec
	DatabaseErrors  *prometheus.CounterVec
	CacheLookups    *prometheus.CounterVec

	// Health check metrics
	HealthCheckStatus *prometheus.GaugeVec
}

// NewPrometheusMetrics creates all Prometheus metrics and registers them with reg.
// A nil reg registers with the default registry.
func NewPrometheusMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	metrics := &Metrics{
		// HTTP request metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundledger_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fundledger_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fundledger_http_requests_in_flight",
				Help: "Current number of HTTP requests being processed",
			},
			[]string{"method", "endpoint"},
		),

		// Ledger metrics
		LedgerOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundledger_operations_total",
				Help: "Total number of ledger operations by outcome",
			},
			[]string{"method", "outcome"},
		),

		LedgerOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fundledger_operation_duration_seconds",
				Help:    "Ledger operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),

		AmountContributed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundledger_contributed_amount_total",
				Help: "Sum of contributed base units by asset",
			},
			[]string{"asset"},
		),

		AmountRefunded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundledger_refunded_amount_total",
				Help: "Sum of refunded base units by asset",
			},
			[]string{"asset"},
		),

		AssetTransfers: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundledger_asset_transfers_total",
				Help: "Total number of custody transfers",
			},
			[]string{"direction", "kind", "outcome"},
		),

		DatabaseQueries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundledger_database_queries_total",
				Help: "Total number of database queries",
			},
			[]string{"operation", "table"},
		),

		DatabaseErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundledger_database_errors_total",
				Help: "Total number of database errors",
			},
			[]string{"operation", "error_type"},
		),

		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundledger_cache_lookups_total",
				Help: "Campaign cache lookups by result",
			},
			[]string{"result"},
		),

		// Health check metrics
		HealthCheckStatus: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fundledger_health_check_status",
				Help: "Health check status (1 = healthy, 0 = unhealthy)",
			},
			[]string{"check_type"},
		),
	}

	return metrics
}

// RecordHTTPRequest records an HTTP request with its duration and status
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordOperation records a ledger operation and how long it took
func (m *Metrics) RecordOperation(method, outcome string, duration float64) {
	m.LedgerOperations.WithLabelValues(method, outcome).Inc()
	m.LedgerOperationDuration.WithLabelValues(method).Observe(duration)
}

// RecordContribution adds a contributed amount for asset
func (m *Metrics) RecordContribution(asset string, amount float64) {
	m.AmountContributed.WithLabelValues(asset).Add(amount)
}

// RecordRefund adds a refunded amount for asset
func (m *Metrics) RecordRefund(asset string, amount float64) {
	m.AmountRefunded.WithLabelValues(asset).Add(amount)
}

// RecordTransfer records a custody transfer. direction is pull or push, kind native or token.
func (m *Metrics) RecordTransfer(direction, kind, outcome string) {
	m.AssetTransfers.WithLabelValues(direction, kind, outcome).Inc()
}

// RecordDatabaseQuery records a database query
func (m *Metrics) RecordDatabaseQuery(operation, table string) {
	m.DatabaseQueries.WithLabelValues(operation, table).Inc()
}

// RecordDatabaseError records a database error
func (m *Metrics) RecordDatabaseError(operation, errorType string) {
	m.DatabaseErrors.WithLabelValues(operation, errorType).Inc()
}

// RecordCacheLookup records a campaign cache hit or miss
func (m *Metrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// SetHealthCheckStatus sets the health check status
func (m *Metrics) SetHealthCheckStatus(checkType string, healthy bool) {
	status := 0.0
	if healthy {
		status = 1.0
	}
	m.HealthCheckStatus.WithLabelValues(checkType).Set(status)
}

// IncRequestsInFlight increments the in-flight requests counter
func (m *Metrics) IncRequestsInFlight(method, endpoint string) {
	m.HTTPRequestsInFlight.WithLabelValues(method, endpoint).Inc()
}

// DecRequestsInFlight decrements the in-flight requests counter
func (m *Metrics) DecRequestsInFlight(method, endpoint string) {
	m.HTTPRequestsInFlight.WithLabelValues(method, endpoint).Dec()
}
