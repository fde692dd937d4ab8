package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_IsolatedRegistry(t *testing.T) {
	// Two instances on separate registries must not collide
	m1 := NewPrometheusMetrics(prometheus.NewRegistry())
	m2 := NewPrometheusMetrics(prometheus.NewRegistry())

	m1.RecordOperation("Refund", "success", 0.01)
	m1.RecordOperation("Refund", "success", 0.01)
	m2.RecordOperation("Refund", "error", 0.01)

	assert.Equal(t, 2.0, testutil.ToFloat64(m1.LedgerOperations.WithLabelValues("Refund", "success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m2.LedgerOperations.WithLabelValues("Refund", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m2.LedgerOperations.WithLabelValues("Refund", "error")))
}

func TestMetrics_Amounts(t *testing.T) {
	m := NewPrometheusMetrics(prometheus.NewRegistry())

	m.RecordContribution("native", 100)
	m.RecordContribution("native", 50)
	m.RecordRefund("native", 150)

	assert.Equal(t, 150.0, testutil.ToFloat64(m.AmountContributed.WithLabelValues("native")))
	assert.Equal(t, 150.0, testutil.ToFloat64(m.AmountRefunded.WithLabelValues("native")))
}

func TestMetrics_HealthAndCache(t *testing.T) {
	m := NewPrometheusMetrics(prometheus.NewRegistry())

	m.SetHealthCheckStatus("database", true)
	m.SetHealthCheckStatus("redis", false)
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordCacheLookup(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HealthCheckStatus.WithLabelValues("database")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.HealthCheckStatus.WithLabelValues("redis")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
}
