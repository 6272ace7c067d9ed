package goCourt

import internalmetrics "github.com/MrEthical07/goCourt/internal/metrics"

// MetricID identifies a counter (and, for latency metrics, a histogram) in
// the in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricLoginSuccess counts logins that produced a session.
	MetricLoginSuccess = MetricID(internalmetrics.MetricLoginSuccess)
	// MetricLoginFailure counts logins rejected by the backend or by the response contract.
	MetricLoginFailure = MetricID(internalmetrics.MetricLoginFailure)
	// MetricLoginSuperseded counts logins discarded because a newer session change won.
	MetricLoginSuperseded = MetricID(internalmetrics.MetricLoginSuperseded)
	MetricLogout          = MetricID(internalmetrics.MetricLogout)
	// MetricExpiryLogout counts logouts forced by token expiry.
	MetricExpiryLogout = MetricID(internalmetrics.MetricExpiryLogout)
	// MetricExpiryDecodeFailure counts tokens whose exp claim could not be read.
	MetricExpiryDecodeFailure = MetricID(internalmetrics.MetricExpiryDecodeFailure)
	MetricRestoreHit          = MetricID(internalmetrics.MetricRestoreHit)
	MetricRestoreMiss         = MetricID(internalmetrics.MetricRestoreMiss)
	// MetricStoreFailure counts token store errors other than "not found".
	MetricStoreFailure       = MetricID(internalmetrics.MetricStoreFailure)
	MetricGuardAllow         = MetricID(internalmetrics.MetricGuardAllow)
	MetricGuardRedirectLogin = MetricID(internalmetrics.MetricGuardRedirectLogin)
	MetricGuardRedirectRoot  = MetricID(internalmetrics.MetricGuardRedirectRoot)
	MetricGuardLoading       = MetricID(internalmetrics.MetricGuardLoading)
	// MetricBackendError counts backend round trips that failed or returned non-2xx.
	MetricBackendError = MetricID(internalmetrics.MetricBackendError)
	// MetricBackendLatency is the backend round-trip latency histogram.
	MetricBackendLatency = MetricID(internalmetrics.MetricBackendLatency)

	metricIDCount = internalmetrics.MetricIDCount
)

// Metrics holds atomic counters and optional latency histograms.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a [Metrics] configured by cfg. When cfg.Enabled is
// false every operation is a no-op.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
