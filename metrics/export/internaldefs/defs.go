package internaldefs

import (
	goCourt "github.com/MrEthical07/goCourt"
)

// CounterDef names one exported counter.
type CounterDef struct {
	ID   goCourt.MetricID
	Name string
	Help string
}

// HistogramDef names one exported latency histogram.
type HistogramDef struct {
	ID   goCourt.MetricID
	Name string
	Help string
}

// CounterDefs lists every counter in export order.
var CounterDefs = []CounterDef{
	{ID: goCourt.MetricLoginSuccess, Name: "courtdesk_login_success_total", Help: "Logins that produced a session."},
	{ID: goCourt.MetricLoginFailure, Name: "courtdesk_login_failure_total", Help: "Logins rejected by the backend or the response contract."},
	{ID: goCourt.MetricLoginSuperseded, Name: "courtdesk_login_superseded_total", Help: "Logins discarded because a newer session change won."},
	{ID: goCourt.MetricLogout, Name: "courtdesk_logout_total", Help: "Explicit logouts of a signed-in user."},
	{ID: goCourt.MetricExpiryLogout, Name: "courtdesk_expiry_logout_total", Help: "Logouts forced by token expiry."},
	{ID: goCourt.MetricExpiryDecodeFailure, Name: "courtdesk_expiry_decode_failure_total", Help: "Tokens whose exp claim could not be read."},
	{ID: goCourt.MetricRestoreHit, Name: "courtdesk_restore_hit_total", Help: "Startups that restored a persisted session."},
	{ID: goCourt.MetricRestoreMiss, Name: "courtdesk_restore_miss_total", Help: "Startups that found no usable persisted session."},
	{ID: goCourt.MetricStoreFailure, Name: "courtdesk_store_failure_total", Help: "Token store errors other than not found."},
	{ID: goCourt.MetricGuardAllow, Name: "courtdesk_guard_allow_total", Help: "Guarded requests admitted."},
	{ID: goCourt.MetricGuardRedirectLogin, Name: "courtdesk_guard_redirect_login_total", Help: "Guarded requests redirected to login."},
	{ID: goCourt.MetricGuardRedirectRoot, Name: "courtdesk_guard_redirect_root_total", Help: "Guarded requests redirected to root for a role mismatch."},
	{ID: goCourt.MetricGuardLoading, Name: "courtdesk_guard_loading_total", Help: "Guarded requests answered while the session was restoring."},
	{ID: goCourt.MetricBackendError, Name: "courtdesk_backend_error_total", Help: "Backend round trips that failed or returned an error status."},
}

// HistogramDefs lists every latency histogram in export order.
var HistogramDefs = []HistogramDef{
	{ID: goCourt.MetricBackendLatency, Name: "courtdesk_backend_latency_seconds", Help: "Backend round-trip latency."},
}

// HistogramBounds are the upper bounds of the in-process buckets, in seconds.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is HistogramBounds spelled for instrument names.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates raw to the fixed bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
