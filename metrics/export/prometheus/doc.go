// Package prometheus renders courtdesk session metrics in Prometheus text
// exposition format.
//
// [NewPrometheusExporter] reads a [goCourt.Manager] and exposes an
// [http.Handler] for the portal's /metrics route. Counters are named
// courtdesk_*_total; the single histogram is courtdesk_backend_latency_seconds.
// A courtdesk_session_authenticated gauge reports whether a user is signed in.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry.
//   - Mutate session state.
package prometheus
