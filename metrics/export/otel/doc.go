// Package otel registers courtdesk session metrics as OpenTelemetry
// observable instruments on a caller-supplied meter.
package otel
