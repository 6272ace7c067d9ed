// Package internaldefs holds the metric names shared by the courtdesk
// exporters, so the Prometheus and OTel outputs agree on names and bucket
// boundaries.
//
// # What this package must NOT do
//
//   - Import an exporter package.
//   - Perform I/O.
package internaldefs
