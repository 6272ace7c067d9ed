// Package internal holds code private to goCourt.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher and Sink implementations)
//   - metrics: lock-free counters and the backend latency histogram
//   - testbackend: an in-process court REST backend for tests
package internal
