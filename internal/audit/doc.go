// Package audit implements async dispatching of session lifecycle events.
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON writer, no-op).
//   - [Dispatcher]: buffered async relay with drop-if-full or block-if-full semantics.
//   - [Event]: structured record with ID, timestamp, type, email, role and metadata.
//
// # Architecture boundaries
//
// This package owns event buffering and sink delivery. It does NOT decide which
// events to emit; the session manager does.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on business logic.
//   - Import goCourt or any sibling internal package.
//   - Perform network I/O beyond what a caller-supplied Sink does.
package audit
