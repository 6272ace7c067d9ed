// Package store persists the authenticated session record (serialized user
// profile plus raw bearer token) so that it survives process restarts.
//
// # Record contract
//
// A record is two values under two fixed keys. They are written together by
// [Store.Save], removed together by [Store.Clear], and [Store.Load] only reports
// a record when both are present and the profile parses as a JSON object. Any
// partial or corrupt record is reported as [ErrNotFound].
//
// # Backends
//
//   - [MemoryStore]: process-local, for tests and ephemeral sessions.
//   - [FileStore]: a 0600 JSON key-value file, the default for the CLI.
//   - [RedisStore]: shared durable store keyed under a prefix.
//   - [SQLiteStore]: a single-table key-value database.
//
// # What this package must NOT do
//
//   - Interpret or validate token contents.
//   - Import goCourt (no upward imports).
package store
