// Package goCourt is the session core of the court case-management portals
// used by civilians, prosecutors, judges and registrars.
//
// A [Manager] owns one signed-in session at a time. It logs in against the
// court REST backend, persists the session through a [store.Store], attaches
// the bearer token to every request made through its [client.Client], and
// logs out by itself when the token's exp claim passes.
//
// # Lifecycle
//
// Build a manager with [New], call [Manager.Restore] once at start-up, then
// use [Manager.Login] and [Manager.Logout]. Until Restore finishes the
// manager reports Loading; route guards answer with 503 rather than guessing.
//
// # Concurrency
//
// Manager methods are safe to call from multiple goroutines. Session changes
// are serialized and the most recently started Login or Logout wins; a Login
// overtaken by another change returns [ErrLoginSuperseded] and writes
// nothing. A Login that fails changes nothing either.
//
// # What this package must NOT do
//
//   - Validate token signatures. The backend is the only verifier.
//   - Retry backend calls or rewrite backend errors beyond resolving a display message.
//   - Log tokens or passwords, or put them in audit events.
package goCourt
