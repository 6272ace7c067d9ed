// Package middleware exposes the role-based route guard as net/http
// middleware for the courtdesk portal.
//
// # Guards
//
//   - [Guard] decides from an explicit [goCourt.RoleSet].
//   - [RequireRoles] builds the set from a list of roles.
//   - [RequireAuthenticated] admits any signed-in user.
//
// Each guard snapshots goCourt.Manager.Session, runs [Decide], and either
// serves the wrapped handler with the snapshot in the request context or
// redirects: to Routes.LoginPath without a user, to Routes.RootPath when the
// user's first role is not admitted. While the manager is still restoring
// the persisted session the guard answers 503 with Retry-After.
//
// # What this package must NOT do
//
//   - Validate tokens against the backend (the local session is trusted).
//   - Cache decisions between requests.
//   - Mutate the session.
package middleware
