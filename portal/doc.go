// Package portal serves the court portal over HTTP on top of a
// goCourt.Manager.
//
// The portal is a single-user process: it holds one session, the one the
// manager restored or logged in. Routes:
//
//	POST /login       form email, password; 303 to the role's home
//	GET  /login       login entry point, shows the last expiry notice
//	POST /logout      303 to /login
//	GET  /session     JSON snapshot of the session (never the token)
//	GET  /            root, where role mismatches land
//	GET  /civilian/   guarded role dashboards, one per role
//	GET  /prosecutor/
//	GET  /judge/
//	GET  /registrar/
//	GET  /metrics     Prometheus exposition
//	GET  /health      liveness
//
// Each dashboard is assembled from several backend listings fetched
// concurrently. Concurrent requests for the same dashboard share one fetch.
package portal
