package middleware

import (
	"net/http"

	goCourt "github.com/MrEthical07/goCourt"
)

// Decision is the outcome of checking a session against a set of roles.
type Decision uint8

const (
	// Allow serves the guarded handler.
	Allow Decision = iota
	// RedirectLogin sends a visitor without a session to the login page.
	RedirectLogin
	// RedirectRoot sends a user whose role is not admitted to the root page.
	RedirectRoot
	// Wait means the persisted session is still being restored.
	Wait
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectRoot:
		return "redirect_root"
	case Wait:
		return "wait"
	default:
		return "unknown"
	}
}

// Decide is the guard's pure decision. Only the first role of the user is
// consulted. An empty allowed set admits nobody.
func Decide(s goCourt.Session, allowed goCourt.RoleSet) Decision {
	if s.Loading {
		return Wait
	}
	if !s.Authenticated() {
		return RedirectLogin
	}
	if allowed.Has(s.User.PrimaryRole()) {
		return Allow
	}
	return RedirectRoot
}

// Guard admits requests whose session user holds one of the allowed roles.
// It reads the manager's local session on every request and never calls the
// backend. Admitted requests carry the session snapshot in their context.
func Guard(m *goCourt.Manager, allowed goCourt.RoleSet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			routes := m.Config().Routes
			metrics := m.Metrics()
			s := m.Session()

			switch Decide(s, allowed) {
			case Wait:
				metrics.Inc(goCourt.MetricGuardLoading)
				w.Header().Set("Retry-After", "1")
				http.Error(w, "session is loading", http.StatusServiceUnavailable)
			case RedirectLogin:
				metrics.Inc(goCourt.MetricGuardRedirectLogin)
				http.Redirect(w, r, routes.LoginPath, http.StatusFound)
			case RedirectRoot:
				metrics.Inc(goCourt.MetricGuardRedirectRoot)
				http.Redirect(w, r, routes.RootPath, http.StatusFound)
			default:
				metrics.Inc(goCourt.MetricGuardAllow)
				next.ServeHTTP(w, r.WithContext(goCourt.WithSession(r.Context(), s)))
			}
		})
	}
}
