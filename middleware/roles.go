package middleware

import (
	"net/http"

	goCourt "github.com/MrEthical07/goCourt"
)

// RequireRoles is Guard with the set built from roles.
func RequireRoles(m *goCourt.Manager, roles ...goCourt.Role) func(http.Handler) http.Handler {
	return Guard(m, goCourt.NewRoleSet(roles...))
}

// RequireAuthenticated admits any signed-in user with a known role.
func RequireAuthenticated(m *goCourt.Manager) func(http.Handler) http.Handler {
	return Guard(m, goCourt.NewRoleSet(goCourt.AllRoles()...))
}
