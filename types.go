package goCourt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	internalaudit "github.com/MrEthical07/goCourt/internal/audit"
)

// Role is one of the four court portal roles. Values are upper case, as the
// backend issues them.
type Role string

const (
	// RoleCivilian files cases and pays fees.
	RoleCivilian Role = "CIVILIAN"
	// RoleProsecutor submits evidence.
	RoleProsecutor Role = "PROSECUTOR"
	// RoleJudge presides over hearings and reviews evidence.
	RoleJudge Role = "JUDGE"
	// RoleRegistrar schedules hearings and manages the registry.
	RoleRegistrar Role = "REGISTRAR"
)

var knownRoles = [...]Role{RoleCivilian, RoleProsecutor, RoleJudge, RoleRegistrar}

// AllRoles returns the known roles in a stable order.
func AllRoles() []Role {
	out := make([]Role, len(knownRoles))
	copy(out, knownRoles[:])
	return out
}

// ParseRole normalizes s (trimmed, upper-cased) and returns the matching
// Role. Unrecognized values wrap [ErrUnknownRole].
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := r.bit()
	return ok
}

func (r Role) bit() (uint8, bool) {
	for i, known := range knownRoles {
		if r == known {
			return uint8(i), true
		}
	}
	return 0, false
}

// HomePath is where a user holding r lands after login. Unknown roles land
// on "/".
func (r Role) HomePath() string {
	switch r {
	case RoleCivilian:
		return "/civilian"
	case RoleProsecutor:
		return "/prosecutor"
	case RoleJudge:
		return "/judge"
	case RoleRegistrar:
		return "/registrar"
	default:
		return "/"
	}
}

func (r Role) String() string { return string(r) }

// RoleSet is a bitmask over the known roles. The zero value is empty.
type RoleSet uint8

// NewRoleSet returns a set containing roles. Unknown roles are ignored.
func NewRoleSet(roles ...Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		s = s.Add(r)
	}
	return s
}

// Add returns s with r included.
func (s RoleSet) Add(r Role) RoleSet {
	if bit, ok := r.bit(); ok {
		return s | 1<<bit
	}
	return s
}

// Has reports whether r is in s.
func (s RoleSet) Has(r Role) bool {
	bit, ok := r.bit()
	return ok && s&(1<<bit) != 0
}

func (s RoleSet) Empty() bool { return s == 0 }

// Roles lists the members of s in [AllRoles] order.
func (s RoleSet) Roles() []Role {
	var out []Role
	for _, r := range knownRoles {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s RoleSet) String() string {
	roles := s.Roles()
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, "|")
}

// User is the authenticated principal as held in the session and persisted
// in the token store.
type User struct {
	ID    json.Number `json:"id,omitempty"`
	Email string      `json:"email"`
	Role  Role        `json:"role"`
	Roles []Role      `json:"roles"`
}

// PrimaryRole is the role the route guard checks: Roles[0], or "" when the
// user carries no roles.
func (u *User) PrimaryRole() Role {
	if u == nil || len(u.Roles) == 0 {
		return ""
	}
	return u.Roles[0]
}

func (u *User) clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.Roles = append([]Role(nil), u.Roles...)
	return &out
}

// State is the session manager's lifecycle state.
type State uint8

const (
	StateUnauthenticated State = iota
	StateRestoring
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateRestoring:
		return "restoring"
	case StateAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Session is a point-in-time copy of the manager's state. Token and User are
// either both set or both empty.
type Session struct {
	Token   string
	User    *User
	Loading bool
	State   State
}

// Authenticated reports whether s holds a user and token.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// AuditEvent is a structured record of one session lifecycle change.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the manager's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes one JSON-encoded [AuditEvent] per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
