package goCourt

import "context"

type sessionContextKey struct{}

// WithSession attaches a session snapshot to ctx. The route guard does this
// for every request it lets through.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// SessionFromContext returns the snapshot stored by [WithSession].
func SessionFromContext(ctx context.Context) (Session, bool) {
	if ctx == nil {
		return Session{}, false
	}
	s, ok := ctx.Value(sessionContextKey{}).(Session)
	return s, ok
}

// UserFromContext returns the user of the attached session, or nil.
func UserFromContext(ctx context.Context) *User {
	s, ok := SessionFromContext(ctx)
	if !ok {
		return nil
	}
	return s.User
}
