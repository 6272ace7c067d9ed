package goCourt

import (
	"errors"

	"github.com/MrEthical07/goCourt/client"
)

var (
	// ErrMissingAccessToken is returned when a login response carries no access_token.
	ErrMissingAccessToken = errors.New("no access token received")
	// ErrMissingRole is returned when a login response names no role anywhere.
	ErrMissingRole = errors.New("no role received")
	// ErrUnknownRole wraps a role string outside the four court roles.
	ErrUnknownRole = errors.New("unknown role")
	// ErrLoginSuperseded is returned when a logout, expiry or later login
	// changed the session while this login was in flight.
	ErrLoginSuperseded = errors.New("login superseded by a newer session change")
	// ErrManagerClosed is returned by operations on a closed manager.
	ErrManagerClosed = errors.New("session manager closed")
	// ErrNotAuthenticated is returned by helpers that need a current session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrBuilderUsed is returned by a second call to Build.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrAuditSinkRequired is returned by Build when auditing is enabled but
	// no sink was given.
	ErrAuditSinkRequired = errors.New("audit enabled without a sink")
)

// FallbackLoginMessage is shown when a failure carries no server explanation.
const FallbackLoginMessage = "Invalid credentials or server error"

// LoginError is returned by [Manager.Login]. Message is suitable for direct
// display on a login form; Err keeps the cause for errors.Is/As.
type LoginError struct {
	Message string
	Err     error
}

func (e *LoginError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *LoginError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newLoginError(err error) *LoginError {
	return &LoginError{Message: loginMessage(err), Err: err}
}

// loginMessage picks the server's detail, then its message, then the
// fallback. Response contract violations speak for themselves.
func loginMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if detail := apiErr.DetailText(); detail != "" {
			return detail
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return FallbackLoginMessage
	}

	switch {
	case errors.Is(err, ErrMissingAccessToken),
		errors.Is(err, ErrMissingRole),
		errors.Is(err, ErrUnknownRole),
		errors.Is(err, ErrLoginSuperseded),
		errors.Is(err, ErrManagerClosed):
		return err.Error()
	}
	return FallbackLoginMessage
}
