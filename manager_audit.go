package goCourt

import (
	"context"
	"errors"
	"net/http"

	"github.com/MrEthical07/goCourt/client"
	"github.com/MrEthical07/goCourt/store"
)

const (
	auditEventLoginSuccess    = "login_success"
	auditEventLoginFailure    = "login_failure"
	auditEventLogout          = "logout"
	auditEventSessionExpired  = "session_expired"
	auditEventSessionRestored = "session_restored"
)

// AuditErrorCode is the stable, token-free reason recorded on failed events.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrRejected           AuditErrorCode = "rejected"
	auditErrServer             AuditErrorCode = "server_error"
	auditErrTransport          AuditErrorCode = "transport_error"
	auditErrMissingToken       AuditErrorCode = "missing_access_token"
	auditErrMissingRole        AuditErrorCode = "missing_role"
	auditErrUnknownRole        AuditErrorCode = "unknown_role"
	auditErrSuperseded         AuditErrorCode = "superseded"
	auditErrCanceled           AuditErrorCode = "canceled"
	auditErrStoreUnavailable   AuditErrorCode = "store_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (m *Manager) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	user *User,
	email string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if m == nil || m.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		EventType: eventType,
		Email:     email,
		Success:   success,
		Metadata:  metadata,
	}
	if user != nil {
		event.Email = user.Email
		event.Role = string(user.PrimaryRole())
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	m.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized:
			return auditErrInvalidCredentials
		case apiErr.StatusCode >= 500:
			return auditErrServer
		default:
			return auditErrRejected
		}
	case errors.Is(err, ErrMissingAccessToken):
		return auditErrMissingToken
	case errors.Is(err, ErrMissingRole):
		return auditErrMissingRole
	case errors.Is(err, ErrUnknownRole):
		return auditErrUnknownRole
	case errors.Is(err, ErrLoginSuperseded):
		return auditErrSuperseded
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return auditErrCanceled
	case errors.Is(err, store.ErrUnavailable):
		return auditErrStoreUnavailable
	case errors.Is(err, client.ErrTransport):
		return auditErrTransport
	default:
		return auditErrInternal
	}
}
