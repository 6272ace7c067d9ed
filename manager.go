package goCourt

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/goCourt/client"
	internalaudit "github.com/MrEthical07/goCourt/internal/audit"
	"github.com/MrEthical07/goCourt/store"
)

// expiryLogoutTimeout bounds the store Clear run from the expiry timer,
// which has no caller context.
const expiryLogoutTimeout = 5 * time.Second

// Manager owns the session: who is logged in, with which token, whether the
// persisted session is still being restored, and when the token expires.
//
// All session mutations are serialized by one mutex. Login and Logout may be
// called concurrently; the most recently started operation wins.
type Manager struct {
	config    Config
	client    *client.Client
	store     store.Store
	ownsStore bool
	logger    *slog.Logger
	notifier  Notifier
	clock     Clock
	audit     *internalaudit.Dispatcher
	metrics   *Metrics

	restoreOnce sync.Once
	ready       chan struct{}

	mu       sync.Mutex
	state    State
	token    string
	user     *User
	timer    Timer
	timerSeq uint64
	closed   bool

	// commits advances on every session change that took effect: a
	// successful login, logout, expiry and Close. Failed logins leave it
	// alone.
	commits uint64
	// loginSeq numbers Login calls in start order; pending holds the ones
	// still waiting on the backend.
	loginSeq uint64
	pending  map[uint64]struct{}
}

// Restore loads the persisted session once per Manager. Later calls return
// nil immediately. Ready is closed when the first call finishes, whatever
// its outcome.
//
// A missing or unreadable record leaves the manager unauthenticated and is
// not an error. A store that cannot be reached is reported, and the manager
// is still left unauthenticated.
func (m *Manager) Restore(ctx context.Context) error {
	var err error
	m.restoreOnce.Do(func() {
		err = m.restore(ctx)
	})
	return err
}

func (m *Manager) restore(ctx context.Context) error {
	defer close(m.ready)

	m.mu.Lock()
	if m.closed {
		m.state = StateUnauthenticated
		m.mu.Unlock()
		return ErrManagerClosed
	}
	commits := m.commits
	m.mu.Unlock()

	user, token, loadErr := m.loadRecord(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	// A login or logout landed while the store was being read.
	if m.commits != commits || m.closed {
		if m.state == StateRestoring {
			m.state = StateUnauthenticated
		}
		return nil
	}

	if user == nil {
		m.state = StateUnauthenticated
		m.metricInc(MetricRestoreMiss)
		return loadErr
	}

	m.setSessionLocked(user, token)
	m.metricInc(MetricRestoreHit)
	m.emitAudit(ctx, auditEventSessionRestored, true, user, "", nil, nil)
	m.logger.Debug("session restored", "email", user.Email, "role", user.PrimaryRole())
	m.armExpiryLocked(ctx, token)
	return nil
}

func (m *Manager) loadRecord(ctx context.Context) (*User, string, error) {
	rec, err := m.store.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", nil
	}
	if err != nil {
		m.metricInc(MetricStoreFailure)
		m.logger.Warn("session restore failed", "error", err)
		return nil, "", err
	}

	var user User
	if err := rec.DecodeProfile(&user); err != nil {
		m.logger.Warn("stored user profile unreadable, starting signed out", "error", err)
		return nil, "", nil
	}
	normalizeStoredUser(&user)
	return &user, rec.Token, nil
}

// normalizeStoredUser fills Role from Roles and vice versa so that profiles
// written by older front ends still satisfy the guard.
func normalizeStoredUser(u *User) {
	if len(u.Roles) == 0 && u.Role != "" {
		u.Roles = []Role{u.Role}
	}
	if u.Role == "" && len(u.Roles) > 0 {
		u.Role = u.Roles[0]
	}
}

// Ready is closed once the first Restore call has finished.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// Loading reports whether initial restoration has not finished yet.
func (m *Manager) Loading() bool {
	select {
	case <-m.ready:
		return false
	default:
		return true
	}
}

// Login exchanges credentials for a bearer token, then persists and adopts
// the resulting session. On any failure the current session is left exactly
// as it was and the error is a *LoginError.
//
// A token that is already expired is adopted and immediately logged out
// again, so Login can succeed while leaving the manager unauthenticated.
func (m *Manager) Login(ctx context.Context, email, password string) (*User, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, newLoginError(ErrManagerClosed)
	}
	m.loginSeq++
	seq := m.loginSeq
	commits := m.commits
	if m.pending == nil {
		m.pending = make(map[uint64]struct{})
	}
	m.pending[seq] = struct{}{}
	m.mu.Unlock()

	resp, err := m.client.Auth.Login(ctx, email, password)
	var user *User
	if err == nil {
		user, err = userFromTokenResponse(resp, email)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, seq)

	if err != nil {
		return nil, m.loginFailed(ctx, email, err)
	}
	if m.closed {
		return nil, newLoginError(ErrManagerClosed)
	}
	if m.commits != commits || m.laterLoginPendingLocked(seq) {
		m.metricInc(MetricLoginSuperseded)
		m.emitAudit(ctx, auditEventLoginFailure, false, nil, email, ErrLoginSuperseded, nil)
		return nil, newLoginError(ErrLoginSuperseded)
	}

	if err := m.store.Save(ctx, user, resp.AccessToken); err != nil {
		// The in-process session still works; it just won't survive a restart.
		m.metricInc(MetricStoreFailure)
		m.logger.Warn("failed to persist session", "email", user.Email, "error", err)
	}

	m.commits++
	m.setSessionLocked(user, resp.AccessToken)
	m.metricInc(MetricLoginSuccess)
	m.emitAudit(ctx, auditEventLoginSuccess, true, user, "", nil, nil)
	m.logger.Info("logged in", "email", user.Email, "role", user.Role)
	m.armExpiryLocked(ctx, resp.AccessToken)

	return user.clone(), nil
}

// laterLoginPendingLocked reports whether a Login started after seq is still
// waiting on the backend and so may yet take over the session.
func (m *Manager) laterLoginPendingLocked(seq uint64) bool {
	for other := range m.pending {
		if other > seq {
			return true
		}
	}
	return false
}

func (m *Manager) loginFailed(ctx context.Context, email string, err error) error {
	m.metricInc(MetricLoginFailure)
	m.emitAudit(ctx, auditEventLoginFailure, false, nil, email, err, nil)
	m.logger.Debug("login failed", "email", email, "error", err)
	return newLoginError(err)
}

// userFromTokenResponse applies the response contract: a non-empty access
// token, and a role taken from user.role, then role, then roles[0].
func userFromTokenResponse(resp *client.TokenResponse, email string) (*User, error) {
	if resp == nil || strings.TrimSpace(resp.AccessToken) == "" {
		return nil, ErrMissingAccessToken
	}

	var raw string
	switch {
	case resp.User != nil && strings.TrimSpace(resp.User.Role) != "":
		raw = resp.User.Role
	case strings.TrimSpace(resp.Role) != "":
		raw = resp.Role
	case len(resp.Roles) > 0 && strings.TrimSpace(resp.Roles[0]) != "":
		raw = resp.Roles[0]
	default:
		return nil, ErrMissingRole
	}

	role, err := ParseRole(raw)
	if err != nil {
		return nil, err
	}

	user := &User{Email: email, Role: role, Roles: []Role{role}}
	if resp.User != nil {
		user.ID = resp.User.ID
		if resp.User.Email != "" {
			user.Email = resp.User.Email
		}
	}
	return user, nil
}

// Logout clears the session, the persisted record and the outgoing
// credential. Calling it while signed out is harmless. The in-memory session
// is always cleared; the returned error only reports a store failure.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrManagerClosed
	}
	return m.logoutLocked(ctx, auditEventLogout)
}

func (m *Manager) logoutLocked(ctx context.Context, eventType string) error {
	m.commits++
	m.stopTimerLocked()

	previous := m.user
	m.user = nil
	m.token = ""
	m.state = StateUnauthenticated
	m.client.ClearCredential()

	err := m.store.Clear(ctx)
	if err != nil {
		m.metricInc(MetricStoreFailure)
		m.logger.Warn("failed to clear persisted session", "error", err)
	}

	if previous != nil {
		if eventType == auditEventLogout {
			m.metricInc(MetricLogout)
		}
		m.emitAudit(ctx, eventType, true, previous, "", nil, nil)
		m.logger.Info("logged out", "email", previous.Email, "reason", eventType)
	}
	return err
}

func (m *Manager) setSessionLocked(user *User, token string) {
	m.user = user
	m.token = token
	m.state = StateAuthenticated
	m.client.SetCredential(token)
}

// Session returns a copy of the current session.
func (m *Manager) Session() Session {
	loading := m.Loading()
	m.mu.Lock()
	defer m.mu.Unlock()
	return Session{
		Token:   m.token,
		User:    m.user.clone(),
		Loading: loading,
		State:   m.state,
	}
}

// User returns a copy of the current user, or nil.
func (m *Manager) User() *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user.clone()
}

// Token returns the current bearer token, or "".
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Client returns the HTTP client whose credential follows the session.
func (m *Manager) Client() *client.Client {
	return m.client
}

// Config returns the configuration the manager was built with.
func (m *Manager) Config() Config {
	return m.config
}

// Close stops the expiry timer, flushes audit events and releases a store
// the manager opened itself. The persisted session is left in place for the
// next process. Close is idempotent.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.commits++
	m.stopTimerLocked()
	m.mu.Unlock()

	m.audit.Close()
	m.client.CloseIdleConnections()
	if m.ownsStore {
		return m.store.Close()
	}
	return nil
}

// AuditDropped reports how many audit events were dropped on a full buffer.
func (m *Manager) AuditDropped() uint64 {
	if m == nil || m.audit == nil {
		return 0
	}
	return m.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the manager's metrics.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil || m.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return m.metrics.Snapshot()
}

// Metrics exposes the live metrics for exporters and the route guard.
func (m *Manager) Metrics() *Metrics {
	return m.metrics
}

func (m *Manager) metricInc(id MetricID) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.Inc(id)
}

func (m *Manager) observeBackend(method, path string, status int, elapsed time.Duration) {
	if m.metrics == nil {
		return
	}
	if status == 0 || status >= 400 {
		m.metrics.Inc(MetricBackendError)
	}
	m.metrics.Observe(MetricBackendLatency, elapsed)
}
