package goCourt

import (
	"context"
	"time"

	"github.com/MrEthical07/goCourt/jwt"
)

// armExpiryLocked replaces any pending expiry timer with one for token.
// An already-expired token is logged out before returning. A token whose
// exp cannot be read gets no timer at all.
func (m *Manager) armExpiryLocked(ctx context.Context, token string) {
	m.stopTimerLocked()
	if !m.config.Expiry.Enabled || token == "" {
		return
	}

	now := m.clock.Now()
	delay, err := jwt.Remaining(token, now)
	if err != nil {
		m.metricInc(MetricExpiryDecodeFailure)
		m.logger.Warn("cannot read token expiry, auto-logout disabled for this session", "error", err)
		return
	}
	delay -= m.config.Expiry.Leeway

	if delay <= 0 {
		m.expireLocked(ctx)
		return
	}

	seq := m.timerSeq
	expiresAt := now.Add(delay)
	m.timer = m.clock.AfterFunc(delay, func() {
		m.onExpiry(seq, token, expiresAt)
	})
	m.logger.Debug("expiry timer armed", "in", delay)
}

// stopTimerLocked cancels the pending timer. Bumping timerSeq turns a
// callback that already started into a no-op.
func (m *Manager) stopTimerLocked() {
	m.timerSeq++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Manager) onExpiry(seq uint64, token string, expiresAt time.Time) {
	m.mu.Lock()
	if m.closed || m.timerSeq != seq || m.token != token {
		m.mu.Unlock()
		return
	}
	email := ""
	if m.user != nil {
		email = m.user.Email
	}
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), expiryLogoutTimeout)
	defer cancel()

	m.notifier.Notify(ctx, Notice{
		Message:   m.config.Expiry.NoticeMessage,
		Email:     email,
		ExpiredAt: expiresAt,
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	// The user may have logged out or in again while the notice was up.
	if m.closed || m.timerSeq != seq || m.token != token {
		return
	}
	m.expireLocked(ctx)
}

func (m *Manager) expireLocked(ctx context.Context) {
	m.metricInc(MetricExpiryLogout)
	_ = m.logoutLocked(ctx, auditEventSessionExpired)
}
