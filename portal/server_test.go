package portal

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	goCourt "github.com/MrEthical07/goCourt"
	"github.com/MrEthical07/goCourt/internal/testbackend"
	"github.com/MrEthical07/goCourt/store"
)

type portalHarness struct {
	manager *goCourt.Manager
	notices *NoticeBoard
	backend *testbackend.Backend
	server  *httptest.Server
	client  *http.Client
}

func newPortal(t *testing.T, restore bool) *portalHarness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := testbackend.New(t)
	notices := NewNoticeBoard(logger)

	cfg := goCourt.DefaultConfig()
	cfg.Backend.BaseURL = backend.URL()
	m, err := goCourt.New().
		WithConfig(cfg).
		WithStore(store.NewMemoryStore(store.Keys{})).
		WithNotifier(notices).
		WithLogger(logger).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	if restore {
		if err := m.Restore(context.Background()); err != nil {
			t.Fatalf("restore: %v", err)
		}
	}

	srv := httptest.NewServer(New(m, notices, logger).Handler())
	t.Cleanup(srv.Close)

	return &portalHarness{
		manager: m,
		notices: notices,
		backend: backend,
		server:  srv,
		client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
		},
	}
}

func (h *portalHarness) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := h.client.Get(h.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (h *portalHarness) login(t *testing.T, email, password string) *http.Response {
	t.Helper()
	resp, err := h.client.PostForm(h.server.URL+"/login", url.Values{"email": {email}, "password": {password}})
	if err != nil {
		t.Fatalf("POST /login: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestLoginRedirectsToRoleHome(t *testing.T) {
	h := newPortal(t, true)

	for _, tc := range []struct{ email, home string }{
		{"civilian@court.com", "/civilian"},
		{"prosecutor@court.com", "/prosecutor"},
		{"judge@court.com", "/judge"},
		{"registrar@court.com", "/registrar"},
	} {
		resp := h.login(t, tc.email, testbackend.DefaultPassword)
		if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != tc.home {
			t.Fatalf("%s: expected 303 to %s, got %d %q", tc.email, tc.home, resp.StatusCode, resp.Header.Get("Location"))
		}
	}
}

func TestLoginFailureShowsMessage(t *testing.T) {
	h := newPortal(t, true)

	resp := h.login(t, "judge@court.com", "wrong")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["error"] != "Invalid credentials" {
		t.Fatalf("expected backend detail, got %q", body["error"])
	}

	resp = h.login(t, "admin@court.com", testbackend.DefaultPassword)
	body = decode[map[string]string](t, resp)
	if resp.StatusCode != http.StatusUnauthorized || !strings.Contains(body["error"], "unknown role") {
		t.Fatalf("expected unknown role rejection, got %d %q", resp.StatusCode, body["error"])
	}

	resp = h.login(t, "", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty form, got %d", resp.StatusCode)
	}
}

func TestDashboardsAreGuarded(t *testing.T) {
	h := newPortal(t, true)

	resp := h.get(t, "/judge/")
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/login" {
		t.Fatalf("expected redirect to login, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	h.login(t, "judge@court.com", testbackend.DefaultPassword)

	resp = h.get(t, "/judge/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected judge dashboard, got %d", resp.StatusCode)
	}
	d := decode[Dashboard](t, resp)
	if d.Role != goCourt.RoleJudge || len(d.Cases) == 0 || len(d.Hearings) == 0 || len(d.Evidence) == 0 {
		t.Fatalf("unexpected judge dashboard %+v", d)
	}
	if d.Payments != nil || d.Users != nil {
		t.Fatalf("judge dashboard leaked registrar sections")
	}

	resp = h.get(t, "/registrar/")
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/" {
		t.Fatalf("expected redirect to root, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestCivilianDashboardIsScopedToUser(t *testing.T) {
	h := newPortal(t, true)
	h.login(t, "civilian@court.com", testbackend.DefaultPassword)

	resp := h.get(t, "/civilian/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected civilian dashboard, got %d", resp.StatusCode)
	}
	d := decode[Dashboard](t, resp)
	for _, c := range d.Cases {
		if c.CreatedBy != "civilian@court.com" {
			t.Fatalf("foreign case on civilian dashboard: %+v", c)
		}
	}
	for _, p := range d.Payments {
		if p.PayerEmail != "civilian@court.com" {
			t.Fatalf("foreign payment on civilian dashboard: %+v", p)
		}
	}
	if len(d.Documents) == 0 {
		t.Fatalf("expected documents")
	}
}

func TestRegistrarDashboardConcurrentRequests(t *testing.T) {
	h := newPortal(t, true)
	h.login(t, "registrar@court.com", testbackend.DefaultPassword)

	var wg sync.WaitGroup
	errs := make(chan string, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := h.client.Get(h.server.URL + "/registrar/")
			if err != nil {
				errs <- err.Error()
				return
			}
			defer resp.Body.Close()
			var d Dashboard
			if resp.StatusCode != http.StatusOK || json.NewDecoder(resp.Body).Decode(&d) != nil || len(d.Users) == 0 {
				errs <- resp.Status
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Fatalf("dashboard request failed: %s", e)
	}
}

func TestDashboardLoadOutlivesCallerCancel(t *testing.T) {
	h := newPortal(t, true)
	h.login(t, "judge@court.com", testbackend.DefaultPassword)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/judge/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	New(h.manager, h.notices, slog.New(slog.NewTextHandler(io.Discard, nil))).Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("shared dashboard load must not inherit the caller's cancel, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestSessionEndpointNeverShowsToken(t *testing.T) {
	h := newPortal(t, true)
	h.login(t, "prosecutor@court.com", testbackend.DefaultPassword)
	token := h.manager.Token()

	resp := h.get(t, "/session")
	raw, _ := io.ReadAll(resp.Body)
	if strings.Contains(string(raw), token) {
		t.Fatalf("token leaked through /session")
	}
	var v sessionView
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !v.Authenticated || v.Home != "/prosecutor" || v.State != "authenticated" {
		t.Fatalf("unexpected view %+v", v)
	}
}

func TestLogoutRedirectsToLogin(t *testing.T) {
	h := newPortal(t, true)
	h.login(t, "judge@court.com", testbackend.DefaultPassword)

	resp, err := h.client.Post(h.server.URL+"/logout", "", nil)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/login" {
		t.Fatalf("expected 303 to /login, got %d", resp.StatusCode)
	}
	if h.manager.Session().Authenticated() {
		t.Fatalf("expected session cleared")
	}
	if got := h.get(t, "/judge/"); got.StatusCode != http.StatusFound {
		t.Fatalf("expected guard redirect after logout, got %d", got.StatusCode)
	}
}

func TestGuardWaitsForRestore(t *testing.T) {
	h := newPortal(t, false)
	resp := h.get(t, "/civilian/")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 while restoring, got %d", resp.StatusCode)
	}
}

func TestLoginPageShowsNoticeOnce(t *testing.T) {
	h := newPortal(t, true)
	h.notices.Notify(context.Background(), goCourt.Notice{
		Message:   "Session expired. Please log in again.",
		Email:     "judge@court.com",
		ExpiredAt: time.Now(),
	})

	if v := decode[sessionView](t, h.get(t, "/session")); v.Notice == nil {
		t.Fatalf("expected notice on /session")
	}
	v := decode[sessionView](t, h.get(t, "/login"))
	if v.Notice == nil || v.Notice.Message != "Session expired. Please log in again." {
		t.Fatalf("expected notice on login page, got %+v", v.Notice)
	}
	if v := decode[sessionView](t, h.get(t, "/login")); v.Notice != nil {
		t.Fatalf("notice must be shown once")
	}
}

func TestMetricsAndHealth(t *testing.T) {
	h := newPortal(t, true)
	h.get(t, "/judge/")

	resp := h.get(t, "/metrics")
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), "courtdesk_guard_redirect_login_total 1") {
		t.Fatalf("expected guard metric, got:\n%s", raw)
	}
	if got := h.get(t, "/health"); got.StatusCode != http.StatusOK {
		t.Fatalf("expected health 200, got %d", got.StatusCode)
	}
}
