package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// recorder captures the last request seen by the test server.
type recorder struct {
	mu      sync.Mutex
	method  string
	path    string
	rawPath string
	query   string
	header  http.Header
	body    string
}

func (r *recorder) snapshot() recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return recorder{method: r.method, path: r.path, rawPath: r.rawPath, query: r.query, header: r.header.Clone(), body: r.body}
}

func newTestServer(t *testing.T, status int, response string) (*Client, *recorder) {
	t.Helper()
	rec := &recorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.rawPath = r.URL.EscapedPath()
		rec.query = r.URL.RawQuery
		rec.header = r.Header.Clone()
		rec.body = string(body)
		rec.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, response)
	}))
	t.Cleanup(server.Close)

	c, err := New(Config{BaseURL: server.URL + "/", UserAgent: "courtdesk-test"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c, rec
}

func TestSetCredentialAttachesBearer(t *testing.T) {
	c, rec := newTestServer(t, http.StatusOK, `[]`)
	c.SetCredential("xyz")

	if _, err := c.Cases.List(context.Background()); err != nil {
		t.Fatalf("list cases: %v", err)
	}
	got := rec.snapshot()
	if auth := got.header.Get("Authorization"); auth != "Bearer xyz" {
		t.Fatalf("expected Bearer xyz, got %q", auth)
	}
	if got.header.Get(RequestIDHeader) == "" {
		t.Fatalf("expected %s header", RequestIDHeader)
	}
	if got.header.Get("User-Agent") != "courtdesk-test" {
		t.Fatalf("unexpected user agent %q", got.header.Get("User-Agent"))
	}
}

func TestClearCredentialRemovesHeaderEntirely(t *testing.T) {
	c, rec := newTestServer(t, http.StatusOK, `[]`)
	c.SetCredential("xyz")
	c.ClearCredential()

	if _, err := c.Hearings.List(context.Background()); err != nil {
		t.Fatalf("list hearings: %v", err)
	}
	if values := rec.snapshot().header.Values("Authorization"); len(values) != 0 {
		t.Fatalf("expected no Authorization header, got %v", values)
	}

	c.SetCredential("abc")
	c.SetCredential("")
	if c.Credential() != "" {
		t.Fatalf("expected empty credential after SetCredential(\"\")")
	}
}

func TestLoginPostsForm(t *testing.T) {
	c, rec := newTestServer(t, http.StatusOK, `{"access_token":"tok","token_type":"bearer","user":{"email":"a@court.com","role":"JUDGE"}}`)

	resp, err := c.Auth.Login(context.Background(), "a@court.com", "p@ss word")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken != "tok" || resp.User == nil || resp.User.Role != "JUDGE" {
		t.Fatalf("unexpected token response %+v", resp)
	}

	got := rec.snapshot()
	if got.method != http.MethodPost || got.path != "/auth/token" {
		t.Fatalf("unexpected request %s %s", got.method, got.path)
	}
	if ct := got.header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if got.body != "password=p%40ss+word&username=a%40court.com" {
		t.Fatalf("unexpected form body %q", got.body)
	}
}

func TestNon2xxSurfacesAPIError(t *testing.T) {
	c, _ := newTestServer(t, http.StatusUnauthorized, `{"detail":"Invalid credentials"}`)

	_, err := c.Auth.Login(context.Background(), "a@court.com", "bad")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T %v", err, err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", apiErr.StatusCode)
	}
	if apiErr.DetailText() != "Invalid credentials" {
		t.Fatalf("unexpected detail %q", apiErr.DetailText())
	}
	if string(apiErr.Body) != `{"detail":"Invalid credentials"}` {
		t.Fatalf("expected raw body preserved, got %q", apiErr.Body)
	}
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("IsStatus should match 401")
	}
}

func TestAPIErrorDetailShapes(t *testing.T) {
	cases := []struct {
		name        string
		body        string
		wantDetail  string
		wantMessage string
	}{
		{"string detail", `{"detail":"nope"}`, "nope", ""},
		{"validation list", `{"detail":[{"loc":["body","username"],"msg":"field required"},{"msg":"too short"}]}`, "field required; too short", ""},
		{"message only", `{"message":"server says no"}`, "", "server says no"},
		{"null detail", `{"detail":null,"message":"m"}`, "", "m"},
		{"object detail", `{"detail":{"code":1}}`, "", ""},
		{"not json", `<html>bad gateway</html>`, "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			apiErr := newAPIError(http.MethodPost, "/auth/token", http.StatusBadRequest, []byte(tc.body))
			if got := apiErr.DetailText(); got != tc.wantDetail {
				t.Fatalf("detail: got %q want %q", got, tc.wantDetail)
			}
			if apiErr.Message != tc.wantMessage {
				t.Fatalf("message: got %q want %q", apiErr.Message, tc.wantMessage)
			}
			if apiErr.Error() == "" {
				t.Fatalf("expected non-empty Error()")
			}
		})
	}
}

func TestTransportErrorIsWrapped(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()

	c, err := New(Config{BaseURL: "http://" + addr, Timeout: time.Second})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = c.Users.List(context.Background())
	if err == nil {
		t.Fatalf("expected transport error")
	}
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected *net.OpError in chain, got %v", err)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Fatalf("transport failure must not be an APIError")
	}
}

func TestContextCancellationReachesCaller(t *testing.T) {
	c, _ := newTestServer(t, http.StatusOK, `[]`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Payments.List(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestResourceRoutes(t *testing.T) {
	ctx := context.Background()
	status := "CLOSED"
	cases := []struct {
		name   string
		call   func(c *Client) error
		method string
		path   string
		body   string
	}{
		{"cases mine", func(c *Client) error { _, err := c.Cases.Mine(ctx, "a b@court.com"); return err }, "GET", "/cases/mine/a%20b@court.com", ""},
		{"cases get", func(c *Client) error { _, err := c.Cases.Get(ctx, 4); return err }, "GET", "/cases/4", ""},
		{"cases status", func(c *Client) error { _, err := c.Cases.Status(ctx, 4); return err }, "GET", "/cases/4/status", ""},
		{"cases update", func(c *Client) error { _, err := c.Cases.Update(ctx, 4, CaseUpdate{Status: &status}); return err }, "PUT", "/cases/4", `{"status":"CLOSED"}`},
		{"cases delete", func(c *Client) error { return c.Cases.Delete(ctx, 4) }, "DELETE", "/cases/4", ""},
		{"cases notes", func(c *Client) error { _, err := c.Cases.Notes(ctx, 4); return err }, "GET", "/cases/4/notes", ""},
		{"cases evidence", func(c *Client) error { _, err := c.Cases.Evidence(ctx, 4); return err }, "GET", "/cases/4/evidence", ""},
		{"evidence review", func(c *Client) error {
			_, err := c.Evidence.Review(ctx, 9, EvidenceReview{Status: "APPROVED"})
			return err
		}, "PUT", "/evidence/9/review", `{"status":"APPROVED"}`},
		{"evidence by uploader", func(c *Client) error { _, err := c.Evidence.ByUploader(ctx, "p@court.com"); return err }, "GET", "/evidence/uploader/p@court.com", ""},
		{"hearings by judge", func(c *Client) error { _, err := c.Hearings.ByJudge(ctx, 3); return err }, "GET", "/hearings/judge/3", ""},
		{"hearings by case", func(c *Client) error { _, err := c.Hearings.ByCase(ctx, 3); return err }, "GET", "/hearings/case/3", ""},
		{"documents by case", func(c *Client) error { _, err := c.Documents.ByCase(ctx, 2); return err }, "GET", "/documents/case/2", ""},
		{"documents delete", func(c *Client) error { return c.Documents.Delete(ctx, 2) }, "DELETE", "/documents/2", ""},
		{"payments by payer", func(c *Client) error { _, err := c.Payments.ByPayer(ctx, "c@court.com"); return err }, "GET", "/payments/payer/c@court.com", ""},
		{"payments create", func(c *Client) error {
			_, err := c.Payments.Create(ctx, PaymentCreate{CaseID: 1, PayerEmail: "c@court.com", Amount: 50, PaymentType: "FILING_FEE"})
			return err
		}, "POST", "/payments/", `{"case_id":1,"payer_email":"c@court.com","amount":50,"payment_type":"FILING_FEE"}`},
		{"users by role", func(c *Client) error { _, err := c.Users.ByRole(ctx, "JUDGE"); return err }, "GET", "/users/role/JUDGE", ""},
		{"auth me", func(c *Client) error { _, err := c.Auth.Me(ctx); return err }, "GET", "/auth/me", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestServer(t, http.StatusOK, ``)
			if err := tc.call(c); err != nil {
				t.Fatalf("call: %v", err)
			}
			got := rec.snapshot()
			if got.method != tc.method || got.rawPath != tc.path {
				t.Fatalf("expected %s %s, got %s %s", tc.method, tc.path, got.method, got.rawPath)
			}
			if got.body != tc.body {
				t.Fatalf("expected body %q, got %q", tc.body, got.body)
			}
		})
	}
}

func TestFileCaseUsesForm(t *testing.T) {
	c, rec := newTestServer(t, http.StatusOK, `{"id":1,"title":"Land dispute","status":"PENDING","created_by":"c@court.com"}`)
	got, err := c.Cases.File(context.Background(), CaseFiling{Title: "Land dispute", Description: "fence", UserEmail: "c@court.com"})
	if err != nil {
		t.Fatalf("file case: %v", err)
	}
	if got.ID != 1 || got.Status != "PENDING" {
		t.Fatalf("unexpected case %+v", got)
	}
	snap := rec.snapshot()
	if !strings.Contains(snap.body, "user_email=c%40court.com") {
		t.Fatalf("expected user_email in form, got %q", snap.body)
	}
}

func TestDoWithQuery(t *testing.T) {
	c, rec := newTestServer(t, http.StatusOK, `{"ok":true}`)
	body, err := c.Do(context.Background(), http.MethodGet, "/cases/", nil, map[string][]string{"status": {"PENDING"}})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	var parsed map[string]bool
	if err := json.Unmarshal(body, &parsed); err != nil || !parsed["ok"] {
		t.Fatalf("unexpected body %q", body)
	}
	if q := rec.snapshot().query; q != "status=PENDING" {
		t.Fatalf("unexpected query %q", q)
	}
}

func TestObserveCalledPerRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	var calls []int
	c, err := New(Config{BaseURL: server.URL, Observe: func(method, path string, status int, elapsed time.Duration) {
		calls = append(calls, status)
	}})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	c.Do(context.Background(), http.MethodGet, "/x", nil, nil)
	if len(calls) != 1 || calls[0] != http.StatusTeapot {
		t.Fatalf("unexpected observed statuses %v", calls)
	}
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrBaseURLRequired) {
		t.Fatalf("expected ErrBaseURLRequired, got %v", err)
	}
}
