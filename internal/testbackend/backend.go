// Package testbackend runs an in-process fake of the court REST backend for
// tests: bcrypt-checked password login that mints HS256 tokens, bearer
// verification, and canned case, hearing, evidence, payment, document and
// user listings.
package testbackend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrEthical07/goCourt/client"
	"github.com/MrEthical07/goCourt/jwt"
	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

// Account is a backend user.
type Account struct {
	ID    int64
	Email string
	Role  string
	hash  []byte
}

// LoginHook may replace the login response. Returning handled=false falls
// through to the normal token response.
type LoginHook func(w http.ResponseWriter, r *http.Request, account Account, token string) (handled bool)

// Backend is a running fake. Close it with the test's Cleanup.
type Backend struct {
	server *httptest.Server
	issuer *jwt.Issuer
	ttl    time.Duration

	mu        sync.Mutex
	accounts  map[string]Account
	nextID    int64
	loginHook LoginHook

	logins   atomic.Int64
	requests atomic.Int64
}

// Option configures a Backend.
type Option func(*Backend)

// WithTokenTTL sets how long minted tokens live. Negative values mint
// already-expired tokens.
func WithTokenTTL(d time.Duration) Option {
	return func(b *Backend) { b.ttl = d }
}

// WithLoginHook installs h on POST /auth/token.
func WithLoginHook(h LoginHook) Option {
	return func(b *Backend) { b.loginHook = h }
}

// New starts a backend seeded with one account per role plus an ADMIN,
// all using DefaultPassword.
func New(t testing.TB, opts ...Option) *Backend {
	t.Helper()

	issuer, err := jwt.NewIssuer(jwt.IssuerConfig{
		Secret: []byte("testbackend-secret"),
		TTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("testbackend issuer: %v", err)
	}

	b := &Backend{
		issuer:   issuer,
		ttl:      time.Hour,
		accounts: map[string]Account{},
	}
	for _, opt := range opts {
		opt(b)
	}

	for _, seed := range []struct{ email, role string }{
		{"civilian@court.com", "CIVILIAN"},
		{"prosecutor@court.com", "PROSECUTOR"},
		{"judge@court.com", "JUDGE"},
		{"registrar@court.com", "REGISTRAR"},
		{"admin@court.com", "ADMIN"},
	} {
		b.AddAccount(t, seed.email, DefaultPassword, seed.role)
	}

	b.server = httptest.NewServer(b.routes())
	t.Cleanup(b.server.Close)
	return b
}

// URL is the backend's base URL.
func (b *Backend) URL() string { return b.server.URL }

// Logins counts POST /auth/token requests.
func (b *Backend) Logins() int64 { return b.logins.Load() }

// Requests counts authenticated resource requests.
func (b *Backend) Requests() int64 { return b.requests.Load() }

// AddAccount registers email with a bcrypt hash of password.
func (b *Backend) AddAccount(t testing.TB, email, password, role string) Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("testbackend hash: %v", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	account := Account{ID: b.nextID, Email: email, Role: role, hash: hash}
	b.accounts[strings.ToLower(email)] = account
	return account
}

// Token mints a token for email with the backend's TTL, as a login would.
func (b *Backend) Token(email, role string) (string, error) {
	now := time.Now()
	return b.issuer.IssueAt(email, []string{role}, now, now.Add(b.ttl))
}

// TokenExpiringAt mints a token with an explicit exp.
func (b *Backend) TokenExpiringAt(email, role string, exp time.Time) (string, error) {
	return b.issuer.IssueAt(email, []string{role}, time.Now(), exp)
}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/auth/token", b.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(b.requireBearer)
		r.Get("/auth/me", b.handleMe)
		r.Get("/cases/", b.handleCases)
		r.Get("/cases/mine/{email}", b.handleMyCases)
		r.Get("/hearings/", b.handleHearings)
		r.Get("/evidence/", b.handleEvidence)
		r.Get("/payments/", b.handlePayments)
		r.Get("/payments/payer/{email}", b.handlePayments)
		r.Get("/documents/uploader/{email}", b.handleDocuments)
		r.Get("/users/", b.handleUsers)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	b.logins.Add(1)
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{{"loc": []string{"body"}, "msg": "invalid form"}},
		})
		return
	}
	email := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if email == "" || password == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{
				{"loc": []string{"body", "username"}, "msg": "field required"},
			},
		})
		return
	}

	b.mu.Lock()
	account, ok := b.accounts[strings.ToLower(email)]
	hook := b.loginHook
	b.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(account.hash, []byte(password)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
		return
	}

	token, err := b.Token(account.Email, account.Role)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
		return
	}

	if hook != nil && hook(w, r, account, token) {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"user": map[string]any{
			"id":    account.ID,
			"email": account.Email,
			"role":  account.Role,
		},
	})
}

type accountKey struct{}

func withAccount(ctx context.Context, a Account) context.Context {
	return context.WithValue(ctx, accountKey{}, a)
}

func accountFrom(ctx context.Context) Account {
	a, _ := ctx.Value(accountKey{}).(Account)
	return a
}

func (b *Backend) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
			return
		}
		claims, err := b.issuer.Verify(token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
			return
		}

		b.mu.Lock()
		account, found := b.accounts[strings.ToLower(claims.Subject)]
		b.mu.Unlock()
		if !found {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
			return
		}

		b.requests.Add(1)
		next.ServeHTTP(w, r.WithContext(withAccount(r.Context(), account)))
	})
}

func (b *Backend) handleMe(w http.ResponseWriter, r *http.Request) {
	account := accountFrom(r.Context())
	writeJSON(w, http.StatusOK, client.Account{
		ID:       account.ID,
		Username: strings.Split(account.Email, "@")[0],
		Email:    account.Email,
		Role:     account.Role,
	})
}

var cases = []client.Case{
	{ID: 1, Title: "Land Dispute in Rural Area", Status: "PENDING", CreatedBy: "civilian@court.com"},
	{ID: 2, Title: "Environmental Pollution Complaint", Status: "IN_PROGRESS", CreatedBy: "civilian@court.com", AssignedTo: "judge@court.com"},
	{ID: 3, Title: "Theft Case at Community Center", Status: "CLOSED", CreatedBy: "other@court.com"},
}

func (b *Backend) handleCases(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, cases)
}

func (b *Backend) handleMyCases(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	mine := []client.Case{}
	for _, c := range cases {
		if strings.EqualFold(c.CreatedBy, email) {
			mine = append(mine, c)
		}
	}
	writeJSON(w, http.StatusOK, mine)
}

func (b *Backend) handleHearings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []client.Hearing{
		{ID: 1, CaseTitle: cases[1].Title, JudgeName: "judge", RegistrarName: "registrar", ScheduledDate: "2026-11-02T10:00:00", Location: "Courtroom 4", Status: "SCHEDULED"},
	})
}

func (b *Backend) handleEvidence(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []client.Evidence{
		{ID: 1, Filename: "photo.jpg", CaseTitle: cases[0].Title, UploaderEmail: "prosecutor@court.com", Status: "UNDER_REVIEW"},
		{ID: 2, Filename: "report.pdf", CaseTitle: cases[1].Title, UploaderEmail: "prosecutor@court.com", Status: "APPROVED"},
	})
}

func (b *Backend) handlePayments(w http.ResponseWriter, r *http.Request) {
	payer := chi.URLParam(r, "email")
	all := []client.Payment{
		{ID: 1, PayerEmail: "civilian@court.com", CaseTitle: cases[0].Title, Amount: 50, PaymentType: "FILING_FEE", Status: "COMPLETED", Date: "2026-10-01"},
		{ID: 2, PayerEmail: "other@court.com", CaseTitle: cases[2].Title, Amount: 200, PaymentType: "FINE", Status: "PENDING", Date: "2026-10-03"},
	}
	if payer == "" {
		writeJSON(w, http.StatusOK, all)
		return
	}
	out := []client.Payment{}
	for _, p := range all {
		if strings.EqualFold(p.PayerEmail, payer) {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleDocuments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []client.Document{
		{ID: 1, Filename: "deed.pdf", CaseTitle: cases[0].Title, UploaderEmail: chi.URLParam(r, "email"), UploadDate: "2026-09-28"},
	})
}

func (b *Backend) handleUsers(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	emails := make([]string, 0, len(b.accounts))
	for _, a := range b.accounts {
		emails = append(emails, a.Email)
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, emails)
}

// IDString formats the account ID the way it appears in a login response.
func (a Account) IDString() string { return strconv.FormatInt(a.ID, 10) }
