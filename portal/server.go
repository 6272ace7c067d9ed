package portal

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	goCourt "github.com/MrEthical07/goCourt"
	"github.com/MrEthical07/goCourt/client"
	"github.com/MrEthical07/goCourt/metrics/export/prometheus"
	"github.com/MrEthical07/goCourt/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"
)

const (
	shutdownTimeout = 10 * time.Second
	// dashboardTimeout bounds a shared dashboard load, which outlives any
	// single caller's request.
	dashboardTimeout = 15 * time.Second
)

// Server is the portal's HTTP surface.
type Server struct {
	manager *goCourt.Manager
	notices *NoticeBoard
	logger  *slog.Logger
	metrics *prometheus.PrometheusExporter

	dashboards singleflight.Group
}

// New wires a portal around m. notices may be nil when the manager was built
// with another notifier.
func New(m *goCourt.Manager, notices *NoticeBoard, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		manager: m,
		notices: notices,
		logger:  logger,
		metrics: prometheus.NewPrometheusExporter(m),
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	routes := s.manager.Config().Routes

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Get(routes.LoginPath, s.loginPage)
	r.Post(routes.LoginPath, s.login)
	r.Post("/logout", s.logout)
	r.Get("/session", s.session)
	r.Get(routes.RootPath, s.root)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	for _, role := range goCourt.AllRoles() {
		r.Route(role.HomePath(), func(r chi.Router) {
			r.Use(middleware.RequireRoles(s.manager, role))
			r.Get("/", s.dashboard)
		})
	}
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("portal listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("portal shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chiMiddleware.GetReqID(r.Context()),
		)
	})
}

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error body.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

type sessionView struct {
	Authenticated bool            `json:"authenticated"`
	Loading       bool            `json:"loading"`
	State         string          `json:"state"`
	User          *goCourt.User   `json:"user,omitempty"`
	Home          string          `json:"home,omitempty"`
	Notice        *goCourt.Notice `json:"notice,omitempty"`
}

func (s *Server) view(notice *goCourt.Notice) sessionView {
	snap := s.manager.Session()
	v := sessionView{
		Authenticated: snap.Authenticated(),
		Loading:       snap.Loading,
		State:         snap.State.String(),
		User:          snap.User,
		Notice:        notice,
	}
	if snap.User != nil {
		v.Home = snap.User.PrimaryRole().HomePath()
	}
	return v
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, s.view(s.notices.Last()))
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, s.view(nil))
}

// loginPage is where the guard sends visitors without a session. A pending
// expiry notice is shown once.
func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, s.view(s.notices.Take()))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		Error(w, http.StatusBadRequest, "invalid form")
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")
	if email == "" || password == "" {
		Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := s.manager.Login(r.Context(), email, password)
	if err != nil {
		var loginErr *goCourt.LoginError
		if errors.As(err, &loginErr) {
			status := http.StatusUnauthorized
			if errors.Is(err, goCourt.ErrLoginSuperseded) {
				status = http.StatusConflict
			}
			Error(w, status, loginErr.Message)
			return
		}
		Error(w, http.StatusInternalServerError, goCourt.FallbackLoginMessage)
		return
	}

	s.notices.Take()
	http.Redirect(w, r, user.Role.HomePath(), http.StatusSeeOther)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Logout(r.Context()); err != nil {
		// The in-memory session is gone either way.
		s.logger.Warn("logout did not clear the stored session", "error", err)
	}
	http.Redirect(w, r, s.manager.Config().Routes.LoginPath, http.StatusSeeOther)
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := goCourt.SessionFromContext(r.Context())
	if !ok || sess.User == nil {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	role := sess.User.PrimaryRole()
	key := string(role) + ":" + sess.User.Email + ":" + sess.Token

	v, err, _ := s.dashboards.Do(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), dashboardTimeout)
		defer cancel()
		return LoadDashboard(ctx, s.manager.Client(), role, sess.User.Email)
	})
	if err != nil {
		s.writeBackendError(w, err)
		return
	}
	JSON(w, http.StatusOK, v)
}

func (s *Server) writeBackendError(w http.ResponseWriter, err error) {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized:
		Error(w, http.StatusUnauthorized, "backend rejected the session")
	case errors.Is(err, context.Canceled):
		Error(w, http.StatusServiceUnavailable, "request canceled")
	default:
		s.logger.Warn("dashboard load failed", "error", err)
		Error(w, http.StatusBadGateway, "backend unavailable")
	}
}
