package goCourt

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/MrEthical07/goCourt/client"
	internalaudit "github.com/MrEthical07/goCourt/internal/audit"
	"github.com/MrEthical07/goCourt/store"
)

// Builder assembles a [Manager]. Configure it during initialization, call
// Build once, and discard it.
type Builder struct {
	config Config

	store      store.Store
	httpClient *client.Client
	logger     *slog.Logger
	notifier   Notifier
	clock      Clock
	auditSink  AuditSink

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStore supplies the token store. The caller keeps ownership: Close on
// the manager does not close it. Without a store, Build opens the one named
// by Config.Store and the manager owns it.
func (b *Builder) WithStore(s store.Store) *Builder {
	b.store = s
	return b
}

// WithClient supplies a preconfigured backend client. Config.Backend is then
// ignored and backend latency is not recorded.
func (b *Builder) WithClient(c *client.Client) *Builder {
	b.httpClient = c
	return b
}

func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithNotifier sets who is told about session expiry. The default writes to
// standard error.
func (b *Builder) WithNotifier(n Notifier) *Builder {
	b.notifier = n
	return b
}

// WithClock replaces the wall clock and timers used for expiry.
func (b *Builder) WithClock(c Clock) *Builder {
	b.clock = c
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = sink != nil
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a manager in the Restoring
// state. Call [Manager.Restore] next.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := b.config
	if b.httpClient != nil && cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = b.httpClient.BaseURL()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Audit.Enabled && b.auditSink == nil {
		return nil, ErrAuditSinkRequired
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		config:   cfg,
		logger:   logger,
		notifier: b.notifier,
		clock:    b.clock,
		ready:    make(chan struct{}),
		state:    StateRestoring,
	}
	if m.notifier == nil {
		m.notifier = NewWriterNotifier(os.Stderr)
	}
	if m.clock == nil {
		m.clock = systemClock{}
	}
	m.metrics = NewMetrics(cfg.Metrics)

	// -------- BACKEND CLIENT --------
	m.client = b.httpClient
	if m.client == nil {
		c, err := client.New(client.Config{
			BaseURL:   cfg.Backend.BaseURL,
			Timeout:   cfg.Backend.Timeout,
			UserAgent: cfg.Backend.UserAgent,
			Logger:    logger,
			Observe:   m.observeBackend,
		})
		if err != nil {
			return nil, err
		}
		m.client = c
	}

	// -------- TOKEN STORE --------
	m.store = b.store
	if m.store == nil {
		s, err := store.Open(cfg.Store.Options())
		if err != nil {
			return nil, fmt.Errorf("open token store: %w", err)
		}
		m.store = s
		m.ownsStore = true
	}

	// -------- AUDIT --------
	m.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	b.built = true
	return m, nil
}
