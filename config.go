package goCourt

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/goCourt/store"
	"gopkg.in/yaml.v3"
)

// Config holds everything needed to build a [Manager] and the processes
// hosting it. Start from [DefaultConfig] and override.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Store   StoreConfig   `yaml:"store"`
	Expiry  ExpiryConfig  `yaml:"expiry"`
	Routes  RoutesConfig  `yaml:"routes"`
	Audit   AuditConfig   `yaml:"audit"`
	Metrics MetricsConfig `yaml:"metrics"`
}

/*
====================================
BACKEND CONFIG
====================================
*/

// BackendConfig locates the REST backend.
type BackendConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig selects the durable token store. Driver is one of memory,
// file, redis or sqlite.
type StoreConfig struct {
	Driver      string     `yaml:"driver"`
	Path        string     `yaml:"path"`
	RedisAddr   string     `yaml:"redis_addr"`
	RedisPrefix string     `yaml:"redis_prefix"`
	Keys        store.Keys `yaml:"keys"`
}

// Options converts c into the form accepted by store.Open.
func (c StoreConfig) Options() store.Options {
	return store.Options{
		Driver:      c.Driver,
		Path:        c.Path,
		RedisAddr:   c.RedisAddr,
		RedisPrefix: c.RedisPrefix,
		Keys:        c.Keys,
	}
}

/*
====================================
EXPIRY CONFIG
====================================
*/

// ExpiryConfig controls the auto-logout timer. Leeway logs out that much
// before the token's exp. NoticeMessage is what the [Notifier] shows.
type ExpiryConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Leeway        time.Duration `yaml:"leeway"`
	NoticeMessage string        `yaml:"notice_message"`
}

/*
====================================
ROUTES CONFIG
====================================
*/

// RoutesConfig names the guard's redirect targets.
type RoutesConfig struct {
	LoginPath string `yaml:"login_path"`
	RootPath  string `yaml:"root_path"`
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"buffer_size"`
	DropIfFull bool `yaml:"drop_if_full"`
}

// MetricsConfig controls in-process counters and latency histograms.
type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled"`
	EnableLatencyHistograms bool `yaml:"enable_latency_histograms"`
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns a configuration that talks to a backend on
// localhost:8000 and keeps the session in a per-user file.
func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			BaseURL:   "http://127.0.0.1:8000",
			Timeout:   15 * time.Second,
			UserAgent: "courtdesk/1",
		},
		Store: StoreConfig{
			Driver:      store.DriverFile,
			RedisPrefix: "courtdesk",
			Keys:        store.DefaultKeys,
		},
		Expiry: ExpiryConfig{
			Enabled:       true,
			NoticeMessage: "Session expired. Please log in again.",
		},
		Routes: RoutesConfig{
			LoginPath: "/login",
			RootPath:  "/",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	// Backend
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return errors.New("Backend BaseURL must be set")
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil {
		return fmt.Errorf("Backend BaseURL is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("Backend BaseURL must use http or https")
	}
	if u.Host == "" {
		return errors.New("Backend BaseURL must include a host")
	}
	if c.Backend.Timeout < 0 {
		return errors.New("Backend Timeout must be >= 0")
	}

	// Store
	switch strings.ToLower(c.Store.Driver) {
	case store.DriverMemory, store.DriverFile, "":
	case store.DriverRedis:
		if c.Store.RedisAddr == "" {
			return errors.New("Store RedisAddr is required for the redis driver")
		}
	case store.DriverSQLite:
		if c.Store.Path == "" {
			return errors.New("Store Path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("Store Driver %q is not supported", c.Store.Driver)
	}
	if c.Store.Keys.User != "" && c.Store.Keys.User == c.Store.Keys.Token {
		return errors.New("Store Keys must differ")
	}

	// Expiry
	if c.Expiry.Leeway < 0 {
		return errors.New("Expiry Leeway must be >= 0")
	}

	// Routes
	if !strings.HasPrefix(c.Routes.LoginPath, "/") {
		return errors.New("Routes LoginPath must start with /")
	}
	if !strings.HasPrefix(c.Routes.RootPath, "/") {
		return errors.New("Routes RootPath must start with /")
	}
	if c.Routes.LoginPath == c.Routes.RootPath {
		return errors.New("Routes LoginPath and RootPath must differ")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}

	return nil
}

/*
====================================
LOADING
====================================
*/

// LoadConfigFile reads a YAML file over [DefaultConfig]. Unknown keys are
// rejected.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg from COURTDESK_* environment variables. Malformed
// durations and booleans are errors rather than silently ignored.
func (c *Config) ApplyEnv() error {
	c.Backend.BaseURL = getEnv("COURTDESK_BACKEND_URL", c.Backend.BaseURL)
	c.Backend.UserAgent = getEnv("COURTDESK_USER_AGENT", c.Backend.UserAgent)
	c.Store.Driver = getEnv("COURTDESK_STORE_DRIVER", c.Store.Driver)
	c.Store.Path = getEnv("COURTDESK_STORE_PATH", c.Store.Path)
	c.Store.RedisAddr = getEnv("COURTDESK_REDIS_ADDR", c.Store.RedisAddr)
	c.Store.RedisPrefix = getEnv("COURTDESK_REDIS_PREFIX", c.Store.RedisPrefix)

	var err error
	if c.Backend.Timeout, err = getEnvDuration("COURTDESK_BACKEND_TIMEOUT", c.Backend.Timeout); err != nil {
		return err
	}
	if c.Expiry.Leeway, err = getEnvDuration("COURTDESK_EXPIRY_LEEWAY", c.Expiry.Leeway); err != nil {
		return err
	}
	if c.Audit.Enabled, err = getEnvBool("COURTDESK_AUDIT", c.Audit.Enabled); err != nil {
		return err
	}
	if c.Metrics.Enabled, err = getEnvBool("COURTDESK_METRICS", c.Metrics.Enabled); err != nil {
		return err
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return fallback, fmt.Errorf("%s: invalid boolean %q", key, value)
	}
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	value = strings.TrimSpace(value)
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback, fmt.Errorf("%s: invalid duration %q", key, value)
	}
	return d, nil
}
