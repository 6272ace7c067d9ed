package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	goCourt "github.com/MrEthical07/goCourt"
	"github.com/MrEthical07/goCourt/store"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// Replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// sessionFlags are shared by every command that opens the session.
type sessionFlags struct {
	configPath  string
	backendURL  string
	storeDriver string
	storePath   string
	redisAddr   string
	debug       bool
}

func (f *sessionFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "YAML config file (default $COURTDESK_CONFIG)")
	fs.StringVar(&f.backendURL, "backend-url", "", "court backend base URL")
	fs.StringVar(&f.storeDriver, "store", "", "token store driver: memory, file, redis or sqlite")
	fs.StringVar(&f.storePath, "store-path", "", "file or sqlite path of the token store")
	fs.StringVar(&f.redisAddr, "redis-addr", "", "redis address for the redis store")
	fs.BoolVar(&f.debug, "debug", false, "log at debug level")
}

// config layers defaults, the YAML file, COURTDESK_* variables and flags,
// in that order.
func (f *sessionFlags) config() (goCourt.Config, error) {
	cfg := goCourt.DefaultConfig()

	path := f.configPath
	if path == "" {
		path = os.Getenv("COURTDESK_CONFIG")
	}
	if path != "" {
		loaded, err := goCourt.LoadConfigFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}

	if f.backendURL != "" {
		cfg.Backend.BaseURL = f.backendURL
	}
	if f.storeDriver != "" {
		cfg.Store.Driver = f.storeDriver
	}
	if f.storePath != "" {
		cfg.Store.Path = f.storePath
	}
	if f.redisAddr != "" {
		cfg.Store.RedisAddr = f.redisAddr
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger writes text to a terminal and JSON otherwise.
func newLogger(debug bool) *slog.Logger {
	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		options.Level = slog.LevelDebug
	}
	if f, ok := stderr.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return slog.New(slog.NewTextHandler(stderr, options))
	}
	return slog.New(slog.NewJSONHandler(stderr, options))
}

// open builds a manager and restores the persisted session. A nil notifier
// keeps the builder default.
func (f *sessionFlags) open(ctx context.Context, notifier goCourt.Notifier) (*goCourt.Manager, *slog.Logger, error) {
	cfg, err := f.config()
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(f.debug)

	b := goCourt.New().WithConfig(cfg).WithLogger(logger)
	if notifier != nil {
		b = b.WithNotifier(notifier)
	}
	if cfg.Audit.Enabled {
		b = b.WithAuditSink(goCourt.NewJSONWriterSink(stderr))
	}
	m, err := b.Build()
	if err != nil {
		return nil, nil, err
	}

	if err := m.Restore(ctx); err != nil && !errors.Is(err, store.ErrNotFound) {
		m.Close()
		return nil, nil, fmt.Errorf("restore session: %w", err)
	}
	return m, logger, nil
}

// readPassword reads a password from passwordFile, or prompts on the
// terminal when it is empty or "-".
func readPassword(passwordFile string) (string, error) {
	if passwordFile != "" && passwordFile != "-" {
		data, err := os.ReadFile(passwordFile)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", passwordFile, err)
		}
		password := strings.TrimRight(string(data), "\r\n")
		if password == "" {
			return "", fmt.Errorf("file %s is empty (after stripping trailing newlines)", passwordFile)
		}
		return password, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no terminal available for interactive password prompt (use --password-file)")
	}
	fmt.Fprint(stderr, "Password: ")
	passwordBytes, err := term.ReadPassword(fd)
	fmt.Fprintln(stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(passwordBytes), nil
}
