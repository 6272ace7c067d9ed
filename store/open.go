package store

import (
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// Options selects and configures a backend for Open.
type Options struct {
	Driver      string
	Path        string
	RedisAddr   string
	RedisPrefix string
	Keys        Keys
}

// Open builds the backend named by opts.Driver. An empty driver means file.
// Stores returned by Open own their connections; call Close when done.
func Open(opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case DriverMemory:
		return NewMemoryStore(opts.Keys), nil
	case DriverFile, "":
		return NewFileStore(opts.Path, opts.Keys), nil
	case DriverRedis:
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("store: redis driver requires an address")
		}
		rs := NewRedisStore(redis.NewClient(&redis.Options{Addr: opts.RedisAddr}), opts.RedisPrefix, opts.Keys)
		rs.owned = true
		return rs, nil
	case DriverSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("store: sqlite driver requires a path")
		}
		return NewSQLiteStore(opts.Path, opts.Keys)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
