package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by Load when no complete, parseable record exists.
	ErrNotFound = errors.New("session record not found")
	// ErrUnavailable wraps I/O failures of the underlying backend.
	ErrUnavailable = errors.New("session store unavailable")
	// ErrUnknownDriver is returned by Open for an unsupported driver name.
	ErrUnknownDriver = errors.New("unknown session store driver")
)

// Keys names the two durable entries of a session record.
type Keys struct {
	User  string `yaml:"user"`
	Token string `yaml:"token"`
}

// DefaultKeys matches the key names used by the web front end.
var DefaultKeys = Keys{
	User:  "userProfile",
	Token: "access_token",
}

func (k Keys) withDefaults() Keys {
	if strings.TrimSpace(k.User) == "" {
		k.User = DefaultKeys.User
	}
	if strings.TrimSpace(k.Token) == "" {
		k.Token = DefaultKeys.Token
	}
	return k
}

// Record is a complete persisted session.
type Record struct {
	Profile json.RawMessage
	Token   string
}

// DecodeProfile unmarshals the stored profile into v.
func (r *Record) DecodeProfile(v any) error {
	if r == nil || len(r.Profile) == 0 {
		return ErrNotFound
	}
	return json.Unmarshal(r.Profile, v)
}

// Store is durable storage for exactly one session record.
type Store interface {
	// Save serializes profile and writes it together with token.
	Save(ctx context.Context, profile any, token string) error
	// Load returns the persisted record or ErrNotFound.
	Load(ctx context.Context) (*Record, error)
	// Clear removes both entries. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
	// Close releases resources owned by the store.
	Close() error
}

func encodeProfile(profile any) (string, error) {
	if profile == nil {
		return "", errors.New("store: nil profile")
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return "", fmt.Errorf("store: encode profile: %w", err)
	}
	return string(data), nil
}

// decodeRecord applies the record contract to two raw values.
func decodeRecord(profile, token string, hasProfile, hasToken bool) (*Record, error) {
	if !hasProfile || !hasToken || profile == "" || token == "" {
		return nil, ErrNotFound
	}

	raw := bytes.TrimSpace([]byte(profile))
	if len(raw) == 0 || raw[0] != '{' || !json.Valid(raw) {
		return nil, fmt.Errorf("%w: stored profile is not a JSON object", ErrNotFound)
	}

	return &Record{
		Profile: json.RawMessage(raw),
		Token:   token,
	}, nil
}
