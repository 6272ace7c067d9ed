package store

import (
	"context"
	"sync"
)

// MemoryStore keeps the record in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	keys   Keys
	values map[string]string
}

func NewMemoryStore(keys Keys) *MemoryStore {
	return &MemoryStore{
		keys:   keys.withDefaults(),
		values: make(map[string]string, 2),
	}
}

func (s *MemoryStore) Save(_ context.Context, profile any, token string) error {
	encoded, err := encodeProfile(profile)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[s.keys.User] = encoded
	s.values[s.keys.Token] = token
	return nil
}

func (s *MemoryStore) Load(_ context.Context) (*Record, error) {
	s.mu.Lock()
	profile, hasProfile := s.values[s.keys.User]
	token, hasToken := s.values[s.keys.Token]
	s.mu.Unlock()

	return decodeRecord(profile, token, hasProfile, hasToken)
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, s.keys.User)
	delete(s.values, s.keys.Token)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// Set writes a raw value under key. Tests use it to plant partial or corrupt records.
func (s *MemoryStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Len reports how many raw entries are held.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}
