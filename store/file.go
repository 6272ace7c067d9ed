package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the record as entries of a small JSON object on disk.
// Unrelated entries written by other tools are preserved.
type FileStore struct {
	mu   sync.Mutex
	path string
	keys Keys
}

// DefaultFilePath returns the session file location. COURTDESK_SESSION_FILE
// wins; otherwise $XDG_CONFIG_HOME/courtdesk/session.json, falling back to
// ~/.config.
func DefaultFilePath() string {
	if envPath := os.Getenv("COURTDESK_SESSION_FILE"); envPath != "" {
		return envPath
	}

	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "courtdesk-session.json")
		}
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	return filepath.Join(configDirectory, "courtdesk", "session.json")
}

func NewFileStore(path string, keys Keys) *FileStore {
	if path == "" {
		path = DefaultFilePath()
	}
	return &FileStore{
		path: path,
		keys: keys.withDefaults(),
	}
}

// Path reports the backing file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Save(_ context.Context, profile any, token string) error {
	encoded, err := encodeProfile(profile)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readEntries()
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if entries == nil {
		entries = make(map[string]string, 2)
	}
	entries[s.keys.User] = encoded
	entries[s.keys.Token] = token

	return s.writeEntries(entries)
}

func (s *FileStore) Load(_ context.Context) (*Record, error) {
	s.mu.Lock()
	entries, err := s.readEntries()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	profile, hasProfile := entries[s.keys.User]
	token, hasToken := entries[s.keys.Token]
	return decodeRecord(profile, token, hasProfile, hasToken)
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readEntries()
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	delete(entries, s.keys.User)
	delete(entries, s.keys.Token)
	if len(entries) == 0 {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: removing %s: %v", ErrUnavailable, s.path, err)
		}
		return nil
	}
	return s.writeEntries(entries)
}

func (s *FileStore) Close() error { return nil }

// readEntries returns ErrNotFound when the file is missing or not a JSON object.
func (s *FileStore) readEntries() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrUnavailable, s.path, err)
	}

	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrNotFound, s.path, err)
	}
	if entries == nil {
		return nil, ErrNotFound
	}
	return entries, nil
}

// writeEntries replaces the file atomically with mode 0600.
func (s *FileStore) writeEntries(entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshaling session file: %w", err)
	}
	data = append(data, '\n')

	directory := filepath.Dir(s.path)
	if err := os.MkdirAll(directory, 0700); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrUnavailable, directory, err)
	}

	temporaryPath := s.path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrUnavailable, temporaryPath, err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("%w: writing %s: %v", ErrUnavailable, temporaryPath, err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("%w: syncing %s: %v", ErrUnavailable, temporaryPath, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("%w: closing %s: %v", ErrUnavailable, temporaryPath, err)
	}
	if err := os.Rename(temporaryPath, s.path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("%w: renaming %s: %v", ErrUnavailable, s.path, err)
	}
	return nil
}
